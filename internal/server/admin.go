package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	adminopsdomain "github.com/tbilisoft/declara/internal/adminops/domain"
	declarationdomain "github.com/tbilisoft/declara/internal/declaration/domain"
	"github.com/tbilisoft/declara/pkg/db/pagination"
)

func parseIDParam(c *gin.Context, name string) (snowflake.ID, error) {
	raw, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, newValidationError(name, "invalid_"+name, "invalid "+name)
	}
	return snowflake.ID(raw), nil
}

func (s *Server) AdminQueue(c *gin.Context) {
	resp, err := s.adminopsSvc.Queue(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) AdminStats(c *gin.Context) {
	resp, err := s.adminopsSvc.Dashboard(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) AdminListDeclarations(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status string `form:"status"`
		UserID string `form:"user_id"`
		Year   int    `form:"year"`
		Month  int    `form:"month"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	filter := adminopsdomain.ListFilter{Pagination: query.Pagination}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status := declarationdomain.Status(raw)
		if !status.Valid() {
			AbortWithError(c, newValidationError("status", "invalid_status", "invalid status"))
			return
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(query.UserID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			AbortWithError(c, newValidationError("user_id", "invalid_user_id", "invalid user_id"))
			return
		}
		userID := snowflake.ID(id)
		filter.UserID = &userID
	}
	if query.Year != 0 {
		filter.Year = &query.Year
	}
	if query.Month != 0 {
		if query.Month < 1 || query.Month > 12 {
			AbortWithError(c, newValidationError("month", "invalid_month", "invalid month"))
			return
		}
		filter.Month = &query.Month
	}

	resp, err := s.adminopsSvc.ListAll(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) AdminStartFiling(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.declSvc.StartFiling(c.Request.Context(), id, currentUser(c).ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type completeFilingRequest struct {
	ConfirmationNumber string `json:"confirmation_number"`
	AdminNotes         string `json:"admin_notes"`
}

func (s *Server) AdminCompleteFiling(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var body completeFilingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.declSvc.CompleteFiling(c.Request.Context(), declarationdomain.CompleteFilingRequest{
		DeclarationID:      id,
		AdminID:            currentUser(c).ID,
		ConfirmationNumber: strings.TrimSpace(body.ConfirmationNumber),
		AdminNotes:         strings.TrimSpace(body.AdminNotes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type rejectDeclarationRequest struct {
	CorrectionNotes string `json:"correction_notes"`
	AdminNotes      string `json:"admin_notes"`
}

func (s *Server) AdminRejectDeclaration(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var body rejectDeclarationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.declSvc.Reject(c.Request.Context(), declarationdomain.RejectRequest{
		DeclarationID:   id,
		AdminID:         currentUser(c).ID,
		CorrectionNotes: strings.TrimSpace(body.CorrectionNotes),
		AdminNotes:      strings.TrimSpace(body.AdminNotes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AdminListUsers(c *gin.Context) {
	resp, err := s.adminopsSvc.Users(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) AdminUserDeclarations(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.adminopsSvc.UserDeclarations(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
