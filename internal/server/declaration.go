package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	declarationdomain "github.com/tbilisoft/declara/internal/declaration/domain"
)

type submitDeclarationRequest struct {
	SubmittedDate string `json:"submitted_date"`
}

func (s *Server) SubmitDeclaration(c *gin.Context) {
	year, month, err := parseYearMonthParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	req := declarationdomain.MarkSubmittedRequest{
		UserID: currentUser(c).ID,
		Year:   year,
		Month:  month,
	}

	// Body is optional: an empty submit stamps the current time.
	var body submitDeclarationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		if body.SubmittedDate != "" {
			submitted, err := time.Parse(time.RFC3339, body.SubmittedDate)
			if err != nil {
				AbortWithError(c, newValidationError("submitted_date", "invalid_submitted_date", "invalid submitted_date"))
				return
			}
			req.SubmittedDate = &submitted
		}
	}

	resp, err := s.declSvc.MarkSubmitted(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AutoGenerateYear(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		AbortWithError(c, newValidationError("year", "invalid_year", "invalid year"))
		return
	}

	userID := currentUser(c).ID
	if err := s.declSvc.GenerateYear(c.Request.Context(), userID, year); err != nil {
		AbortWithError(c, err)
		return
	}

	declarations, err := s.declSvc.ListByUser(c.Request.Context(), userID, &year)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"year":         year,
		"declarations": declarations,
		"total_count":  len(declarations),
	})
}

type filingServiceRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (s *Server) RequestFilingService(c *gin.Context) {
	var req filingServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.declSvc.RequestFiling(c.Request.Context(), currentUser(c).ID, req.Year, req.Month)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": resp,
		"payment": gin.H{
			"reference":  resp.PaymentReference,
			"amount_gel": resp.PaymentAmount,
		},
	})
}

func (s *Server) PayFilingService(c *gin.Context) {
	var req filingServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.declSvc.ConfirmPayment(c.Request.Context(), currentUser(c).ID, req.Year, req.Month)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) FilingServiceStatus(c *gin.Context) {
	year, month, err := parseYearMonthParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.declSvc.FilingServiceStatus(c.Request.Context(), currentUser(c).ID, year, month)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
