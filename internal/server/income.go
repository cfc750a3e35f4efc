package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	ledgerdomain "github.com/tbilisoft/declara/internal/ledger/domain"
)

type recordIncomeRequest struct {
	AmountGel   float64 `json:"amount_gel"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	IncomeDate  string  `json:"income_date"`
}

func (s *Server) RecordIncome(c *gin.Context) {
	var req recordIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	incomeDate, err := time.Parse(time.RFC3339, req.IncomeDate)
	if err != nil {
		AbortWithError(c, newValidationError("income_date", "invalid_income_date", "invalid income_date"))
		return
	}

	user := currentUser(c)
	resp, err := s.ledgerSvc.Record(c.Request.Context(), ledgerdomain.RecordIncomeRequest{
		UserID:      user.ID,
		AmountGel:   req.AmountGel,
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		IncomeDate:  incomeDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListIncome(c *gin.Context) {
	var query struct {
		From string `form:"from"`
		To   string `form:"to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := ledgerdomain.ListIncomeRequest{UserID: currentUser(c).ID}
	if strings.TrimSpace(query.From) != "" {
		from, err := time.Parse(time.RFC3339, query.From)
		if err != nil {
			AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
			return
		}
		req.From = &from
	}
	if strings.TrimSpace(query.To) != "" {
		to, err := time.Parse(time.RFC3339, query.To)
		if err != nil {
			AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
			return
		}
		req.To = &to
	}

	resp, err := s.ledgerSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
