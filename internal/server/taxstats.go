package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	taxstatsdomain "github.com/tbilisoft/declara/internal/taxstats/domain"
)

func parseYearQuery(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("year"))
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, newValidationError("year", "invalid_year", "invalid year")
	}
	return year, nil
}

func parseYearMonthParams(c *gin.Context) (int, int, error) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return 0, 0, newValidationError("year", "invalid_year", "invalid year")
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return 0, 0, newValidationError("month", "invalid_month", "invalid month")
	}
	return year, month, nil
}

func (s *Server) TaxOverview(c *gin.Context) {
	year, err := parseYearQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.statsSvc.Overview(c.Request.Context(), currentUser(c).ID, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) MonthlyBreakdown(c *gin.Context) {
	year, err := parseYearQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.statsSvc.MonthlyBreakdown(c.Request.Context(), currentUser(c).ID, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) TaxProjections(c *gin.Context) {
	resp, err := s.statsSvc.Projection(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) TaxInsights(c *gin.Context) {
	resp, err := s.insightSvc.Insights(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) TaxComparison(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("years"))
	if raw == "" {
		AbortWithError(c, newValidationError("years", "invalid_years", "years is required"))
		return
	}

	parts := strings.Split(raw, ",")
	years := make([]int, 0, len(parts))
	for _, part := range parts {
		year, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			AbortWithError(c, newValidationError("years", "invalid_years", "invalid years"))
			return
		}
		years = append(years, year)
	}

	resp, err := s.statsSvc.Comparison(c.Request.Context(), currentUser(c).ID, years)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) TaxChartData(c *gin.Context) {
	year, err := parseYearQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	chartType := taxstatsdomain.ChartType(c.Param("type"))
	resp, err := s.statsSvc.ChartData(c.Request.Context(), currentUser(c).ID, chartType, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeclarationDetails(c *gin.Context) {
	year, month, err := parseYearMonthParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.statsSvc.DeclarationDetails(c.Request.Context(), currentUser(c).ID, year, month)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
