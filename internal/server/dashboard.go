package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	dashboarddomain "github.com/smallbiznis/hsekpi/internal/dashboard/domain"
)

func (s *Server) GetDashboardSummary(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	projectID, err := parseOptionalSnowflakeID(c.Query("project_id"))
	if err != nil {
		AbortWithError(c, newValidationError("project_id", "invalid_project_id", "invalid project_id"))
		return
	}
	year, err := parseOptionalInt(c.Query("year"))
	if err != nil {
		AbortWithError(c, newValidationError("year", "invalid_year", "invalid year"))
		return
	}
	week, err := parseOptionalInt(c.Query("week"))
	if err != nil {
		AbortWithError(c, newValidationError("week", "invalid_week", "invalid week"))
		return
	}

	filters := dashboarddomain.Filters{
		Pole:      strings.TrimSpace(c.Query("pole")),
		ProjectID: projectID,
		Week:      week,
	}
	if year != nil {
		filters.Year = *year
	}

	summary, err := s.dashboardSvc.GetDashboardSummary(c.Request.Context(), principal, filters)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}
