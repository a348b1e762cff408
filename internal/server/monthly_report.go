package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	rollupdomain "github.com/smallbiznis/hsekpi/internal/monthlyrollup/domain"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
)

// GetMonthlySummary serves the monthly rollup for ?month=YYYY-MM, optionally
// narrowed to one project.
func (s *Server) GetMonthlySummary(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	month, err := weekcalendar.ParseMonthKey(c.Query("month"))
	if err != nil {
		AbortWithError(c, newValidationError("month", "invalid_month", "month must be YYYY-MM"))
		return
	}
	projectID, err := parseOptionalSnowflakeID(c.Query("project_id"))
	if err != nil {
		AbortWithError(c, newValidationError("project_id", "invalid_project_id", "invalid project_id"))
		return
	}

	summary, err := s.rollupSvc.Summary(c.Request.Context(), principal, rollupdomain.Request{
		Month:     month,
		ProjectID: projectID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}
