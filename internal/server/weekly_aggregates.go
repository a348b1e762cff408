package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/hsekpi/internal/authorization"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
)

// GetWeeklyAggregates folds a project's daily data over one week. The week is
// given either as week and year or as any date inside it.
func (s *Server) GetWeeklyAggregates(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	projectID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid project id"))
		return
	}

	week, year, err := weekFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := s.authzSvc.Authorize(ctx, principal, authorization.ObjectKPIReport, authorization.ActionView); err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.requireProject(c, principal, projectID); err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.weeklyAggSvc.AggregateForWeek(ctx, projectID, week, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// requireProject rejects projects outside the principal's scope.
func (s *Server) requireProject(c *gin.Context, principal scopedomain.Principal, projectID snowflake.ID) error {
	visible, err := s.scopeSvc.VisibleProjectIDs(c.Request.Context(), principal, scopedomain.Filters{ProjectID: &projectID})
	if err != nil {
		return err
	}
	if !visible.Contains(projectID) {
		return ErrForbidden
	}
	return nil
}

func weekFromQuery(c *gin.Context) (int, int, error) {
	date, err := parseOptionalDate(c.Query("date"))
	if err != nil {
		return 0, 0, newValidationError("date", "invalid_date", "date must be YYYY-MM-DD")
	}
	if date != nil {
		week, year := weekcalendar.WeekFromDate(*date)
		if !weekcalendar.ValidYear(year) {
			return 0, 0, weekcalendar.ErrInvalidYear
		}
		return week, year, nil
	}

	week, err := parseOptionalInt(c.Query("week"))
	if err != nil || week == nil {
		return 0, 0, newValidationError("week", "invalid_week", "week must be between 1 and 52")
	}
	year, err := parseOptionalInt(c.Query("year"))
	if err != nil || year == nil {
		return 0, 0, newValidationError("year", "invalid_year", "year is required")
	}
	if !weekcalendar.ValidWeek(*week) {
		return 0, 0, weekcalendar.ErrInvalidWeek
	}
	if !weekcalendar.ValidYear(*year) {
		return 0, 0, weekcalendar.ErrInvalidYear
	}
	return *week, *year, nil
}
