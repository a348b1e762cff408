package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	kpireportdomain "github.com/smallbiznis/hsekpi/internal/kpireport/domain"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
)

type upsertReportRequest struct {
	ProjectID string                  `json:"project_id"`
	Week      int                     `json:"week"`
	Year      int                     `json:"year"`
	Figures   kpireportdomain.Figures `json:"figures"`
	Notes     string                  `json:"notes"`
	AutoFill  bool                    `json:"auto_fill"`
}

type rejectReportRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) UpsertReport(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req upsertReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	projectID, err := parseSnowflakeID(req.ProjectID)
	if err != nil {
		AbortWithError(c, newValidationError("project_id", "invalid_project_id", "invalid project_id"))
		return
	}

	report, err := s.reportSvc.Upsert(c.Request.Context(), principal, kpireportdomain.UpsertRequest{
		ProjectID: projectID,
		Week:      req.Week,
		Year:      req.Year,
		Figures:   req.Figures,
		Notes:     strings.TrimSpace(req.Notes),
		AutoFill:  req.AutoFill,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) GetReport(c *gin.Context) {
	s.withReport(c, s.reportSvc.Get)
}

func (s *Server) SubmitReport(c *gin.Context) {
	s.withReport(c, s.reportSvc.Submit)
}

func (s *Server) ApproveReport(c *gin.Context) {
	s.withReport(c, s.reportSvc.Approve)
}

func (s *Server) RejectReport(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid report id"))
		return
	}

	var req rejectReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	report, err := s.reportSvc.Reject(c.Request.Context(), principal, kpireportdomain.RejectRequest{
		ReportID: id,
		Reason:   req.Reason,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

// GetReportAverages returns the simple mean of TF and TG over a project's
// approved reports of ?year=.
func (s *Server) GetReportAverages(c *gin.Context) {
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
	year, err := parseOptionalInt(c.Query("year"))
	if err != nil || year == nil {
		AbortWithError(c, newValidationError("year", "invalid_year", "year is required"))
		return
	}

	averages, err := s.reportSvc.ApprovedAverages(c.Request.Context(), principal, projectID, *year)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": averages})
}

type reportAction func(ctx context.Context, principal scopedomain.Principal, id snowflake.ID) (*kpireportdomain.Report, error)

func (s *Server) withReport(c *gin.Context, action reportAction) {
	principal, ok := principalFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid report id"))
		return
	}

	report, err := action(c.Request.Context(), principal, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}
