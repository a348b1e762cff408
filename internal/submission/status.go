// Package submission builds the 52-week submission matrix of a set of
// projects.
package submission

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusApproved     Status = "approved"
	StatusPartial      Status = "partial"
	StatusSubmitted    Status = "submitted"
	StatusDraft        Status = "draft"
	StatusNotSubmitted Status = "not_submitted"
)

type ProjectStatus struct {
	ProjectID   snowflake.ID  `json:"project_id"`
	ProjectCode string        `json:"project_code"`
	ProjectName string        `json:"project_name"`
	ReportID    *snowflake.ID `json:"report_id,omitempty"`
	Status      Status        `json:"status"`
}

type WeekStatus struct {
	Week      int             `json:"week"`
	Year      int             `json:"year"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Status    Status          `json:"status"`
	Projects  []ProjectStatus `json:"projects"`
}

// Combine folds per-project statuses of one week into the week status:
// approved when all are approved, submitted when all are submitted, partial
// when anything was submitted or approved otherwise, draft when only drafts
// and missing reports remain, not_submitted when nothing exists.
func Combine(statuses []Status) Status {
	if len(statuses) == 0 {
		return StatusNotSubmitted
	}

	var approved, submitted, draft int
	for _, status := range statuses {
		switch status {
		case StatusApproved:
			approved++
		case StatusSubmitted:
			submitted++
		case StatusDraft:
			draft++
		}
	}

	switch {
	case approved == len(statuses):
		return StatusApproved
	case submitted == len(statuses):
		return StatusSubmitted
	case approved > 0 || submitted > 0:
		return StatusPartial
	case draft > 0:
		return StatusDraft
	default:
		return StatusNotSubmitted
	}
}
