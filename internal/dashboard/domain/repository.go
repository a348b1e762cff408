package domain

import (
	"context"

	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"gorm.io/gorm"
)

// Period is a week-year, optionally narrowed to one week.
type Period struct {
	Year int
	Week *int
}

type Repository interface {
	ReportTotals(ctx context.Context, db *gorm.DB, scope scopedomain.ProjectScope, period Period) (*ReportTotals, error)
	ReportTotalsByWeek(ctx context.Context, db *gorm.DB, scope scopedomain.ProjectScope, year int) ([]ReportTotals, error)
	ReportTotalsByProject(ctx context.Context, db *gorm.DB, scope scopedomain.ProjectScope, period Period) ([]ReportTotals, error)
	ActivityTotals(ctx context.Context, db *gorm.DB, scope scopedomain.ProjectScope, period Period) (*ActivityTotals, error)
}
