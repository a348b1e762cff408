package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Upsert inserts or overwrites the report of (project, week, year) in a
	// single statement and returns the stored row. With keepApproved an
	// approved row is left untouched and ErrReportLocked is returned.
	Upsert(ctx context.Context, db *gorm.DB, report *Report, keepApproved bool) (*Report, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Report, error)
	FindByKey(ctx context.Context, db *gorm.DB, projectID snowflake.ID, week, year int) (*Report, error)
	// Transition moves a report from one of from to next and reports whether
	// a row changed.
	Transition(ctx context.Context, db *gorm.DB, id snowflake.ID, from []Status, next Status, fields map[string]any, now time.Time) (bool, error)
	ApprovedAverages(ctx context.Context, db *gorm.DB, projectID snowflake.ID, year int) (*Averages, error)
}
