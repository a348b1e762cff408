package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type UserRow struct {
	ID   snowflake.ID `gorm:"column:id"`
	Role string       `gorm:"column:role"`
}

type Repository interface {
	FindUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*UserRow, error)
	ListAssignedProjectIDs(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]snowflake.ID, error)
	// FilterProjectIDs returns the live projects among candidates matching
	// pole and projectID. A nil candidates slice means every project.
	FilterProjectIDs(ctx context.Context, db *gorm.DB, candidates []snowflake.ID, pole string, projectID *snowflake.ID) ([]snowflake.ID, error)
}
