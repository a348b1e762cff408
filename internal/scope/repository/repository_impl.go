package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() scopedomain.Repository {
	return &repo{}
}

func (r *repo) FindUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*scopedomain.UserRow, error) {
	var row scopedomain.UserRow
	err := db.WithContext(ctx).Raw(
		`SELECT id, role FROM users WHERE id = ?`,
		userID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) ListAssignedProjectIDs(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT pu.project_id
		 FROM project_users pu
		 JOIN projects p ON p.id = pu.project_id
		 WHERE pu.user_id = ? AND p.deleted_at IS NULL
		 ORDER BY pu.project_id ASC`,
		userID,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) FilterProjectIDs(
	ctx context.Context,
	db *gorm.DB,
	candidates []snowflake.ID,
	pole string,
	projectID *snowflake.ID,
) ([]snowflake.ID, error) {
	if candidates != nil && len(candidates) == 0 {
		return nil, nil
	}

	query := db.WithContext(ctx).
		Table("projects").
		Select("id").
		Where("deleted_at IS NULL")
	if candidates != nil {
		query = query.Where("id IN ?", candidates)
	}
	if pole = strings.TrimSpace(pole); pole != "" {
		query = query.Where("LOWER(pole) = ?", strings.ToLower(pole))
	}
	if projectID != nil {
		query = query.Where("id = ?", *projectID)
	}

	var ids []snowflake.ID
	if err := query.Order("id ASC").Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
