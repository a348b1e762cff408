package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hsekpi/internal/kpireport/domain"
	"github.com/smallbiznis/hsekpi/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newReport(id snowflake.ID, accidents int64) *domain.Report {
	now := time.Date(2024, time.February, 1, 8, 0, 0, 0, time.UTC)
	return &domain.Report{
		ID:          id,
		ProjectID:   10,
		SubmittedBy: 3,
		WeekNumber:  5,
		ReportYear:  2024,
		Status:      domain.StatusDraft,
		Figures:     domain.Figures{Accidents: accidents},
		Warnings:    datatypes.JSON("[]"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestUpsertKeepsApprovedRow(t *testing.T) {
	conn := dbtest.Open(t)
	dbtest.Insert(t, conn, "projects", map[string]any{"id": 10, "code": "P10", "name": "Port", "pole": "Nord"})
	r := Provide()
	ctx := context.Background()

	stored, err := r.Upsert(ctx, conn, newReport(1, 1), true)
	require.NoError(t, err)
	require.NoError(t, conn.Table("weekly_kpi_reports").Where("id = ?", stored.ID).
		Update("status", string(domain.StatusApproved)).Error)

	_, err = r.Upsert(ctx, conn, newReport(2, 9), true)
	assert.ErrorIs(t, err, domain.ErrReportLocked)

	current, err := r.FindByKey(ctx, conn, 10, 5, 2024)
	require.NoError(t, err)
	assert.Equal(t, int64(1), current.Figures.Accidents)

	edited, err := r.Upsert(ctx, conn, newReport(3, 9), false)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, edited.ID)
	assert.Equal(t, int64(9), edited.Figures.Accidents)
	assert.Equal(t, domain.StatusApproved, edited.Status)
}

func TestUpsertOverwritesDraftWhenKeepingApproved(t *testing.T) {
	conn := dbtest.Open(t)
	dbtest.Insert(t, conn, "projects", map[string]any{"id": 10, "code": "P10", "name": "Port", "pole": "Nord"})
	r := Provide()
	ctx := context.Background()

	_, err := r.Upsert(ctx, conn, newReport(1, 1), true)
	require.NoError(t, err)
	again, err := r.Upsert(ctx, conn, newReport(2, 4), true)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(1), again.ID)
	assert.Equal(t, int64(4), again.Figures.Accidents)
}
