package collector

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hsekpi/internal/kpisource/domain"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
	"github.com/smallbiznis/hsekpi/pkg/db"
	"github.com/smallbiznis/hsekpi/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T) *gorm.DB {
	t.Helper()
	conn := dbtest.Open(t)

	dbtest.Insert(t, conn, "projects", map[string]any{"id": 1, "code": "P1", "name": "One", "pole": "Nord", "start_date": date(2023, 6, 1)})
	dbtest.Insert(t, conn, "projects", map[string]any{"id": 2, "code": "P2", "name": "Two", "pole": "Sud"})
	dbtest.Insert(t, conn, "projects", map[string]any{"id": 3, "code": "P3", "name": "Gone", "pole": "Sud", "deleted_at": date(2024, 1, 1)})

	for i, row := range []struct {
		project    int
		week, year int
		day        time.Time
	}{
		{1, 1, 2024, date(2024, 1, 2)},
		{1, 2, 2024, date(2024, 1, 9)},
		{2, 1, 2024, date(2024, 1, 3)},
		{2, 52, 2023, date(2023, 12, 28)},
	} {
		dbtest.Insert(t, conn, "trainings", map[string]any{
			"id": i + 1, "project_id": row.project, "training_date": row.day,
			"week_number": row.week, "week_year": row.year, "participants": 10, "duration_hours": 2.5,
		})
	}

	dbtest.Insert(t, conn, "sor_reports", map[string]any{"id": 1, "project_id": 1, "observation_date": date(2024, 1, 31), "status": "open", "company": "SGTM"})
	dbtest.Insert(t, conn, "sor_reports", map[string]any{"id": 2, "project_id": 1, "observation_date": date(2024, 2, 1), "status": "closed", "company": "Acme"})
	dbtest.Insert(t, conn, "sor_reports", map[string]any{"id": 3, "project_id": 2, "observation_date": date(2024, 1, 10), "status": "open", "deleted_at": date(2024, 1, 11)})

	return conn
}

func newCollector(conn *gorm.DB) domain.Collector {
	return New(Params{DB: conn, Log: zap.NewNop()})
}

func TestEmptyScopeNeverQueries(t *testing.T) {
	// no schema: any query would fail
	conn, err := db.NewTest()
	require.NoError(t, err)
	c := newCollector(conn)
	ctx := context.Background()
	q := domain.Query{Scope: scopedomain.Restricted(), Window: domain.Week(1, 2024)}

	trainings, err := c.Trainings(ctx, q)
	assert.NoError(t, err)
	assert.Nil(t, trainings)

	sors, err := c.SorReports(ctx, q)
	assert.NoError(t, err)
	assert.Nil(t, sors)

	projects, err := c.Projects(ctx, scopedomain.Restricted())
	assert.NoError(t, err)
	assert.Nil(t, projects)

	openings, docs, err := c.SubcontractorOpenings(ctx, q)
	assert.NoError(t, err)
	assert.Nil(t, openings)
	assert.Nil(t, docs)

	_, err = c.Trainings(ctx, domain.Query{Scope: scopedomain.Unrestricted(), Window: domain.Week(1, 2024)})
	assert.Error(t, err)
}

func TestWeekBasedFetchUsesStoredWeekColumns(t *testing.T) {
	c := newCollector(seed(t))
	ctx := context.Background()

	rows, err := c.Trainings(ctx, domain.Query{Scope: scopedomain.Unrestricted(), Window: domain.Week(1, 2024)})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, snowflake.ID(1), rows[0].ProjectID)
	assert.Equal(t, snowflake.ID(2), rows[1].ProjectID)

	scoped, err := c.Trainings(ctx, domain.Query{Scope: scopedomain.Restricted(2), Window: domain.Week(1, 2024)})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, snowflake.ID(2), scoped[0].ProjectID)
}

func TestMonthWindowSpansWeekYears(t *testing.T) {
	c := newCollector(seed(t))
	jan := weekcalendar.MonthKey{Year: 2024, Month: time.January}

	rows, err := c.Trainings(context.Background(), domain.Query{Scope: scopedomain.Unrestricted(), Window: domain.Month(jan)})
	require.NoError(t, err)
	// 2023-W52 belongs to December 2023
	assert.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, 2024, row.WeekYear)
	}
}

func TestDayBasedFetchUsesDateColumn(t *testing.T) {
	c := newCollector(seed(t))
	jan := weekcalendar.MonthKey{Year: 2024, Month: time.January}

	rows, err := c.SorReports(context.Background(), domain.Query{Scope: scopedomain.Unrestricted(), Window: domain.Month(jan)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "SGTM", rows[0].Company)
	assert.True(t, date(2024, 1, 31).Equal(rows[0].ObservationDate))
}

func TestProjectsExcludeSoftDeleted(t *testing.T) {
	c := newCollector(seed(t))

	rows, err := c.Projects(context.Background(), scopedomain.Unrestricted())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].StartDate)
	assert.True(t, date(2023, 6, 1).Equal(*rows[0].StartDate))
	assert.Nil(t, rows[1].StartDate)
}

func TestWeekClauseGroupsByYear(t *testing.T) {
	clause, args := weekClause("week_number", "week_year", []weekcalendar.Key{
		{Week: 52, Year: 2023}, {Week: 1, Year: 2024}, {Week: 2, Year: 2024},
	})
	assert.Equal(t, "((week_year = ? AND week_number IN ?) OR (week_year = ? AND week_number IN ?))", clause)
	assert.Equal(t, []any{2023, []int{52}, 2024, []int{1, 2}}, args)

	clause, _ = weekClause("week_number", "week_year", nil)
	assert.Empty(t, clause)
}
