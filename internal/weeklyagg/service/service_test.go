package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hsekpi/internal/kpisource/collector"
	kpidomain "github.com/smallbiznis/hsekpi/internal/kpisource/domain"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
	"github.com/smallbiznis/hsekpi/internal/weeklyagg/domain"
	"github.com/smallbiznis/hsekpi/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func date(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

// Week 2 of 2024 runs from Saturday 6 to Friday 12 January.
func seed(t *testing.T) *gorm.DB {
	t.Helper()
	conn := dbtest.Open(t)

	dbtest.Insert(t, conn, "projects", map[string]any{"id": 1, "code": "P1", "name": "One", "pole": "Nord"})
	for i, row := range []struct {
		day        int
		accidents  int
		compliance any
		effectif   any
	}{
		{6, 1, 80.0, 10},
		{7, 0, nil, nil},
		{8, 2, 90.0, 12},
	} {
		dbtest.Insert(t, conn, "daily_kpi_snapshots", map[string]any{
			"id": i + 1, "project_id": 1, "entry_date": date(row.day),
			"week_number": 2, "week_year": 2024, "day_name": date(row.day).Weekday().String(),
			"accidents": row.accidents, "hse_compliance_rate": row.compliance,
			"effectif": row.effectif, "hours_worked": 100.0,
		})
	}
	// other week, must not leak
	dbtest.Insert(t, conn, "daily_kpi_snapshots", map[string]any{
		"id": 9, "project_id": 1, "entry_date": date(13), "week_number": 3, "week_year": 2024,
		"day_name": "Saturday", "accidents": 50,
	})
	dbtest.Insert(t, conn, "daily_effectif_entries", map[string]any{"id": 1, "project_id": 1, "entry_date": date(7), "effectif": 11})
	dbtest.Insert(t, conn, "workers", map[string]any{"id": 1, "project_id": 1, "full_name": "A", "is_active": true})
	return conn
}

func newService(c kpidomain.Collector) domain.Service {
	return New(Params{Log: zap.NewNop(), Collector: c})
}

func TestAggregateForWeek(t *testing.T) {
	conn := seed(t)
	svc := newService(collector.New(collector.Params{DB: conn, Log: zap.NewNop()}))

	res, err := svc.AggregateForWeek(context.Background(), snowflake.ID(1), 2, 2024)
	require.NoError(t, err)

	assert.Empty(t, res.Warnings)
	assert.Equal(t, int64(3), res.Aggregate.Accidents)
	assert.Equal(t, 85.0, res.Aggregate.HseComplianceRate)
	assert.Equal(t, 300.0, res.Aggregate.HoursWorked)
	assert.Equal(t, int64(10+11+12), res.Aggregate.Effectif)
	assert.True(t, date(6).Equal(res.StartDate))
	assert.True(t, date(12).Equal(res.EndDate))
}

func TestAggregateForWeekRejectsInvalidInput(t *testing.T) {
	svc := newService(nil)

	_, err := svc.AggregateForWeek(context.Background(), snowflake.ID(1), 53, 2024)
	assert.ErrorIs(t, err, weekcalendar.ErrInvalidWeek)

	_, err = svc.AggregateForWeek(context.Background(), snowflake.ID(1), 1, 99999)
	assert.ErrorIs(t, err, weekcalendar.ErrInvalidYear)

	_, err = svc.AggregateForWeek(context.Background(), 0, 1, 2024)
	assert.ErrorIs(t, err, domain.ErrInvalidProject)
}

type failingSnapshots struct {
	kpidomain.Collector
}

func (failingSnapshots) DailySnapshots(context.Context, kpidomain.Query) ([]kpidomain.DailySnapshot, error) {
	return nil, errors.New("relation does not exist")
}

func TestAggregateForWeekTurnsSourceFailureIntoWarning(t *testing.T) {
	conn := seed(t)
	svc := newService(failingSnapshots{collector.New(collector.Params{DB: conn, Log: zap.NewNop()})})

	res, err := svc.AggregateForWeek(context.Background(), snowflake.ID(1), 2, 2024)
	require.NoError(t, err)

	assert.Equal(t, []string{domain.WarningSnapshotsUnavailable}, res.Warnings)
	assert.Equal(t, int64(0), res.Aggregate.Accidents)
	// only the effectif entry of the 7th remains
	assert.Equal(t, int64(11), res.Aggregate.Effectif)
}

func TestAggregateForWeekWithoutDataFallsBackToHeadcount(t *testing.T) {
	conn := seed(t)
	svc := newService(collector.New(collector.Params{DB: conn, Log: zap.NewNop()}))

	res, err := svc.AggregateForWeek(context.Background(), snowflake.ID(1), 10, 2024)
	require.NoError(t, err)

	assert.Empty(t, res.Warnings)
	assert.Equal(t, int64(0), res.Aggregate.Accidents)
	assert.Equal(t, int64(1), res.Aggregate.Effectif)
	assert.Equal(t, domain.EffectifFromActiveWorkers, res.Aggregate.EffectifSource)
}
