package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hsekpi/internal/authorization"
	"github.com/smallbiznis/hsekpi/internal/clock"
	"github.com/smallbiznis/hsekpi/internal/dashboard/domain"
	"github.com/smallbiznis/hsekpi/internal/dashboard/repository"
	"github.com/smallbiznis/hsekpi/internal/kpisource/collector"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	scoperepo "github.com/smallbiznis/hsekpi/internal/scope/repository"
	scopeservice "github.com/smallbiznis/hsekpi/internal/scope/service"
	"github.com/smallbiznis/hsekpi/internal/submission"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
	"github.com/smallbiznis/hsekpi/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	admin    = scopedomain.Principal{UserID: 1, Role: scopedomain.RoleAdmin, HasGlobalScope: true}
	orphan   = scopedomain.Principal{UserID: 2, Role: scopedomain.RoleUser}
	nordUser = scopedomain.Principal{UserID: 3, Role: scopedomain.RoleSupervisor, AssignedProjectIDs: []snowflake.ID{1}}
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func setup(t *testing.T) domain.Service {
	t.Helper()
	conn := dbtest.Open(t)

	dbtest.Insert(t, conn, "projects", map[string]any{"id": 1, "code": "P1", "name": "Port", "pole": "Nord", "status": "active"})
	dbtest.Insert(t, conn, "projects", map[string]any{"id": 2, "code": "P2", "name": "Dam", "pole": "Sud", "status": "active"})
	dbtest.Insert(t, conn, "projects", map[string]any{"id": 3, "code": "P3", "name": "Road", "pole": "Sud", "status": "closed"})

	for _, r := range []map[string]any{
		{"id": 11, "project_id": 1, "week_number": 1, "status": "approved", "accidents": 1, "hours_worked": 10.0, "lost_workdays": 0, "tf_value": 10000.0},
		{"id": 12, "project_id": 2, "week_number": 1, "status": "submitted", "accidents": 1, "hours_worked": 990.0, "lost_workdays": 2, "tf_value": 101.0101},
		{"id": 13, "project_id": 1, "week_number": 2, "status": "draft", "accidents": 0, "hours_worked": 100.0, "hse_compliance_rate": 80.0},
	} {
		start, end := weekcalendar.WeekDates(r["week_number"].(int), 2024)
		r["report_year"] = 2024
		r["submitted_by"] = 1
		r["start_date"] = start
		r["end_date"] = end
		dbtest.Insert(t, conn, "weekly_kpi_reports", r)
	}

	dbtest.Insert(t, conn, "trainings", map[string]any{"id": 1, "project_id": 1, "training_date": date(2024, 1, 2), "week_number": 1, "week_year": 2024, "duration_hours": 2.5})
	dbtest.Insert(t, conn, "trainings", map[string]any{"id": 2, "project_id": 2, "training_date": date(2024, 1, 16), "week_number": 3, "week_year": 2024, "duration_hours": 1.5})
	dbtest.Insert(t, conn, "sor_reports", map[string]any{"id": 1, "project_id": 1, "observation_date": date(2024, 1, 10), "status": "open"})
	dbtest.Insert(t, conn, "sor_reports", map[string]any{"id": 2, "project_id": 2, "observation_date": date(2024, 2, 1), "status": "closed"})
	dbtest.Insert(t, conn, "sor_reports", map[string]any{"id": 3, "project_id": 1, "observation_date": date(2023, 12, 20), "status": "open"})

	enforcer, err := authorization.NewEnforcer(conn)
	require.NoError(t, err)
	c := collector.New(collector.Params{DB: conn, Log: zap.NewNop()})

	return New(Params{
		DB:         conn,
		Log:        zap.NewNop(),
		Clock:      clock.NewFakeClock(date(2024, 3, 15)),
		Repo:       repository.Provide(),
		Scope:      scopeservice.New(scopeservice.Params{DB: conn, Log: zap.NewNop(), Repo: scoperepo.Provide()}),
		Authz:      authorization.NewService(authorization.Params{Log: zap.NewNop(), Enforcer: enforcer}),
		Collector:  c,
		Submission: submission.NewBuilder(submission.Params{Log: zap.NewNop(), Collector: c}),
	})
}

func TestDashboardGlobal(t *testing.T) {
	svc := setup(t)

	got, err := svc.GetDashboardSummary(context.Background(), admin, domain.Filters{})
	require.NoError(t, err)

	assert.Equal(t, 2024, got.Year)
	assert.Equal(t, 3, got.Stats.TotalProjects)
	assert.Equal(t, 2, got.Stats.ActiveProjects)
	assert.Equal(t, int64(3), got.Stats.TotalReports)
	assert.Equal(t, int64(1), got.Stats.ApprovedReports)
	assert.Equal(t, int64(1), got.Stats.DraftReports)
	assert.Equal(t, int64(2), got.Stats.Trainings)
	assert.Equal(t, 4.0, got.Stats.TrainingHours)
	assert.Equal(t, int64(2), got.Stats.SorTotal)
	assert.Equal(t, int64(1), got.Stats.SorOpen)
	assert.Equal(t, int64(1), got.Stats.SorClosed)

	// weighted over summed hours, not averaged per report
	assert.Equal(t, int64(2), got.KPISummary.Accidents)
	assert.Equal(t, 11000.0, got.KPISummary.TotalHours)
	assert.Equal(t, 181.8182, got.KPISummary.TF)
	assert.Equal(t, 0.1818, got.KPISummary.TG)

	require.Len(t, got.WeeklyTrends, weekcalendar.WeeksPerYear)
	assert.Equal(t, 200.0, got.WeeklyTrends[0].TF)
	assert.Equal(t, 0.2, got.WeeklyTrends[0].TG)
	assert.Equal(t, int64(1), got.WeeklyTrends[1].Reports)
	assert.Equal(t, 0.0, got.WeeklyTrends[1].TF)
	assert.Equal(t, int64(0), got.WeeklyTrends[10].Reports)

	require.Len(t, got.ProjectPerformance, 3)
	p1 := got.ProjectPerformance[0]
	assert.Equal(t, snowflake.ID(1), p1.ProjectID)
	assert.Equal(t, 909.0909, p1.TF)
	assert.Equal(t, 10000.0, p1.ApprovedTF)
	assert.Equal(t, int64(1), p1.ApprovedReports)
	assert.Equal(t, int64(0), got.ProjectPerformance[2].Reports)

	assert.Equal(t, "partial", string(got.WeeklyStatus[0].Status))
	assert.Equal(t, "draft", string(got.WeeklyStatus[1].Status))
}

func TestDashboardEmptyScopeIsZero(t *testing.T) {
	svc := setup(t)

	got, err := svc.GetDashboardSummary(context.Background(), orphan, domain.Filters{})
	require.NoError(t, err)

	assert.Equal(t, 0, got.Stats.TotalProjects)
	assert.Equal(t, int64(0), got.Stats.TotalReports)
	assert.Equal(t, int64(0), got.Stats.SorTotal)
	assert.Equal(t, domain.KPISummary{}, got.KPISummary)
	assert.Empty(t, got.ProjectPerformance)
	require.Len(t, got.WeeklyTrends, weekcalendar.WeeksPerYear)
	for _, w := range got.WeeklyStatus {
		assert.Equal(t, "not_submitted", string(w.Status))
		assert.Empty(t, w.Projects)
	}
}

func TestDashboardFilters(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	sud, err := svc.GetDashboardSummary(ctx, admin, domain.Filters{Pole: "SUD"})
	require.NoError(t, err)
	assert.Equal(t, 2, sud.Stats.TotalProjects)
	assert.Equal(t, int64(1), sud.Stats.TotalReports)

	week := 1
	first, err := svc.GetDashboardSummary(ctx, admin, domain.Filters{Week: &week})
	require.NoError(t, err)
	assert.Equal(t, int64(2), first.Stats.TotalReports)
	assert.Equal(t, int64(1), first.Stats.Trainings)

	own, err := svc.GetDashboardSummary(ctx, nordUser, domain.Filters{})
	require.NoError(t, err)
	assert.Equal(t, 1, own.Stats.TotalProjects)
	assert.Equal(t, int64(1), own.KPISummary.Accidents)

	other := snowflake.ID(2)
	none, err := svc.GetDashboardSummary(ctx, nordUser, domain.Filters{ProjectID: &other})
	require.NoError(t, err)
	assert.Equal(t, 0, none.Stats.TotalProjects)
}

func TestDashboardValidation(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	week := 53
	_, err := svc.GetDashboardSummary(ctx, admin, domain.Filters{Week: &week})
	assert.ErrorIs(t, err, weekcalendar.ErrInvalidWeek)

	_, err = svc.GetDashboardSummary(ctx, admin, domain.Filters{Year: 1900})
	assert.ErrorIs(t, err, domain.ErrInvalidYear)
}
