package submission

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	kpidomain "github.com/smallbiznis/hsekpi/internal/kpisource/domain"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Builder interface {
	BuildStatus(ctx context.Context, projects []kpidomain.Project, year int) ([weekcalendar.WeeksPerYear]WeekStatus, error)
}

type Params struct {
	fx.In

	Log       *zap.Logger
	Collector kpidomain.Collector
}

type builder struct {
	log       *zap.Logger
	collector kpidomain.Collector
}

func NewBuilder(p Params) Builder {
	return &builder{
		log:       p.Log.Named("submission.builder"),
		collector: p.Collector,
	}
}

type reportKey struct {
	project snowflake.ID
	week    int
}

func (b *builder) BuildStatus(ctx context.Context, projects []kpidomain.Project, year int) ([weekcalendar.WeeksPerYear]WeekStatus, error) {
	var out [weekcalendar.WeeksPerYear]WeekStatus

	ids := make([]snowflake.ID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	reports, err := b.collector.WeeklyReports(ctx, kpidomain.Query{
		Scope:  scopedomain.Restricted(ids...),
		Window: kpidomain.Year(year),
	})
	if err != nil {
		return out, err
	}

	latest := make(map[reportKey]kpidomain.WeeklyReport, len(reports))
	for _, r := range reports {
		if r.ReportYear != year {
			continue
		}
		key := reportKey{project: r.ProjectID, week: r.WeekNumber}
		if current, ok := latest[key]; !ok || r.ID > current.ID {
			latest[key] = r
		}
	}

	for i, week := range weekcalendar.AllWeeksForYear(year) {
		evaluated := weekcalendar.Key{Week: week.Number, Year: year}
		ws := WeekStatus{
			Week:      week.Number,
			Year:      year,
			StartDate: week.Start,
			EndDate:   week.End,
			Projects:  []ProjectStatus{},
		}

		statuses := make([]Status, 0, len(projects))
		for _, p := range projects {
			if startsAfter(p, evaluated) {
				continue
			}
			ps := ProjectStatus{
				ProjectID:   p.ID,
				ProjectCode: p.Code,
				ProjectName: p.Name,
				Status:      StatusNotSubmitted,
			}
			if r, ok := latest[reportKey{project: p.ID, week: week.Number}]; ok {
				id := r.ID
				ps.ReportID = &id
				ps.Status = reportStatus(r.Status)
			}
			ws.Projects = append(ws.Projects, ps)
			statuses = append(statuses, ps.Status)
		}
		ws.Status = Combine(statuses)
		out[i] = ws
	}
	return out, nil
}

func startsAfter(p kpidomain.Project, evaluated weekcalendar.Key) bool {
	if p.StartDate == nil {
		return false
	}
	return evaluated.Before(weekcalendar.KeyFromDate(*p.StartDate))
}

func reportStatus(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusApproved:
		return StatusApproved
	case StatusSubmitted:
		return StatusSubmitted
	case StatusDraft:
		return StatusDraft
	default:
		return StatusNotSubmitted
	}
}
