package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
)

// Collector fetches raw rows per entity. Every fetch returns nil without
// touching the store when the scope is empty, and applies no project filter
// when the scope is unrestricted.
type Collector interface {
	Projects(ctx context.Context, scope scopedomain.ProjectScope) ([]Project, error)
	WeeklyReports(ctx context.Context, q Query) ([]WeeklyReport, error)
	DailySnapshots(ctx context.Context, q Query) ([]DailySnapshot, error)
	EffectifEntries(ctx context.Context, q Query) ([]EffectifEntry, error)
	Trainings(ctx context.Context, q Query) ([]Training, error)
	AwarenessSessions(ctx context.Context, q Query) ([]AwarenessSession, error)
	Inspections(ctx context.Context, q Query) ([]Inspection, error)
	SorReports(ctx context.Context, q Query) ([]SorReport, error)
	WorkPermits(ctx context.Context, q Query) ([]WorkPermit, error)
	RegulatoryWatch(ctx context.Context, q Query) ([]RegulatoryWatch, error)
	// SubcontractorOpenings returns openings created on or before the end of
	// the window with their documents.
	SubcontractorOpenings(ctx context.Context, q Query) ([]SubcontractorOpening, []OpeningDocument, error)
	ActiveWorkers(ctx context.Context, scope scopedomain.ProjectScope) ([]ActiveWorker, error)
	// MedicalAptitudes returns every aptitude record of the given workers.
	MedicalAptitudes(ctx context.Context, workerIDs []snowflake.ID) ([]MedicalAptitude, error)
}
