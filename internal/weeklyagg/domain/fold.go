package domain

import (
	"sort"
	"time"

	"github.com/samber/lo"
	kpidomain "github.com/smallbiznis/hsekpi/internal/kpisource/domain"
	"github.com/smallbiznis/hsekpi/internal/safetyrate"
)

const (
	EffectifFromSnapshot      = "snapshot"
	EffectifFromEntry         = "entry"
	EffectifFromActiveWorkers = "active_workers"
	EffectifFromNone          = "none"
)

// FoldInput carries the rows of one project and one week.
type FoldInput struct {
	Snapshots       []kpidomain.DailySnapshot
	EffectifEntries []kpidomain.EffectifEntry
	// ActiveWorkers is nil when the headcount is unknown.
	ActiveWorkers *int64
}

// Fold applies the per-field policy: counters and quantities are summed,
// compliance rates are averaged over non-null days, and effectif walks the
// snapshot, entry, active-worker chain for each recorded day.
func Fold(in FoldInput) WeeklyAggregate {
	rows := in.Snapshots
	agg := WeeklyAggregate{
		Accidents:           sumInt(rows, func(r kpidomain.DailySnapshot) *int64 { return r.Accidents }),
		AccidentsFatal:      sumInt(rows, func(r kpidomain.DailySnapshot) *int64 { return r.AccidentsFatal }),
		AccidentsSerious:    sumInt(rows, func(r kpidomain.DailySnapshot) *int64 { return r.AccidentsSerious }),
		AccidentsMinor:      sumInt(rows, func(r kpidomain.DailySnapshot) *int64 { return r.AccidentsMinor }),
		NearMisses:          sumInt(rows, func(r kpidomain.DailySnapshot) *int64 { return r.NearMisses }),
		FirstAidCases:       sumInt(rows, func(r kpidomain.DailySnapshot) *int64 { return r.FirstAidCases }),
		LostWorkdays:        sumInt(rows, func(r kpidomain.DailySnapshot) *int64 { return r.LostWorkdays }),
		TrainingsConducted:  sumInt(rows, func(r kpidomain.DailySnapshot) *int64 { return r.TrainingsConducted }),
		ToolboxTalks:        sumInt(rows, func(r kpidomain.DailySnapshot) *int64 { return r.ToolboxTalks }),
		WorkPermits:         sumInt(rows, func(r kpidomain.DailySnapshot) *int64 { return r.WorkPermits }),
		Inspections:         sumInt(rows, func(r kpidomain.DailySnapshot) *int64 { return r.Inspections }),
		Inductions:          sumInt(rows, func(r kpidomain.DailySnapshot) *int64 { return r.Inductions }),
		Deviations:          sumInt(rows, func(r kpidomain.DailySnapshot) *int64 { return r.Deviations }),
		DisciplinaryActions: sumInt(rows, func(r kpidomain.DailySnapshot) *int64 { return r.DisciplinaryActions }),
		UnsafeActs:          sumInt(rows, func(r kpidomain.DailySnapshot) *int64 { return r.UnsafeActs }),
		UnsafeConditions:    sumInt(rows, func(r kpidomain.DailySnapshot) *int64 { return r.UnsafeConditions }),
		EmergencyDrills:     sumInt(rows, func(r kpidomain.DailySnapshot) *int64 { return r.EmergencyDrills }),

		HoursWorked:            sumFloat(rows, func(r kpidomain.DailySnapshot) *float64 { return r.HoursWorked }),
		TrainingHours:          sumFloat(rows, func(r kpidomain.DailySnapshot) *float64 { return r.TrainingHours }),
		WaterConsumption:       sumFloat(rows, func(r kpidomain.DailySnapshot) *float64 { return r.WaterConsumption }),
		ElectricityConsumption: sumFloat(rows, func(r kpidomain.DailySnapshot) *float64 { return r.ElectricityConsumption }),

		SnapshotDays: len(rows),
	}

	hse := present(rows, func(r kpidomain.DailySnapshot) *float64 { return r.HseComplianceRate })
	agg.HseComplianceRate = safetyrate.Mean(hse, safetyrate.PercentPlaces)
	agg.HseComplianceSamples = len(hse)

	medical := present(rows, func(r kpidomain.DailySnapshot) *float64 { return r.MedicalComplianceRate })
	agg.MedicalComplianceRate = safetyrate.Mean(medical, safetyrate.PercentPlaces)
	agg.MedicalComplianceSamples = len(medical)

	agg.Effectif, agg.EffectifSource = foldEffectif(in)
	return agg
}

// NeedsActiveWorkers reports whether the effectif chain reaches its last
// level for at least one day, or for the whole week when nothing was recorded.
func NeedsActiveWorkers(snapshots []kpidomain.DailySnapshot, entries []kpidomain.EffectifEntry) bool {
	days := recordedDays(snapshots, entries)
	if len(days) == 0 {
		return true
	}
	entryByDay := lo.SliceToMap(entries, func(e kpidomain.EffectifEntry) (string, int64) {
		return dayKey(e.EntryDate), e.Effectif
	})
	snapshotByDay := lo.SliceToMap(snapshots, func(s kpidomain.DailySnapshot) (string, *int64) {
		return dayKey(s.EntryDate), s.Effectif
	})
	for _, day := range days {
		if snapshotByDay[day] != nil {
			continue
		}
		if _, ok := entryByDay[day]; ok {
			continue
		}
		return true
	}
	return false
}

func foldEffectif(in FoldInput) (int64, string) {
	days := recordedDays(in.Snapshots, in.EffectifEntries)
	if len(days) == 0 {
		if in.ActiveWorkers != nil {
			return *in.ActiveWorkers, EffectifFromActiveWorkers
		}
		return 0, EffectifFromNone
	}

	entryByDay := lo.SliceToMap(in.EffectifEntries, func(e kpidomain.EffectifEntry) (string, int64) {
		return dayKey(e.EntryDate), e.Effectif
	})
	snapshotByDay := lo.SliceToMap(in.Snapshots, func(s kpidomain.DailySnapshot) (string, *int64) {
		return dayKey(s.EntryDate), s.Effectif
	})

	var total int64
	source := EffectifFromNone
	rank := map[string]int{EffectifFromNone: 0, EffectifFromSnapshot: 1, EffectifFromEntry: 2, EffectifFromActiveWorkers: 3}
	use := func(level string) {
		if rank[level] > rank[source] {
			source = level
		}
	}
	for _, day := range days {
		if v := snapshotByDay[day]; v != nil {
			total += *v
			use(EffectifFromSnapshot)
			continue
		}
		if v, ok := entryByDay[day]; ok {
			total += v
			use(EffectifFromEntry)
			continue
		}
		if in.ActiveWorkers != nil {
			total += *in.ActiveWorkers
			use(EffectifFromActiveWorkers)
		}
	}
	return total, source
}

func recordedDays(snapshots []kpidomain.DailySnapshot, entries []kpidomain.EffectifEntry) []string {
	days := make([]string, 0, len(snapshots)+len(entries))
	for _, s := range snapshots {
		days = append(days, dayKey(s.EntryDate))
	}
	for _, e := range entries {
		days = append(days, dayKey(e.EntryDate))
	}
	days = lo.Uniq(days)
	sort.Strings(days)
	return days
}

func sumInt(rows []kpidomain.DailySnapshot, field func(kpidomain.DailySnapshot) *int64) int64 {
	return lo.SumBy(rows, func(r kpidomain.DailySnapshot) int64 { return lo.FromPtr(field(r)) })
}

func sumFloat(rows []kpidomain.DailySnapshot, field func(kpidomain.DailySnapshot) *float64) float64 {
	total := lo.SumBy(rows, func(r kpidomain.DailySnapshot) float64 { return lo.FromPtr(field(r)) })
	return safetyrate.Round(total, safetyrate.PercentPlaces)
}

func present(rows []kpidomain.DailySnapshot, field func(kpidomain.DailySnapshot) *float64) []float64 {
	return lo.FilterMap(rows, func(r kpidomain.DailySnapshot, _ int) (float64, bool) {
		v := field(r)
		if v == nil {
			return 0, false
		}
		return *v, true
	})
}

func dayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
