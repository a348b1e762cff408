package domain

import (
	"testing"
	"time"

	kpidomain "github.com/smallbiznis/hsekpi/internal/kpisource/domain"
	"github.com/stretchr/testify/assert"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestFoldSumsCountersAndAveragesPresentRates(t *testing.T) {
	agg := Fold(FoldInput{Snapshots: []kpidomain.DailySnapshot{
		{EntryDate: day(6), Accidents: i64(1), HseComplianceRate: f64(80), HoursWorked: f64(12.5)},
		{EntryDate: day(7), Accidents: i64(0), HseComplianceRate: nil, HoursWorked: f64(10)},
		{EntryDate: day(8), Accidents: i64(2), HseComplianceRate: f64(90)},
	}})

	assert.Equal(t, int64(3), agg.Accidents)
	assert.Equal(t, 85.0, agg.HseComplianceRate)
	assert.Equal(t, 2, agg.HseComplianceSamples)
	assert.Equal(t, 22.5, agg.HoursWorked)
	assert.Equal(t, 3, agg.SnapshotDays)
}

func TestFoldWithoutRowsIsZero(t *testing.T) {
	agg := Fold(FoldInput{})

	assert.Equal(t, WeeklyAggregate{EffectifSource: EffectifFromNone}, agg)
}

func TestFoldComplianceWithoutSamples(t *testing.T) {
	agg := Fold(FoldInput{Snapshots: []kpidomain.DailySnapshot{
		{EntryDate: day(6), Accidents: i64(1)},
	}})

	assert.Equal(t, 0.0, agg.MedicalComplianceRate)
	assert.Equal(t, 0, agg.MedicalComplianceSamples)
}

func TestFoldEffectifFallbackChain(t *testing.T) {
	workers := int64(7)
	in := FoldInput{
		Snapshots: []kpidomain.DailySnapshot{
			{EntryDate: day(6), Effectif: i64(20)},
			{EntryDate: day(7)},
			{EntryDate: day(8)},
		},
		EffectifEntries: []kpidomain.EffectifEntry{
			{EntryDate: day(6), Effectif: 99},
			{EntryDate: day(7), Effectif: 15},
		},
		ActiveWorkers: &workers,
	}

	agg := Fold(in)

	// day 6 from the snapshot, day 7 from the entry, day 8 from headcount
	assert.Equal(t, int64(20+15+7), agg.Effectif)
	assert.Equal(t, EffectifFromActiveWorkers, agg.EffectifSource)
}

func TestFoldEffectifFromEntriesOnly(t *testing.T) {
	agg := Fold(FoldInput{EffectifEntries: []kpidomain.EffectifEntry{
		{EntryDate: day(9), Effectif: 12},
		{EntryDate: day(10), Effectif: 14},
	}})

	assert.Equal(t, int64(26), agg.Effectif)
	assert.Equal(t, EffectifFromEntry, agg.EffectifSource)
}

func TestFoldEffectifDefaultsToHeadcount(t *testing.T) {
	workers := int64(4)
	agg := Fold(FoldInput{ActiveWorkers: &workers})

	assert.Equal(t, int64(4), agg.Effectif)
	assert.Equal(t, EffectifFromActiveWorkers, agg.EffectifSource)
}

func TestNeedsActiveWorkers(t *testing.T) {
	assert.True(t, NeedsActiveWorkers(nil, nil))
	assert.False(t, NeedsActiveWorkers(
		[]kpidomain.DailySnapshot{{EntryDate: day(6), Effectif: i64(3)}},
		nil,
	))
	assert.False(t, NeedsActiveWorkers(
		[]kpidomain.DailySnapshot{{EntryDate: day(6)}},
		[]kpidomain.EffectifEntry{{EntryDate: day(6), Effectif: 3}},
	))
	assert.True(t, NeedsActiveWorkers(
		[]kpidomain.DailySnapshot{{EntryDate: day(6)}},
		nil,
	))
}
