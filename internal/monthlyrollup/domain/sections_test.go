package domain

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	kpidomain "github.com/smallbiznis/hsekpi/internal/kpisource/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func testIndex() *PoleIndex {
	return NewPoleIndex([]kpidomain.Project{
		{ID: 1, Code: "P1", Name: "Port", Pole: "Nord"},
		{ID: 2, Code: "P2", Name: "Dam", Pole: "Sud"},
		{ID: 3, Code: "P3", Name: "Road", Pole: " sud "},
		{ID: 4, Code: "P4", Name: "Depot", Pole: ""},
	})
}

func TestPoleIndexGroupsBySlug(t *testing.T) {
	idx := testIndex()
	poles := idx.Poles()

	require.Len(t, poles, 3)
	assert.Equal(t, Pole{Key: "nord", Label: "Nord", Projects: 1}, poles[0])
	assert.Equal(t, Pole{Key: "sud", Label: "Sud", Projects: 2}, poles[1])
	assert.Equal(t, Pole{Key: "unassigned", Label: UnassignedPole, Projects: 1}, poles[2])

	key, ok := idx.PoleOf(3)
	assert.True(t, ok)
	assert.Equal(t, "sud", key)
	_, ok = idx.PoleOf(99)
	assert.False(t, ok)
}

func TestBuildRegulatoryWatch(t *testing.T) {
	rows := []kpidomain.RegulatoryWatch{
		{ProjectID: 1, Category: "SST", OverallScore: ptr(80.0)},
		{ProjectID: 1, Category: "sst", OverallScore: ptr(90.0)},
		{ProjectID: 1, Category: "environment", OverallScore: ptr(10.0)},
		{ProjectID: 2, Category: "sst", OverallScore: nil},
		{ProjectID: 3, Category: "sst", OverallScore: ptr(70.0)},
	}
	got := BuildRegulatoryWatch(testIndex(), rows, "sst")

	require.Len(t, got, 3)
	assert.Equal(t, 2, got[0].Submissions)
	assert.Equal(t, 85.0, got[0].AverageScore)

	assert.Equal(t, 1, got[1].Submissions)
	assert.Equal(t, 70.0, got[1].AverageScore)
	require.Len(t, got[1].Projects, 2)
	assert.Equal(t, 0, got[1].Projects[0].Submissions)
	assert.Equal(t, 0.0, got[1].Projects[0].AverageScore)

	assert.Equal(t, 0, got[2].Submissions)
	assert.Len(t, got[2].Projects, 1)
}

func TestBuildDeviationsSubsets(t *testing.T) {
	rules := CompanyRules{InternalTokens: []string{"sgtm"}, UnknownValues: []string{"unknown", "n/a"}}
	corrected := date(2024, time.March, 5)
	rows := []kpidomain.SorReport{
		{ProjectID: 1, ObservationDate: date(2024, 3, 4), ObservationTime: ptr("08:00"), Status: "closed", Company: "SGTM",
			CorrectiveActionDate: &corrected, CorrectiveActionTime: ptr("20:00")},
		{ProjectID: 1, ObservationDate: date(2024, 3, 6), Status: "open", Company: "Atlas Levage"},
		{ProjectID: 1, ObservationDate: date(2024, 3, 6), Status: "closed", Company: "Atlas Levage",
			CorrectiveActionDate: &corrected},
		{ProjectID: 1, ObservationDate: date(2024, 3, 7), Status: "In Progress", Company: ""},
		{ProjectID: 1, ObservationDate: date(2024, 3, 8), Status: "open", Company: "n/a"},
	}
	idx := testIndex()

	all := BuildDeviations(idx, rows, rules, false)
	require.Len(t, all, 3)
	nord := all[0]
	assert.Equal(t, 4, nord.Total)
	assert.Equal(t, 1, nord.Open)
	assert.Equal(t, 1, nord.InProgress)
	assert.Equal(t, 2, nord.Closed)
	assert.Equal(t, 50.0, nord.ClosureRate)
	// only the first closure is chronologically valid: 36 hours
	assert.Equal(t, 36.0, nord.AverageClosureHours)

	subs := BuildDeviations(idx, rows, rules, true)
	assert.Equal(t, 2, subs[0].Total)
	assert.Equal(t, 1, subs[0].Closed)
	assert.Equal(t, 50.0, subs[0].ClosureRate)

	assert.Equal(t, DeviationPole{PoleKey: "sud", Pole: "Sud"}, all[1])
}

func TestBuildActivity(t *testing.T) {
	records := TrainingRecords([]kpidomain.Training{
		{ProjectID: 2, Participants: 10, DurationHours: 1.5},
		{ProjectID: 3, Participants: 4, DurationHours: 2.25},
		{ProjectID: 3, Participants: 6, DurationHours: 1},
	})
	got := BuildActivity(testIndex(), records)

	require.Len(t, got, 3)
	assert.Equal(t, 0, got[0].Count)
	assert.Len(t, got[0].Projects, 1)

	sud := got[1]
	assert.Equal(t, 3, sud.Count)
	assert.Equal(t, int64(20), sud.Participants)
	assert.Equal(t, 4.75, sud.Hours)
	require.Len(t, sud.Projects, 2)
	assert.Equal(t, snowflake.ID(2), sud.Projects[0].ProjectID)
	assert.Equal(t, 2, sud.Projects[1].Count)
	assert.Equal(t, 3.25, sud.Projects[1].Hours)
}

func TestBuildDocumentCompletion(t *testing.T) {
	required := []string{"contrat", "assurance", "cnss", "plan_hse"}
	asOf := date(2024, time.March, 31)
	openings := []kpidomain.SubcontractorOpening{
		{ID: 10, ProjectID: 1, ContractorName: "Atlas"},
		{ID: 11, ProjectID: 1, ContractorName: "Beton Sud"},
		{ID: 12, ProjectID: 99, ContractorName: "Out of scope"},
	}
	docs := []kpidomain.OpeningDocument{
		{OpeningID: 10, DocKey: "contrat", FilePath: ptr("a.pdf")},
		{OpeningID: 10, DocKey: "assurance", FilePath: ptr("b.pdf"), ExpiresAt: ptr(date(2024, 3, 31))},
		{OpeningID: 10, DocKey: "cnss", FilePath: ptr("c.pdf"), ExpiresAt: ptr(date(2024, 3, 30))},
		{OpeningID: 10, DocKey: "plan_hse", FilePath: nil},
		{OpeningID: 11, DocKey: "Contrat", FilePath: ptr("d.pdf")},
	}

	got := BuildDocumentCompletion(testIndex(), openings, docs, required, asOf)
	require.Len(t, got, 3)

	nord := got[0]
	assert.Equal(t, 2, nord.Openings)
	require.Len(t, nord.Records, 2)
	assert.Equal(t, 50.0, nord.Records[0].Completion)
	assert.Equal(t, []string{"cnss", "plan_hse"}, nord.Records[0].Missing)
	assert.Equal(t, 25.0, nord.Records[1].Completion)
	assert.Equal(t, 37.5, nord.AverageCompletion)
	require.NotNil(t, nord.Lowest)
	assert.Equal(t, snowflake.ID(11), nord.Lowest.OpeningID)

	assert.Equal(t, 0, got[1].Openings)
	assert.Nil(t, got[1].Lowest)
	assert.Empty(t, got[1].Records)
}

func TestBuildMedicalConformity(t *testing.T) {
	monthEnd := date(2024, time.March, 31)
	workers := []kpidomain.ActiveWorker{
		{ID: 100, ProjectID: 1},
		{ID: 101, ProjectID: 1},
		{ID: 102, ProjectID: 1},
		{ID: 103, ProjectID: 1},
		{ID: 200, ProjectID: 2},
	}
	aptitudes := []kpidomain.MedicalAptitude{
		{WorkerID: 100, Aptitude: "Apte", ExamDate: date(2023, 6, 1), ExpiryDate: ptr(date(2024, 6, 1))},
		// expiry on month end still counts
		{WorkerID: 101, Aptitude: "apte", ExamDate: date(2023, 3, 31), ExpiryDate: ptr(monthEnd)},
		// expired before month end
		{WorkerID: 102, Aptitude: "apte", ExamDate: date(2023, 1, 1), ExpiryDate: ptr(date(2024, 3, 30))},
		// exam after month end
		{WorkerID: 103, Aptitude: "apte", ExamDate: date(2024, 4, 2)},
		{WorkerID: 200, Aptitude: "inapte", ExamDate: date(2024, 1, 2)},
	}

	got := BuildMedicalConformity(testIndex(), workers, aptitudes, "apte", monthEnd)
	require.Len(t, got, 3)
	assert.Equal(t, 4, got[0].Workers)
	assert.Equal(t, 2, got[0].Conforming)
	assert.Equal(t, 50.0, got[0].ConformityRate)
	assert.Equal(t, 1, got[1].Workers)
	assert.Equal(t, 0.0, got[1].ConformityRate)
	assert.Equal(t, MedicalPole{PoleKey: "unassigned", Pole: UnassignedPole}, got[2])
}
