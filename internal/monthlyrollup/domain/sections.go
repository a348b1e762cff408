package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/samber/lo"
	kpidomain "github.com/smallbiznis/hsekpi/internal/kpisource/domain"
	"github.com/smallbiznis/hsekpi/internal/safetyrate"
)

const (
	sorOpen       = "open"
	sorInProgress = "in_progress"
	sorClosed     = "closed"
)

// BuildRegulatoryWatch averages overall scores of the submissions in
// category. Submissions without a score are not counted.
func BuildRegulatoryWatch(idx *PoleIndex, rows []kpidomain.RegulatoryWatch, category string) []RegulatoryPole {
	category = strings.ToLower(strings.TrimSpace(category))
	scores := make(map[snowflake.ID][]float64)
	for _, row := range rows {
		if category != "" && strings.ToLower(strings.TrimSpace(row.Category)) != category {
			continue
		}
		if row.OverallScore == nil {
			continue
		}
		scores[row.ProjectID] = append(scores[row.ProjectID], *row.OverallScore)
	}

	out := make([]RegulatoryPole, 0, len(idx.poles))
	for _, pole := range idx.poles {
		section := RegulatoryPole{PoleKey: pole.Key, Pole: pole.Label, Projects: []RegulatoryProject{}}
		var poleScores []float64
		for _, p := range idx.ProjectsOf(pole.Key) {
			projectScores := scores[p.ID]
			poleScores = append(poleScores, projectScores...)
			section.Projects = append(section.Projects, RegulatoryProject{
				ProjectRef:   ref(p),
				Submissions:  len(projectScores),
				AverageScore: safetyrate.Mean(projectScores, safetyrate.PercentPlaces),
			})
		}
		section.Submissions = len(poleScores)
		section.AverageScore = safetyrate.Mean(poleScores, safetyrate.PercentPlaces)
		out = append(out, section)
	}
	return out
}

// BuildDeviations counts deviations per pole. With subcontractorsOnly only
// deviations raised against a subcontractor are kept.
func BuildDeviations(idx *PoleIndex, rows []kpidomain.SorReport, rules CompanyRules, subcontractorsOnly bool) []DeviationPole {
	byPole := lo.GroupBy(lo.Filter(rows, func(row kpidomain.SorReport, _ int) bool {
		company := rules.Classify(row.Company)
		if subcontractorsOnly {
			return company.IsSubcontractor()
		}
		return company.CountsInAll()
	}), func(row kpidomain.SorReport) string {
		key, _ := idx.PoleOf(row.ProjectID)
		return key
	})

	out := make([]DeviationPole, 0, len(idx.poles))
	for _, pole := range idx.poles {
		section := DeviationPole{PoleKey: pole.Key, Pole: pole.Label}
		var closureHours []float64
		for _, row := range byPole[pole.Key] {
			section.Total++
			switch normalizeStatus(row.Status) {
			case sorOpen:
				section.Open++
			case sorInProgress:
				section.InProgress++
			case sorClosed:
				section.Closed++
				if hours, ok := closureDelay(row); ok {
					closureHours = append(closureHours, hours)
				}
			}
		}
		section.ClosureRate = safetyrate.Percentage(float64(section.Closed), float64(section.Total))
		section.AverageClosureHours = safetyrate.Mean(closureHours, safetyrate.PercentPlaces)
		out = append(out, section)
	}
	return out
}

// ActivityRecord is one training or awareness session.
type ActivityRecord struct {
	ProjectID    snowflake.ID
	Participants int64
	Hours        float64
}

func TrainingRecords(rows []kpidomain.Training) []ActivityRecord {
	return lo.Map(rows, func(row kpidomain.Training, _ int) ActivityRecord {
		return ActivityRecord{ProjectID: row.ProjectID, Participants: row.Participants, Hours: row.DurationHours}
	})
}

func AwarenessRecords(rows []kpidomain.AwarenessSession) []ActivityRecord {
	return lo.Map(rows, func(row kpidomain.AwarenessSession, _ int) ActivityRecord {
		return ActivityRecord{ProjectID: row.ProjectID, Participants: row.Participants, Hours: row.SessionHours}
	})
}

func BuildActivity(idx *PoleIndex, records []ActivityRecord) []ActivityPole {
	byProject := lo.GroupBy(records, func(r ActivityRecord) snowflake.ID { return r.ProjectID })

	out := make([]ActivityPole, 0, len(idx.poles))
	for _, pole := range idx.poles {
		section := ActivityPole{PoleKey: pole.Key, Pole: pole.Label, Projects: []ActivityProject{}}
		for _, p := range idx.ProjectsOf(pole.Key) {
			list := byProject[p.ID]
			project := ActivityProject{
				ProjectRef:   ref(p),
				Count:        len(list),
				Participants: lo.SumBy(list, func(r ActivityRecord) int64 { return r.Participants }),
				Hours:        lo.SumBy(list, func(r ActivityRecord) float64 { return r.Hours }),
			}
			section.Count += project.Count
			section.Participants += project.Participants
			section.Hours += project.Hours
			project.Hours = safetyrate.Round(project.Hours, safetyrate.PercentPlaces)
			section.Projects = append(section.Projects, project)
		}
		section.Hours = safetyrate.Round(section.Hours, safetyrate.PercentPlaces)
		out = append(out, section)
	}
	return out
}

// BuildDocumentCompletion scores every opening against the required keys. A
// document counts when it has a file and has not expired on asOf.
func BuildDocumentCompletion(idx *PoleIndex, openings []kpidomain.SubcontractorOpening, docs []kpidomain.OpeningDocument, requiredKeys []string, asOf time.Time) []DocumentPole {
	byOpening := lo.GroupBy(docs, func(d kpidomain.OpeningDocument) snowflake.ID { return d.OpeningID })
	byPole := make(map[string][]OpeningCompletion)
	for _, opening := range openings {
		poleKey, ok := idx.PoleOf(opening.ProjectID)
		if !ok {
			continue
		}
		byPole[poleKey] = append(byPole[poleKey], scoreOpening(opening, byOpening[opening.ID], requiredKeys, asOf))
	}

	out := make([]DocumentPole, 0, len(idx.poles))
	for _, pole := range idx.poles {
		records := byPole[pole.Key]
		if records == nil {
			records = []OpeningCompletion{}
		}
		completions := lo.Map(records, func(r OpeningCompletion, _ int) float64 { return r.Completion })
		section := DocumentPole{
			PoleKey:           pole.Key,
			Pole:              pole.Label,
			Openings:          len(records),
			AverageCompletion: safetyrate.Mean(completions, safetyrate.PercentPlaces),
			Records:           records,
		}
		if len(records) > 0 {
			lowest := lo.MinBy(records, func(a, b OpeningCompletion) bool {
				if a.Completion != b.Completion {
					return a.Completion < b.Completion
				}
				return a.OpeningID < b.OpeningID
			})
			section.Lowest = &lowest
		}
		out = append(out, section)
	}
	return out
}

func scoreOpening(opening kpidomain.SubcontractorOpening, docs []kpidomain.OpeningDocument, requiredKeys []string, asOf time.Time) OpeningCompletion {
	present := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if doc.FilePath == nil || strings.TrimSpace(*doc.FilePath) == "" {
			continue
		}
		if doc.ExpiresAt != nil && doc.ExpiresAt.Before(asOf) {
			continue
		}
		present[strings.ToLower(strings.TrimSpace(doc.DocKey))] = true
	}

	missing := lo.Filter(requiredKeys, func(key string, _ int) bool { return !present[key] })
	uploaded := len(requiredKeys) - len(missing)
	return OpeningCompletion{
		OpeningID:      opening.ID,
		ProjectID:      opening.ProjectID,
		ContractorName: opening.ContractorName,
		Uploaded:       uploaded,
		Required:       len(requiredKeys),
		Completion:     safetyrate.Percentage(float64(uploaded), float64(len(requiredKeys))),
		Missing:        missing,
	}
}

// BuildMedicalConformity counts active workers holding a valid aptitude on
// asOf: exam on or before asOf, no expiry or expiry on or after asOf.
func BuildMedicalConformity(idx *PoleIndex, workers []kpidomain.ActiveWorker, aptitudes []kpidomain.MedicalAptitude, aptitudeValue string, asOf time.Time) []MedicalPole {
	aptitudeValue = strings.ToLower(strings.TrimSpace(aptitudeValue))
	conforming := make(map[snowflake.ID]bool)
	for _, a := range aptitudes {
		if strings.ToLower(strings.TrimSpace(a.Aptitude)) != aptitudeValue {
			continue
		}
		if a.ExamDate.After(asOf) {
			continue
		}
		if a.ExpiryDate != nil && a.ExpiryDate.Before(asOf) {
			continue
		}
		conforming[a.WorkerID] = true
	}

	byPole := lo.GroupBy(workers, func(w kpidomain.ActiveWorker) string {
		key, _ := idx.PoleOf(w.ProjectID)
		return key
	})

	out := make([]MedicalPole, 0, len(idx.poles))
	for _, pole := range idx.poles {
		list := byPole[pole.Key]
		ok := lo.CountBy(list, func(w kpidomain.ActiveWorker) bool { return conforming[w.ID] })
		out = append(out, MedicalPole{
			PoleKey:        pole.Key,
			Pole:           pole.Label,
			Workers:        len(list),
			Conforming:     ok,
			ConformityRate: safetyrate.Percentage(float64(ok), float64(len(list))),
		})
	}
	return out
}

func normalizeStatus(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	return strings.ReplaceAll(value, " ", "_")
}

// closureDelay is the number of hours between observation and corrective
// action. Missing clock times count as midnight.
func closureDelay(row kpidomain.SorReport) (float64, bool) {
	if row.CorrectiveActionDate == nil {
		return 0, false
	}
	observed := atClock(row.ObservationDate, row.ObservationTime)
	corrected := atClock(*row.CorrectiveActionDate, row.CorrectiveActionTime)
	if corrected.Before(observed) {
		return 0, false
	}
	return corrected.Sub(observed).Hours(), true
}

func atClock(day time.Time, clock *string) time.Time {
	base := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	if clock == nil {
		return base
	}
	value := strings.TrimSpace(*clock)
	for _, layout := range []string{"15:04:05", "15:04"} {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return base.Add(time.Duration(parsed.Hour())*time.Hour +
				time.Duration(parsed.Minute())*time.Minute +
				time.Duration(parsed.Second())*time.Second)
		}
	}
	return base
}

// SortWarnings keeps warning order stable across concurrent sections.
func SortWarnings(warnings []string) []string {
	out := lo.Uniq(warnings)
	sort.Strings(out)
	return out
}
