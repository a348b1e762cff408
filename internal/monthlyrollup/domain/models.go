package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
)

const (
	SectionRegulatoryWatch         = "regulatory_watch"
	SectionDeviations              = "deviations"
	SectionSubcontractorDeviations = "subcontractor_deviations"
	SectionTrainings               = "trainings"
	SectionAwareness               = "awareness_sessions"
	SectionSubcontractorDocuments  = "subcontractor_documents"
	SectionMedicalConformity       = "medical_conformity"
)

// UnassignedPole labels projects that carry no pole.
const UnassignedPole = "Unassigned"

type Request struct {
	Month     weekcalendar.MonthKey
	ProjectID *snowflake.ID
}

type Summary struct {
	Month       string             `json:"month"`
	ProjectID   *snowflake.ID      `json:"project_id,omitempty"`
	StartDate   time.Time          `json:"start_date"`
	EndDate     time.Time          `json:"end_date"`
	Weeks       []weekcalendar.Key `json:"weeks"`
	Poles       []Pole             `json:"poles"`
	Sections    Sections           `json:"sections"`
	Warnings    []string           `json:"warnings,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
}

type Pole struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Projects int    `json:"projects"`
}

type Sections struct {
	RegulatoryWatch         []RegulatoryPole `json:"regulatory_watch"`
	Deviations              []DeviationPole  `json:"deviations"`
	SubcontractorDeviations []DeviationPole  `json:"subcontractor_deviations"`
	Trainings               []ActivityPole   `json:"trainings"`
	AwarenessSessions       []ActivityPole   `json:"awareness_sessions"`
	SubcontractorDocuments  []DocumentPole   `json:"subcontractor_documents"`
	MedicalConformity       []MedicalPole    `json:"medical_conformity"`
}

// ProjectRef identifies a project inside a pole breakdown.
type ProjectRef struct {
	ProjectID snowflake.ID `json:"project_id"`
	Code      string       `json:"code"`
	Name      string       `json:"name"`
}

type RegulatoryPole struct {
	PoleKey      string              `json:"pole_key"`
	Pole         string              `json:"pole"`
	Submissions  int                 `json:"submissions"`
	AverageScore float64             `json:"average_score"`
	Projects     []RegulatoryProject `json:"projects"`
}

type RegulatoryProject struct {
	ProjectRef
	Submissions  int     `json:"submissions"`
	AverageScore float64 `json:"average_score"`
}

// DeviationPole counts deviations by status. AverageClosureHours covers
// closed deviations that carry a corrective action date.
type DeviationPole struct {
	PoleKey             string  `json:"pole_key"`
	Pole                string  `json:"pole"`
	Total               int     `json:"total"`
	Open                int     `json:"open"`
	InProgress          int     `json:"in_progress"`
	Closed              int     `json:"closed"`
	ClosureRate         float64 `json:"closure_rate"`
	AverageClosureHours float64 `json:"average_closure_hours"`
}

type ActivityPole struct {
	PoleKey      string            `json:"pole_key"`
	Pole         string            `json:"pole"`
	Count        int               `json:"count"`
	Participants int64             `json:"participants"`
	Hours        float64           `json:"hours"`
	Projects     []ActivityProject `json:"projects"`
}

type ActivityProject struct {
	ProjectRef
	Count        int     `json:"count"`
	Participants int64   `json:"participants"`
	Hours        float64 `json:"hours"`
}

type DocumentPole struct {
	PoleKey           string              `json:"pole_key"`
	Pole              string              `json:"pole"`
	Openings          int                 `json:"openings"`
	AverageCompletion float64             `json:"average_completion"`
	Lowest            *OpeningCompletion  `json:"lowest,omitempty"`
	Records           []OpeningCompletion `json:"records"`
}

type OpeningCompletion struct {
	OpeningID      snowflake.ID `json:"opening_id"`
	ProjectID      snowflake.ID `json:"project_id"`
	ContractorName string       `json:"contractor_name"`
	Uploaded       int          `json:"uploaded"`
	Required       int          `json:"required"`
	Completion     float64      `json:"completion"`
	Missing        []string     `json:"missing"`
}

type MedicalPole struct {
	PoleKey        string  `json:"pole_key"`
	Pole           string  `json:"pole"`
	Workers        int     `json:"workers"`
	Conforming     int     `json:"conforming"`
	ConformityRate float64 `json:"conformity_rate"`
}
