package domain

import "strings"

type CompanyKind string

const (
	CompanyUnspecified   CompanyKind = "unspecified"
	CompanyInternal      CompanyKind = "internal"
	CompanyUnknown       CompanyKind = "unknown"
	CompanySubcontractor CompanyKind = "subcontractor"
)

// Company is the classified form of a free-text company field. Name is only
// set for subcontractors.
type Company struct {
	Kind CompanyKind
	Name string
}

// CompanyRules holds the lowercase tokens used by Classify.
type CompanyRules struct {
	InternalTokens []string
	UnknownValues  []string
}

func (r CompanyRules) Classify(raw string) Company {
	name := strings.TrimSpace(raw)
	value := strings.ToLower(name)
	if value == "" {
		return Company{Kind: CompanyUnspecified}
	}
	for _, unknown := range r.UnknownValues {
		if value == unknown {
			return Company{Kind: CompanyUnknown}
		}
	}
	for _, token := range r.InternalTokens {
		if strings.Contains(value, token) {
			return Company{Kind: CompanyInternal}
		}
	}
	return Company{Kind: CompanySubcontractor, Name: name}
}

// CountsInAll reports whether the deviation belongs to the all-companies
// subset. Explicitly unknown companies are left out.
func (c Company) CountsInAll() bool {
	return c.Kind != CompanyUnknown
}

func (c Company) IsSubcontractor() bool {
	return c.Kind == CompanySubcontractor
}
