package domain

import "testing"

func TestClassifyCompany(t *testing.T) {
	rules := CompanyRules{InternalTokens: []string{"sgtm"}, UnknownValues: []string{"unknown", "n/a"}}

	cases := []struct {
		raw           string
		kind          CompanyKind
		inAll         bool
		subcontractor bool
	}{
		{raw: "", kind: CompanyUnspecified, inAll: true},
		{raw: "   ", kind: CompanyUnspecified, inAll: true},
		{raw: "SGTM", kind: CompanyInternal, inAll: true},
		{raw: "Groupe sgtm Maroc", kind: CompanyInternal, inAll: true},
		{raw: "Unknown", kind: CompanyUnknown},
		{raw: "N/A", kind: CompanyUnknown},
		{raw: " Atlas Levage ", kind: CompanySubcontractor, inAll: true, subcontractor: true},
	}
	for _, tc := range cases {
		got := rules.Classify(tc.raw)
		if got.Kind != tc.kind {
			t.Fatalf("%q: expected %s, got %s", tc.raw, tc.kind, got.Kind)
		}
		if got.CountsInAll() != tc.inAll {
			t.Fatalf("%q: CountsInAll = %v", tc.raw, got.CountsInAll())
		}
		if got.IsSubcontractor() != tc.subcontractor {
			t.Fatalf("%q: IsSubcontractor = %v", tc.raw, got.IsSubcontractor())
		}
	}

	if name := rules.Classify(" Atlas Levage ").Name; name != "Atlas Levage" {
		t.Fatalf("expected trimmed subcontractor name, got %q", name)
	}
}
