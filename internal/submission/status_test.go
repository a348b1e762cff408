package submission

import "testing"

func TestCombine(t *testing.T) {
	cases := []struct {
		name string
		in   []Status
		want Status
	}{
		{"empty", nil, StatusNotSubmitted},
		{"all approved", []Status{StatusApproved, StatusApproved}, StatusApproved},
		{"approved and draft", []Status{StatusApproved, StatusDraft}, StatusPartial},
		{"approved and submitted", []Status{StatusApproved, StatusSubmitted}, StatusPartial},
		{"submitted and missing", []Status{StatusSubmitted, StatusNotSubmitted}, StatusPartial},
		{"all submitted", []Status{StatusSubmitted, StatusSubmitted}, StatusSubmitted},
		{"drafts only", []Status{StatusDraft, StatusDraft}, StatusDraft},
		{"draft and missing", []Status{StatusDraft, StatusNotSubmitted}, StatusDraft},
		{"nothing", []Status{StatusNotSubmitted}, StatusNotSubmitted},
	}
	for _, tc := range cases {
		if got := Combine(tc.in); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}
