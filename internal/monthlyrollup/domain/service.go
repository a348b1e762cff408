package domain

import (
	"context"

	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
)

type Service interface {
	// Summary returns the monthly rollup visible to principal, served from
	// the summary cache when fresh.
	Summary(ctx context.Context, principal scopedomain.Principal, req Request) (*Summary, error)
	// Warm recomputes the unrestricted summary of month and stores it.
	Warm(ctx context.Context, month weekcalendar.MonthKey) error
}
