package domain

import (
	"context"
	"errors"

	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
)

var ErrInvalidYear = errors.New("invalid_year")

type Service interface {
	GetDashboardSummary(ctx context.Context, principal scopedomain.Principal, filters Filters) (*Summary, error)
}
