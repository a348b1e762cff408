package authorization

import (
	"context"

	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
)

type Service interface {
	// Authorize returns ErrForbidden when the principal's role does not grant
	// action on object.
	Authorize(ctx context.Context, principal scopedomain.Principal, object string, action string) error
}
