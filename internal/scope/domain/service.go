package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	LoadPrincipal(ctx context.Context, userID snowflake.ID) (*Principal, error)
	VisibleProjectIDs(ctx context.Context, principal Principal, filters Filters) (ProjectScope, error)
}
