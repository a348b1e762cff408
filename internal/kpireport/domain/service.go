package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
)

type Service interface {
	Upsert(ctx context.Context, principal scopedomain.Principal, req UpsertRequest) (*Report, error)
	Get(ctx context.Context, principal scopedomain.Principal, id snowflake.ID) (*Report, error)
	Submit(ctx context.Context, principal scopedomain.Principal, id snowflake.ID) (*Report, error)
	Approve(ctx context.Context, principal scopedomain.Principal, id snowflake.ID) (*Report, error)
	Reject(ctx context.Context, principal scopedomain.Principal, req RejectRequest) (*Report, error)
	ApprovedAverages(ctx context.Context, principal scopedomain.Principal, projectID snowflake.ID, year int) (*Averages, error)
}
