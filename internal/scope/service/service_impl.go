package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo scopedomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo scopedomain.Repository
}

func New(p Params) scopedomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("scope.service"),
		repo: p.Repo,
	}
}

func (s *Service) LoadPrincipal(ctx context.Context, userID snowflake.ID) (*scopedomain.Principal, error) {
	if userID == 0 {
		return nil, scopedomain.ErrInvalidPrincipal
	}

	user, err := s.repo.FindUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, scopedomain.ErrNotFound
	}

	role, err := scopedomain.ParseRole(user.Role)
	if err != nil {
		s.log.Warn("user has unknown role", zap.String("user_id", userID.String()), zap.String("role", user.Role))
		return nil, err
	}

	principal := &scopedomain.Principal{
		UserID:         user.ID,
		Role:           role,
		HasGlobalScope: role.HasGlobalScope(),
	}
	if principal.HasGlobalScope {
		return principal, nil
	}

	assigned, err := s.repo.ListAssignedProjectIDs(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	principal.AssignedProjectIDs = assigned
	return principal, nil
}

func (s *Service) VisibleProjectIDs(ctx context.Context, principal scopedomain.Principal, filters scopedomain.Filters) (scopedomain.ProjectScope, error) {
	unfiltered := filters.Pole == "" && filters.ProjectID == nil

	if principal.HasGlobalScope && unfiltered {
		return scopedomain.Unrestricted(), nil
	}

	var candidates []snowflake.ID
	if !principal.HasGlobalScope {
		candidates = scopedomain.Restricted(principal.AssignedProjectIDs...).IDs()
		if len(candidates) == 0 || unfiltered {
			return scopedomain.Restricted(candidates...), nil
		}
	}

	ids, err := s.repo.FilterProjectIDs(ctx, s.db, candidates, filters.Pole, filters.ProjectID)
	if err != nil {
		return scopedomain.ProjectScope{}, err
	}
	return scopedomain.Restricted(ids...), nil
}
