package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"github.com/smallbiznis/hsekpi/internal/scope/repository"
	"github.com/smallbiznis/hsekpi/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupScope(t *testing.T) (scopedomain.Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)

	dbtest.Insert(t, conn, "projects", map[string]any{"id": 1, "code": "P1", "name": "Casablanca Port", "pole": "Nord"})
	dbtest.Insert(t, conn, "projects", map[string]any{"id": 2, "code": "P2", "name": "Tanger Med", "pole": "nord"})
	dbtest.Insert(t, conn, "projects", map[string]any{"id": 3, "code": "P3", "name": "Agadir", "pole": "Sud"})
	dbtest.Insert(t, conn, "users", map[string]any{"id": 10, "name": "Admin", "email": "admin@example.com", "role": "admin"})
	dbtest.Insert(t, conn, "users", map[string]any{"id": 11, "name": "Resp", "email": "resp@example.com", "role": "responsable"})
	dbtest.Insert(t, conn, "users", map[string]any{"id": 12, "name": "Lonely", "email": "lonely@example.com", "role": "user"})
	dbtest.Insert(t, conn, "users", map[string]any{"id": 13, "name": "Ghost", "email": "ghost@example.com", "role": "root"})
	dbtest.Insert(t, conn, "project_users", map[string]any{"project_id": 2, "user_id": 11})
	dbtest.Insert(t, conn, "project_users", map[string]any{"project_id": 3, "user_id": 11})

	svc := New(Params{DB: conn, Log: zap.NewNop(), Repo: repository.Provide()})
	return svc, conn
}

func TestLoadPrincipal(t *testing.T) {
	svc, _ := setupScope(t)
	ctx := context.Background()

	admin, err := svc.LoadPrincipal(ctx, 10)
	require.NoError(t, err)
	assert.True(t, admin.HasGlobalScope)
	assert.Empty(t, admin.AssignedProjectIDs)

	resp, err := svc.LoadPrincipal(ctx, 11)
	require.NoError(t, err)
	assert.False(t, resp.HasGlobalScope)
	assert.Equal(t, []snowflake.ID{2, 3}, resp.AssignedProjectIDs)

	_, err = svc.LoadPrincipal(ctx, 99)
	assert.ErrorIs(t, err, scopedomain.ErrNotFound)

	_, err = svc.LoadPrincipal(ctx, 13)
	assert.ErrorIs(t, err, scopedomain.ErrInvalidRole)
}

func TestVisibleProjectIDs(t *testing.T) {
	svc, _ := setupScope(t)
	ctx := context.Background()

	global := scopedomain.Principal{UserID: 10, Role: scopedomain.RoleAdmin, HasGlobalScope: true}
	scoped := scopedomain.Principal{UserID: 11, Role: scopedomain.RoleResponsable, AssignedProjectIDs: []snowflake.ID{2, 3}}
	lonely := scopedomain.Principal{UserID: 12, Role: scopedomain.RoleUser}
	missing := snowflake.ID(404)
	three := snowflake.ID(3)

	cases := []struct {
		name      string
		principal scopedomain.Principal
		filters   scopedomain.Filters
		wantAll   bool
		wantIDs   []snowflake.ID
	}{
		{name: "global_unfiltered", principal: global, wantAll: true},
		{name: "global_pole_case_insensitive", principal: global, filters: scopedomain.Filters{Pole: "NORD"}, wantIDs: []snowflake.ID{1, 2}},
		{name: "scoped_unfiltered", principal: scoped, wantIDs: []snowflake.ID{2, 3}},
		{name: "scoped_pole", principal: scoped, filters: scopedomain.Filters{Pole: "nord"}, wantIDs: []snowflake.ID{2}},
		{name: "scoped_project", principal: scoped, filters: scopedomain.Filters{ProjectID: &three}, wantIDs: []snowflake.ID{3}},
		{name: "scoped_pole_and_project_disjoint", principal: scoped, filters: scopedomain.Filters{Pole: "nord", ProjectID: &three}},
		{name: "missing_project_is_empty", principal: global, filters: scopedomain.Filters{ProjectID: &missing}},
		{name: "no_assignments_is_empty", principal: lonely, filters: scopedomain.Filters{Pole: "nord"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.VisibleProjectIDs(ctx, tc.principal, tc.filters)
			require.NoError(t, err)
			if tc.wantAll {
				assert.True(t, got.IsUnrestricted())
				return
			}
			assert.False(t, got.IsUnrestricted())
			if len(tc.wantIDs) == 0 {
				assert.True(t, got.IsEmpty())
				return
			}
			assert.Equal(t, tc.wantIDs, got.IDs())
		})
	}
}

func TestSoftDeletedProjectsAreHidden(t *testing.T) {
	svc, conn := setupScope(t)
	require.NoError(t, conn.Exec(`UPDATE projects SET deleted_at = CURRENT_TIMESTAMP WHERE id = 2`).Error)

	global := scopedomain.Principal{HasGlobalScope: true, Role: scopedomain.RoleAdmin}
	got, err := svc.VisibleProjectIDs(context.Background(), global, scopedomain.Filters{Pole: "nord"})
	require.NoError(t, err)
	assert.Equal(t, []snowflake.ID{1}, got.IDs())
}
