package authorization

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"github.com/smallbiznis/hsekpi/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	enforcer, err := NewEnforcer(conn)
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func principal(id int64, role scopedomain.Role) scopedomain.Principal {
	return scopedomain.Principal{UserID: snowflake.ID(id), Role: role, HasGlobalScope: role.HasGlobalScope()}
}

func TestAuthorizeByRole(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		role    scopedomain.Role
		object  string
		action  string
		allowed bool
	}{
		{scopedomain.RoleAdmin, ObjectKPIReport, ActionEditApproved, true},
		{scopedomain.RoleHSEDirector, ObjectKPIReport, ActionApprove, true},
		{scopedomain.RoleHSEDirector, ObjectKPIReport, ActionEditApproved, false},
		{scopedomain.RoleUser, ObjectKPIReport, ActionSubmit, true},
		{scopedomain.RoleUser, ObjectKPIReport, ActionApprove, false},
		{scopedomain.RoleUser, ObjectMonthlyReport, ActionView, false},
		{scopedomain.RoleConsultation, ObjectDashboard, ActionView, true},
		{scopedomain.RoleConsultation, ObjectKPIReport, ActionSubmit, false},
		{scopedomain.RoleResponsable, ObjectMonthlyReport, ActionView, true},
	}
	for i, tc := range cases {
		err := svc.Authorize(ctx, principal(int64(100+i), tc.role), tc.object, tc.action)
		if tc.allowed {
			assert.NoError(t, err, "%s %s.%s", tc.role, tc.object, tc.action)
		} else {
			assert.ErrorIs(t, err, ErrForbidden, "%s %s.%s", tc.role, tc.object, tc.action)
		}
	}
}

func TestAuthorizeFollowsRoleChange(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Authorize(ctx, principal(7, scopedomain.RoleAdmin), ObjectKPIReport, ActionEditApproved))
	err := svc.Authorize(ctx, principal(7, scopedomain.RoleUser), ObjectKPIReport, ActionEditApproved)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorizeValidatesInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, scopedomain.Principal{}, ObjectDashboard, ActionView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, principal(1, scopedomain.RoleAdmin), " ", ActionView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, principal(1, scopedomain.RoleAdmin), ObjectDashboard, ""), ErrInvalidAction)
}
