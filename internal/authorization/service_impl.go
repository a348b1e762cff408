package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectKPIReport     = "kpi_report"
	ObjectDashboard     = "dashboard"
	ObjectMonthlyReport = "monthly_report"
)

const (
	ActionView         = "view"
	ActionSubmit       = "submit"
	ActionApprove      = "approve"
	ActionReject       = "reject"
	ActionEditApproved = "edit_approved"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, principal scopedomain.Principal, object string, action string) error {
	if principal.UserID == 0 || principal.Role == "" {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := fmt.Sprintf("user:%s", principal.UserID.String())
	roleName := roleSubject(principal.Role)
	if err := s.ensureGrouping(subject, roleName); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.String("subject", subject),
			zap.String("role", string(principal.Role)),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping keeps exactly one role link per user so a role change in
// the users table takes effect on the next check.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func roleSubject(role scopedomain.Role) string {
	return fmt.Sprintf("role:%s", strings.ToLower(string(role)))
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	var policies [][]string

	grant := func(role scopedomain.Role, object string, actions ...string) {
		for _, action := range actions {
			policies = append(policies, []string{roleSubject(role), object, action})
		}
	}

	// Read-only roles
	grant(scopedomain.RoleConsultation, ObjectKPIReport, ActionView)
	grant(scopedomain.RoleConsultation, ObjectDashboard, ActionView)
	grant(scopedomain.RoleConsultation, ObjectMonthlyReport, ActionView)

	// Site roles
	for _, role := range []scopedomain.Role{scopedomain.RoleUser, scopedomain.RoleSupervisor} {
		grant(role, ObjectKPIReport, ActionView, ActionSubmit)
		grant(role, ObjectDashboard, ActionView)
	}
	grant(scopedomain.RoleResponsable, ObjectKPIReport, ActionView, ActionSubmit)
	grant(scopedomain.RoleResponsable, ObjectDashboard, ActionView)
	grant(scopedomain.RoleResponsable, ObjectMonthlyReport, ActionView)

	// Reviewers
	grant(scopedomain.RoleHSEDirector, ObjectKPIReport, ActionView, ActionSubmit, ActionApprove, ActionReject)
	grant(scopedomain.RoleHSEDirector, ObjectDashboard, ActionView)
	grant(scopedomain.RoleHSEDirector, ObjectMonthlyReport, ActionView)

	grant(scopedomain.RoleAdmin, ObjectKPIReport, ActionView, ActionSubmit, ActionApprove, ActionReject, ActionEditApproved)
	grant(scopedomain.RoleAdmin, ObjectDashboard, ActionView)
	grant(scopedomain.RoleAdmin, ObjectMonthlyReport, ActionView)

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
