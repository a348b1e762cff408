package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Role is a closed set of principal roles.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleHSEDirector  Role = "hse_director"
	RoleConsultation Role = "consultation"
	RoleResponsable  Role = "responsable"
	RoleSupervisor   Role = "supervisor"
	RoleUser         Role = "user"
)

var (
	ErrInvalidRole      = errors.New("invalid_role")
	ErrInvalidPrincipal = errors.New("invalid_principal")
	ErrNotFound         = errors.New("not_found")
)

// ParseRole validates a stored role string.
func ParseRole(raw string) (Role, error) {
	switch role := Role(strings.ToLower(strings.TrimSpace(raw))); role {
	case RoleAdmin, RoleHSEDirector, RoleConsultation, RoleResponsable, RoleSupervisor, RoleUser:
		return role, nil
	default:
		return "", ErrInvalidRole
	}
}

// HasGlobalScope reports whether the role sees every project.
func (r Role) HasGlobalScope() bool {
	switch r {
	case RoleAdmin, RoleHSEDirector, RoleConsultation:
		return true
	default:
		return false
	}
}

// Principal is the resolved caller.
type Principal struct {
	UserID             snowflake.ID
	Role               Role
	HasGlobalScope     bool
	AssignedProjectIDs []snowflake.ID
}

// Filters narrows a principal's visibility.
type Filters struct {
	Pole      string
	ProjectID *snowflake.ID
}

// ProjectScope is either unrestricted or an explicit, possibly empty, set of
// project IDs. The zero value is an empty restricted scope.
type ProjectScope struct {
	unrestricted bool
	ids          []snowflake.ID
}

// Unrestricted returns the scope that applies no project filter.
func Unrestricted() ProjectScope {
	return ProjectScope{unrestricted: true}
}

// Restricted returns a scope limited to ids. Duplicates are dropped.
func Restricted(ids ...snowflake.ID) ProjectScope {
	out := make([]snowflake.ID, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		out = append(out, id)
	}
	slices.Sort(out)
	return ProjectScope{ids: slices.Compact(out)}
}

func (s ProjectScope) IsUnrestricted() bool { return s.unrestricted }

// IsEmpty reports a restricted scope with no projects. Queries under an empty
// scope must return nothing.
func (s ProjectScope) IsEmpty() bool {
	return !s.unrestricted && len(s.ids) == 0
}

// IDs returns the sorted project IDs of a restricted scope.
func (s ProjectScope) IDs() []snowflake.ID {
	return slices.Clone(s.ids)
}

func (s ProjectScope) Contains(id snowflake.ID) bool {
	if s.unrestricted {
		return true
	}
	_, ok := slices.BinarySearch(s.ids, id)
	return ok
}

// Intersect narrows s to ids.
func (s ProjectScope) Intersect(ids ...snowflake.ID) ProjectScope {
	if s.unrestricted {
		return Restricted(ids...)
	}
	kept := make([]snowflake.ID, 0, len(ids))
	for _, id := range ids {
		if s.Contains(id) {
			kept = append(kept, id)
		}
	}
	return Restricted(kept...)
}

// Fingerprint is a stable identifier of the scope for cache keys.
func (s ProjectScope) Fingerprint() string {
	if s.unrestricted {
		return "all"
	}
	if len(s.ids) == 0 {
		return "none"
	}
	h := sha1.New()
	for _, id := range s.ids {
		h.Write([]byte(strconv.FormatInt(int64(id), 10)))
		h.Write([]byte{','})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
