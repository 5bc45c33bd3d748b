package auth

import "github.com/google/uuid"

// Role identifies a privileged capability.
type Role int32

const (
	RoleAdmin Role = iota
	RoleTeamManager
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleTeamManager:
		return "team_manager"
	default:
		return "unknown"
	}
}

// RoleChecker answers authorization queries for the exchange core.
// The core treats a negative answer as a hard rejection and keeps no
// identity state of its own.
type RoleChecker interface {
	HasRole(principal uuid.UUID, role Role) bool
}

// StaticRoles is an in-memory RoleChecker for standalone deployments
// and tests. Grants are keyed by (principal, role).
type StaticRoles struct {
	grants map[grantKey]bool
}

type grantKey struct {
	Principal uuid.UUID
	Role      Role
}

func NewStaticRoles() *StaticRoles {
	return &StaticRoles{grants: make(map[grantKey]bool)}
}

func (s *StaticRoles) Grant(principal uuid.UUID, role Role) {
	s.grants[grantKey{Principal: principal, Role: role}] = true
}

func (s *StaticRoles) Revoke(principal uuid.UUID, role Role) {
	delete(s.grants, grantKey{Principal: principal, Role: role})
}

func (s *StaticRoles) HasRole(principal uuid.UUID, role Role) bool {
	return s.grants[grantKey{Principal: principal, Role: role}]
}
