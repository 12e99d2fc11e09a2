package models

import (
	"fmt"
	"sort"
	"strings"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AllRoles lists the closed set of roles.
func AllRoles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// RoleSet is a finite set of roles allowed through a gate.
// The zero value is the empty set and admits nobody.
type RoleSet struct {
	members map[Role]struct{}
}

// NewRoleSet builds a set from the given roles. Roles outside the closed set are dropped.
func NewRoleSet(roles ...Role) RoleSet {
	set := RoleSet{members: make(map[Role]struct{}, len(roles))}
	for _, r := range roles {
		if r.IsValid() {
			set.members[r] = struct{}{}
		}
	}
	return set
}

func (s RoleSet) Contains(r Role) bool {
	_, ok := s.members[r]
	return ok
}

func (s RoleSet) Len() int { return len(s.members) }

func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(s.members))
	for r := range s.members {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s RoleSet) String() string {
	roles := s.Roles()
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
