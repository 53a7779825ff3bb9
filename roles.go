package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// RoleName is one of the closed set of roles an identity can hold
type RoleName string

const (
	// RoleUser is granted to every new identity
	RoleUser RoleName = "ROLE_USER"
	// RoleManager is granted by collaborators outside this package
	RoleManager RoleName = "ROLE_MANAGER"
	// RoleAdmin unlocks the admin override in user access checks
	RoleAdmin RoleName = "ROLE_ADMIN"
)

// Role is a persisted role row as seen by this package
type Role struct {
	ID   int64
	Name RoleName
}

// IsValid checks if the role is one of the predefined valid roles
func (r RoleName) IsValid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r RoleName) String() string {
	return string(r)
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []RoleName {
	return []RoleName{
		RoleUser,
		RoleManager,
		RoleAdmin,
	}
}

// ParseRoleName validates a raw role name at the store boundary.
func ParseRoleName(raw string) (RoleName, error) {
	role := RoleName(strings.TrimSpace(raw))
	if !role.IsValid() {
		return "", errors.New("unknown role name", errors.CategoryValidation).
			WithTextCode("INVALID_ROLE").
			WithMetadata(map[string]any{"role": raw})
	}
	return role, nil
}

// RoleNames flattens roles into their names, dropping duplicates but
// keeping first seen order.
func RoleNames(roles []Role) []RoleName {
	out := make([]RoleName, 0, len(roles))
	seen := make(map[RoleName]struct{}, len(roles))
	for _, role := range roles {
		if _, ok := seen[role.Name]; ok {
			continue
		}
		seen[role.Name] = struct{}{}
		out = append(out, role.Name)
	}
	return out
}

func roleStrings(names []RoleName) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = string(name)
	}
	return out
}
