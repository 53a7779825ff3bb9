package repository

import (
	"time"

	auth "github.com/goliatone/go-userauth"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserModel is the Bun model for users
type UserModel struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid"`
	Email          string     `bun:"email,notnull,unique"`
	PasswordHash   string     `bun:"password_hash,notnull"`
	Name           string     `bun:"full_name,notnull"`
	EmailConfirmed bool       `bun:"email_confirmed,notnull"`
	Disabled       bool       `bun:"disabled,notnull"`
	CreatedAt      *time.Time `bun:"created_at,nullzero"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero"`
}

// RoleModel is the Bun model for roles
type RoleModel struct {
	bun.BaseModel `bun:"table:roles,alias:role"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull,unique"`
}

// UserRoleModel joins users and roles
type UserRoleModel struct {
	bun.BaseModel `bun:"table:user_roles,alias:ur"`

	UserID uuid.UUID `bun:"user_id,pk,type:uuid"`
	RoleID int64     `bun:"role_id,pk"`
}

// AddressModel is the Bun model for addresses. Only the columns needed for
// ownership checks are mapped.
type AddressModel struct {
	bun.BaseModel `bun:"table:addresses,alias:addr"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid"`
	UserID    uuid.UUID  `bun:"user_id,notnull,type:uuid"`
	CreatedAt *time.Time `bun:"created_at,nullzero"`
}

func toRole(m RoleModel) (auth.Role, error) {
	name, err := auth.ParseRoleName(m.Name)
	if err != nil {
		return auth.Role{}, err
	}
	return auth.Role{ID: m.ID, Name: name}, nil
}

func toRoles(models []RoleModel) ([]auth.Role, error) {
	roles := make([]auth.Role, 0, len(models))
	for _, m := range models {
		role, err := toRole(m)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func toIdentity(m *UserModel, roles []auth.Role) *auth.Identity {
	return &auth.Identity{
		ID:             m.ID,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		Name:           m.Name,
		Roles:          roles,
		EmailConfirmed: m.EmailConfirmed,
		Disabled:       m.Disabled,
	}
}

func toAddress(m *AddressModel) *auth.Address {
	return &auth.Address{
		ID:      m.ID,
		OwnerID: m.UserID,
	}
}
