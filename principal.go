package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Principal is the request scoped "who is calling". It is built fresh on
// every resolution and never persisted. Fields are read through accessors so
// a resolved principal can not be edited in place.
type Principal struct {
	id          uuid.UUID
	email       string
	name        string
	authorities []RoleName
}

// NewPrincipal builds a principal value
func NewPrincipal(id uuid.UUID, email, name string, authorities ...RoleName) Principal {
	return Principal{
		id:          id,
		email:       email,
		name:        name,
		authorities: append([]RoleName(nil), authorities...),
	}
}

func (p Principal) ID() uuid.UUID { return p.id }
func (p Principal) Email() string { return p.email }
func (p Principal) Name() string  { return p.name }

// Authorities returns a copy of the granted role names
func (p Principal) Authorities() []RoleName {
	return append([]RoleName(nil), p.authorities...)
}

// HasAuthority reports whether role is among the granted authorities
func (p Principal) HasAuthority(role RoleName) bool {
	for _, a := range p.authorities {
		if a == role {
			return true
		}
	}
	return false
}

// IsZero reports whether the principal was never resolved
func (p Principal) IsZero() bool {
	return p.id == uuid.Nil
}

// PrincipalFromIdentity maps an identity's roles to authorities
func PrincipalFromIdentity(identity *Identity) Principal {
	if identity == nil {
		return Principal{}
	}
	return NewPrincipal(identity.ID, identity.Email, identity.Name, RoleNames(identity.Roles)...)
}

// PrincipalResolver assembles principals from the user store
type PrincipalResolver struct {
	users  UserStore
	logger Logger
}

// NewPrincipalResolver creates a resolver over the given store
func NewPrincipalResolver(users UserStore, logger Logger) *PrincipalResolver {
	_, logger = ResolveLogger("auth.principal_resolver", nil, logger)
	return &PrincipalResolver{
		users:  users,
		logger: logger,
	}
}

// Resolve loads the identity by email and returns its principal. A missing
// identity returns ErrResourceNotFound and no partial principal.
func (r *PrincipalResolver) Resolve(ctx context.Context, email string) (Principal, error) {
	identity, err := r.lookup(ctx, email)
	if err != nil {
		return Principal{}, err
	}
	return PrincipalFromIdentity(identity), nil
}

func (r *PrincipalResolver) lookup(ctx context.Context, email string) (*Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrResourceNotFound
	}

	identity, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrResourceNotFound
		}
		r.logger.Error("principal lookup failed", "error", err)
		return nil, internalError(err, "failed to load identity")
	}

	if identity == nil || identity.ID == uuid.Nil {
		return nil, ErrResourceNotFound
	}

	return identity, nil
}
