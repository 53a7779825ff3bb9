package auth

import (
	"context"

	"github.com/google/uuid"
)

// AccessPolicy answers per resource access questions. Every call reads the
// stores afresh: there is no cache here, so role renames and ownership
// changes apply to the next request. Both checks fail closed.
type AccessPolicy struct {
	roles     RoleStore
	addresses AddressStore
	logger    Logger
}

// NewAccessPolicy creates the evaluator
func NewAccessPolicy(roles RoleStore, addresses AddressStore, logger Logger) *AccessPolicy {
	_, logger = ResolveLogger("auth.access_policy", nil, logger)
	return &AccessPolicy{
		roles:     roles,
		addresses: addresses,
		logger:    logger,
	}
}

// IsAccessUser grants access to the user's own record, or to any record when
// the principal holds one of the authorities currently bound to ROLE_ADMIN.
// A failing role lookup only removes the admin override.
func (p *AccessPolicy) IsAccessUser(ctx context.Context, principal Principal, targetUserID uuid.UUID) bool {
	if principal.IsZero() || targetUserID == uuid.Nil {
		p.logger.Warn("user access denied", "reason", "missing_identity")
		return false
	}

	if principal.ID() == targetUserID {
		return true
	}

	if p.hasAdminAuthority(ctx, principal) {
		p.logger.Debug("user access granted by admin role", "principal", principal.ID().String(), "target", targetUserID.String())
		return true
	}

	p.logger.Warn("user access denied", "principal", principal.ID().String(), "target", targetUserID.String())
	return false
}

// IsAccessAddress grants access only to the address owner. There is no admin
// override here, unlike IsAccessUser. Lookup errors and faults deny.
func (p *AccessPolicy) IsAccessAddress(ctx context.Context, principal Principal, addressID uuid.UUID) (allowed bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("address access check panicked", "address", addressID.String(), "panic", r)
			allowed = false
		}
	}()

	if principal.IsZero() || addressID == uuid.Nil || p.addresses == nil {
		p.logger.Warn("address access denied", "reason", "missing_identity")
		return false
	}

	address, err := p.addresses.FindByID(ctx, addressID)
	if err != nil {
		if IsNotFound(err) {
			p.logger.Warn("address not found during access check", "address", addressID.String())
		} else {
			p.logger.Error("address access check failed", "address", addressID.String(), "error", err)
		}
		return false
	}

	if address == nil || address.OwnerID == uuid.Nil {
		p.logger.Warn("address access denied", "reason", "no_owner", "address", addressID.String())
		return false
	}

	if address.OwnerID != principal.ID() {
		p.logger.Warn("address access denied", "principal", principal.ID().String(), "address", addressID.String())
		return false
	}

	return true
}

func (p *AccessPolicy) hasAdminAuthority(ctx context.Context, principal Principal) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("admin role lookup panicked", "panic", r)
			ok = false
		}
	}()

	if p.roles == nil {
		return false
	}

	roles, err := p.roles.FindByName(ctx, RoleAdmin)
	if err != nil {
		p.logger.Error("admin role lookup failed", "error", err)
		return false
	}

	for _, role := range roles {
		if principal.HasAuthority(role.Name) {
			return true
		}
	}

	return false
}
