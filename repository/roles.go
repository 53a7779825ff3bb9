package repository

import (
	"context"

	"github.com/goliatone/go-errors"
	auth "github.com/goliatone/go-userauth"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Roles is the bun backed auth.RoleStore
type Roles struct {
	db *bun.DB
}

var _ auth.RoleStore = (*Roles)(nil)

// NewRoles creates the roles store
func NewRoles(db *bun.DB) *Roles {
	return &Roles{db: db}
}

// FindByName returns every stored role carrying the name. An empty slice
// means the role is not bound to anything.
func (r *Roles) FindByName(ctx context.Context, name auth.RoleName) ([]auth.Role, error) {
	if !name.IsValid() {
		return nil, errors.New("unknown role name", errors.CategoryValidation).
			WithTextCode("INVALID_ROLE").
			WithMetadata(map[string]any{"role": string(name)})
	}

	var models []RoleModel
	err := r.db.NewSelect().
		Model(&models).
		Where("?TableAlias.name = ?", string(name)).
		OrderExpr("?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return toRoles(models)
}

// ForUserTx returns the roles currently granted to a user
func (r *Roles) ForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]auth.Role, error) {
	var models []RoleModel
	err := tx.NewSelect().
		Model(&models).
		Join("JOIN user_roles AS ur ON ur.role_id = role.id").
		Where("ur.user_id = ?", userID).
		OrderExpr("role.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return toRoles(models)
}

// Seed makes sure every known role exists
func (r *Roles) Seed(ctx context.Context) error {
	for _, name := range auth.GetAllRoles() {
		_, err := r.db.NewInsert().
			Model(&RoleModel{Name: string(name)}).
			On("CONFLICT (name) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to seed roles").
				WithMetadata(map[string]any{"role": string(name)})
		}
	}
	return nil
}

// Grant adds a role to a user, granting a held role is a no-op
func (r *Roles) Grant(ctx context.Context, userID uuid.UUID, name auth.RoleName) error {
	return r.GrantTx(ctx, r.db, userID, name)
}

// GrantTx is Grant inside a caller owned transaction
func (r *Roles) GrantTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, name auth.RoleName) error {
	if !name.IsValid() {
		return errors.New("unknown role name", errors.CategoryValidation).
			WithTextCode("INVALID_ROLE").
			WithMetadata(map[string]any{"role": string(name)})
	}

	role := &RoleModel{}
	err := tx.NewSelect().
		Model(role).
		Where("?TableAlias.name = ?", string(name)).
		OrderExpr("?TableAlias.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryNotFound, "role is not seeded").
			WithMetadata(map[string]any{"role": string(name)})
	}

	_, err = tx.NewInsert().
		Model(&UserRoleModel{UserID: userID, RoleID: role.ID}).
		On("CONFLICT (user_id, role_id) DO NOTHING").
		Exec(ctx)
	return err
}

// Revoke removes a role from a user
func (r *Roles) Revoke(ctx context.Context, userID uuid.UUID, name auth.RoleName) error {
	_, err := r.db.NewDelete().
		Model((*UserRoleModel)(nil)).
		Where("user_id = ?", userID).
		Where("role_id IN (?)", r.db.NewSelect().
			Model((*RoleModel)(nil)).
			Column("id").
			Where("name = ?", string(name))).
		Exec(ctx)
	return err
}
