package repository

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	auth "github.com/goliatone/go-userauth"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrEmailTaken is returned when registering an email that already exists
var ErrEmailTaken = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode("EMAIL_TAKEN").
	WithCode(errors.CodeConflict)

// Users is the bun backed auth.UserStore
type Users struct {
	repository.Repository[*UserModel]
	db    *bun.DB
	roles *Roles
	now   func() time.Time
}

var _ auth.UserStore = (*Users)(nil)

// NewUsers creates the users store
func NewUsers(db *bun.DB, roles *Roles) *Users {
	repo := repository.NewRepository[*UserModel](db, repository.ModelHandlers[*UserModel]{
		NewRecord: func() *UserModel { return &UserModel{} },
		GetID: func(u *UserModel) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *UserModel, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &Users{
		Repository: repo,
		db:         db,
		roles:      roles,
		now:        time.Now,
	}
}

// FindByID loads an identity with its current roles
func (u *Users) FindByID(ctx context.Context, id uuid.UUID) (*auth.Identity, error) {
	return u.findTx(ctx, u.db, "id", id)
}

// FindByEmail loads an identity by email, the match is case insensitive
func (u *Users) FindByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, auth.ErrResourceNotFound
	}
	return u.findTx(ctx, u.db, "email", email)
}

func (u *Users) findTx(ctx context.Context, tx bun.IDB, column string, value any) (*auth.Identity, error) {
	record := &UserModel{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.? = ?", bun.Ident(column), value).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, errors.Wrap(auth.ErrResourceNotFound, errors.CategoryNotFound, "user not found").
				WithMetadata(map[string]any{column: value})
		}
		return nil, err
	}

	roles, err := u.roles.ForUserTx(ctx, tx, record.ID)
	if err != nil {
		return nil, err
	}

	return toIdentity(record, roles), nil
}

// Register creates a user holding exactly ROLE_USER. Any role the caller
// would like to add must be granted separately.
func (u *Users) Register(ctx context.Context, email, name, passwordHash string) (*auth.Identity, error) {
	email = normalizeEmail(email)
	if email == "" || passwordHash == "" {
		return nil, errors.New("email and password hash are required", errors.CategoryValidation).
			WithTextCode("INVALID_REGISTRATION").
			WithCode(errors.CodeBadRequest)
	}

	var identity *auth.Identity
	err := u.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*UserModel)(nil)).
			Where("?TableAlias.email = ?", email).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailTaken
		}

		now := u.now()
		record := &UserModel{
			ID:           uuid.New(),
			Email:        email,
			Name:         strings.TrimSpace(name),
			PasswordHash: passwordHash,
			CreatedAt:    &now,
			UpdatedAt:    &now,
		}
		if _, err := u.Repository.CreateTx(ctx, tx, record); err != nil {
			return err
		}

		if err := u.roles.GrantTx(ctx, tx, record.ID, auth.RoleUser); err != nil {
			return err
		}

		identity, err = u.findTx(ctx, tx, "id", record.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return identity, nil
}

// SetDisabled flips the disabled flag of a user
func (u *Users) SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error {
	res, err := u.db.NewUpdate().
		Model((*UserModel)(nil)).
		Set("disabled = ?", disabled).
		Set("updated_at = ?", u.now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return auth.ErrResourceNotFound
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
