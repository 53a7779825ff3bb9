package repository

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	auth "github.com/goliatone/go-userauth"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Addresses is the bun backed auth.AddressStore
type Addresses struct {
	db  *bun.DB
	now func() time.Time
}

var _ auth.AddressStore = (*Addresses)(nil)

// NewAddresses creates the addresses store
func NewAddresses(db *bun.DB) *Addresses {
	return &Addresses{db: db, now: time.Now}
}

// FindByID returns the address with its owner
func (a *Addresses) FindByID(ctx context.Context, id uuid.UUID) (*auth.Address, error) {
	model := &AddressModel{}
	err := a.db.NewSelect().
		Model(model).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, errors.Wrap(auth.ErrResourceNotFound, errors.CategoryNotFound, "address not found").
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}
	return toAddress(model), nil
}

// Create stores a new address owned by ownerID
func (a *Addresses) Create(ctx context.Context, ownerID uuid.UUID) (*auth.Address, error) {
	if ownerID == uuid.Nil {
		return nil, errors.New("address owner is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	now := a.now()
	model := &AddressModel{
		ID:        uuid.New(),
		UserID:    ownerID,
		CreatedAt: &now,
	}
	if _, err := a.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return nil, err
	}
	return toAddress(model), nil
}
