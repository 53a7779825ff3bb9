package repository

import (
	"context"
	"database/sql"
	"log"

	"github.com/goliatone/go-errors"
	persistence "github.com/goliatone/go-persistence-bun"
	auth "github.com/goliatone/go-userauth"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Manager owns the stores backed by a single bun database
type Manager struct {
	db         *bun.DB
	migrations *persistence.Migrations
	users      *Users
	roles      *Roles
	addresses  *Addresses
}

// NewManager builds every store over db
func NewManager(db *bun.DB) *Manager {
	roles := NewRoles(db)
	migrations := &persistence.Migrations{}
	migrations.RegisterSQLMigrations(GetMigrationsFS())

	return &Manager{
		db:         db,
		migrations: migrations,
		roles:      roles,
		users:      NewUsers(db, roles),
		addresses:  NewAddresses(db),
	}
}

func (m *Manager) Validate() error {
	if m.db == nil {
		return errors.New("repository db should be initialized", errors.CategoryInternal)
	}
	if m.migrations == nil {
		return errors.New("repository migrations should be registered", errors.CategoryInternal)
	}
	if m.users == nil || m.roles == nil || m.addresses == nil {
		return errors.New("repository stores should be initialized", errors.CategoryInternal)
	}
	return nil
}

func (m *Manager) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

// Migrate applies pending SQL migrations and seeds the roles. Applied
// migrations are tracked by bun so repeated calls are no-ops.
func (m *Manager) Migrate(ctx context.Context) error {
	if err := m.migrations.Migrate(ctx, m.db); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to apply migrations")
	}
	return m.roles.Seed(ctx)
}

// Rollback reverts every applied migration group
func (m *Manager) Rollback(ctx context.Context) error {
	if err := m.migrations.RollbackAll(ctx, m.db); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to roll back migrations")
	}
	return nil
}

// MigrationReport returns the group touched by the last Migrate or Rollback
func (m *Manager) MigrationReport() *migrate.MigrationGroup {
	return m.migrations.Report()
}

func (m *Manager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m *Manager) Users() *Users { return m.users }

func (m *Manager) Roles() *Roles { return m.roles }

func (m *Manager) Addresses() *Addresses { return m.addresses }

// Stores returns the collaborators expected by auth.NewService
func (m *Manager) Stores() auth.Stores {
	return auth.Stores{
		Users:     m.users,
		Roles:     m.roles,
		Addresses: m.addresses,
		Passwords: auth.BcryptMatcher{},
	}
}
