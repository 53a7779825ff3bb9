package repository_test

import (
	"context"
	"database/sql"
	"testing"

	auth "github.com/goliatone/go-userauth"
	"github.com/goliatone/go-userauth/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupManager(t *testing.T) (*repository.Manager, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	mngr := repository.NewManager(db)
	mngr.MustValidate()
	require.NoError(t, mngr.Migrate(context.Background()))

	return mngr, db
}

func TestRegisterAssignsOnlyUserRole(t *testing.T) {
	mngr, _ := setupManager(t)
	ctx := context.Background()

	identity, err := mngr.Users().Register(ctx, "  Alice@Example.com ", "Alice", "hash")
	require.NoError(t, err)
	require.NotNil(t, identity)

	assert.NotEqual(t, uuid.Nil, identity.ID)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, []auth.RoleName{auth.RoleUser}, auth.RoleNames(identity.Roles))
	assert.False(t, identity.Disabled)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	mngr, _ := setupManager(t)
	ctx := context.Background()

	_, err := mngr.Users().Register(ctx, "bob@example.com", "Bob", "hash")
	require.NoError(t, err)

	_, err = mngr.Users().Register(ctx, "BOB@example.com", "Bob again", "hash")
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestRegisterRequiresEmailAndHash(t *testing.T) {
	mngr, _ := setupManager(t)

	_, err := mngr.Users().Register(context.Background(), " ", "Nobody", "hash")
	assert.Error(t, err)

	_, err = mngr.Users().Register(context.Background(), "x@example.com", "X", "")
	assert.Error(t, err)
}

func TestFindUserByIDAndEmail(t *testing.T) {
	mngr, _ := setupManager(t)
	ctx := context.Background()

	created, err := mngr.Users().Register(ctx, "carol@example.com", "Carol", "hash")
	require.NoError(t, err)
	require.NoError(t, mngr.Roles().Grant(ctx, created.ID, auth.RoleAdmin))

	byID, err := mngr.Users().FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", byID.Email)
	assert.Equal(t, "Carol", byID.Name)
	assert.ElementsMatch(t, []auth.RoleName{auth.RoleUser, auth.RoleAdmin}, auth.RoleNames(byID.Roles))

	byEmail, err := mngr.Users().FindByEmail(ctx, "CAROL@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
}

func TestFindUserNotFound(t *testing.T) {
	mngr, _ := setupManager(t)
	ctx := context.Background()

	_, err := mngr.Users().FindByID(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, auth.IsNotFound(err))

	_, err = mngr.Users().FindByEmail(ctx, "ghost@example.com")
	require.Error(t, err)
	assert.True(t, auth.IsNotFound(err))

	_, err = mngr.Users().FindByEmail(ctx, "")
	assert.True(t, auth.IsNotFound(err))
}

func TestGrantAndRevokeRoles(t *testing.T) {
	mngr, _ := setupManager(t)
	ctx := context.Background()

	user, err := mngr.Users().Register(ctx, "dave@example.com", "Dave", "hash")
	require.NoError(t, err)

	require.NoError(t, mngr.Roles().Grant(ctx, user.ID, auth.RoleManager))
	require.NoError(t, mngr.Roles().Grant(ctx, user.ID, auth.RoleManager))

	found, err := mngr.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []auth.RoleName{auth.RoleUser, auth.RoleManager}, auth.RoleNames(found.Roles))

	require.NoError(t, mngr.Roles().Revoke(ctx, user.ID, auth.RoleManager))

	found, err = mngr.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []auth.RoleName{auth.RoleUser}, auth.RoleNames(found.Roles))

	assert.Error(t, mngr.Roles().Grant(ctx, user.ID, auth.RoleName("ROLE_ROOT")))
}

func TestFindRoleByName(t *testing.T) {
	mngr, _ := setupManager(t)
	ctx := context.Background()

	roles, err := mngr.Roles().FindByName(ctx, auth.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, auth.RoleAdmin, roles[0].Name)

	// seeding twice keeps a single row per name
	require.NoError(t, mngr.Roles().Seed(ctx))
	roles, err = mngr.Roles().FindByName(ctx, auth.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, roles, 1)

	_, err = mngr.Roles().FindByName(ctx, auth.RoleName("nope"))
	assert.Error(t, err)
}

func TestUnknownStoredRoleIsRejected(t *testing.T) {
	mngr, db := setupManager(t)
	ctx := context.Background()

	user, err := mngr.Users().Register(ctx, "erin@example.com", "Erin", "hash")
	require.NoError(t, err)

	_, err = db.NewInsert().Model(&repository.RoleModel{Name: "ROLE_ROOT"}).Exec(ctx)
	require.NoError(t, err)

	root := &repository.RoleModel{}
	require.NoError(t, db.NewSelect().Model(root).Where("name = ?", "ROLE_ROOT").Scan(ctx))

	_, err = db.NewInsert().Model(&repository.UserRoleModel{UserID: user.ID, RoleID: root.ID}).Exec(ctx)
	require.NoError(t, err)

	_, err = mngr.Users().FindByID(ctx, user.ID)
	assert.Error(t, err)
}

func TestSetDisabled(t *testing.T) {
	mngr, _ := setupManager(t)
	ctx := context.Background()

	user, err := mngr.Users().Register(ctx, "frank@example.com", "Frank", "hash")
	require.NoError(t, err)

	require.NoError(t, mngr.Users().SetDisabled(ctx, user.ID, true))

	found, err := mngr.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, found.Disabled)

	err = mngr.Users().SetDisabled(ctx, uuid.New(), true)
	assert.True(t, auth.IsNotFound(err))
}

func TestAddresses(t *testing.T) {
	mngr, _ := setupManager(t)
	ctx := context.Background()

	owner := uuid.New()
	created, err := mngr.Addresses().Create(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, owner, created.OwnerID)

	found, err := mngr.Addresses().FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, owner, found.OwnerID)

	_, err = mngr.Addresses().FindByID(ctx, uuid.New())
	assert.True(t, auth.IsNotFound(err))

	_, err = mngr.Addresses().Create(ctx, uuid.Nil)
	assert.Error(t, err)
}

func TestStoresWiring(t *testing.T) {
	mngr, _ := setupManager(t)

	stores := mngr.Stores()
	assert.NotNil(t, stores.Users)
	assert.NotNil(t, stores.Roles)
	assert.NotNil(t, stores.Addresses)
	assert.NotNil(t, stores.Passwords)
}

func TestRunInTxHonoursCancelledContext(t *testing.T) {
	mngr, _ := setupManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := mngr.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
