package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	auth "github.com/goliatone/go-userauth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func adminRoles() []auth.Role {
	return []auth.Role{{ID: 3, Name: auth.RoleAdmin}}
}

func TestIsAccessUser(t *testing.T) {
	ctx := context.Background()
	u1, u2 := uuid.New(), uuid.New()

	roles := new(MockRoleStore)
	roles.On("FindByName", mock.Anything, auth.RoleAdmin).Return(adminRoles(), nil)
	policy := auth.NewAccessPolicy(roles, nil, &captureLogger{})

	user := auth.NewPrincipal(u1, "u1@example.com", "U1", auth.RoleUser)
	admin := auth.NewPrincipal(u1, "u1@example.com", "U1", auth.RoleUser, auth.RoleAdmin)

	t.Run("self access", func(t *testing.T) {
		assert.True(t, policy.IsAccessUser(ctx, user, u1))
	})

	t.Run("other user without admin", func(t *testing.T) {
		assert.False(t, policy.IsAccessUser(ctx, user, u2))
	})

	t.Run("other user with admin", func(t *testing.T) {
		assert.True(t, policy.IsAccessUser(ctx, admin, u2))
	})

	t.Run("zero principal or target", func(t *testing.T) {
		assert.False(t, policy.IsAccessUser(ctx, auth.Principal{}, u1))
		assert.False(t, policy.IsAccessUser(ctx, user, uuid.Nil))
	})
}

func TestIsAccessUserReadsRolesOnEveryCall(t *testing.T) {
	ctx := context.Background()
	target := uuid.New()

	roles := new(MockRoleStore)
	roles.On("FindByName", mock.Anything, auth.RoleAdmin).Return(adminRoles(), nil).Once()
	roles.On("FindByName", mock.Anything, auth.RoleAdmin).Return([]auth.Role{}, nil).Once()

	policy := auth.NewAccessPolicy(roles, nil, &captureLogger{})
	admin := auth.NewPrincipal(uuid.New(), "a@example.com", "A", auth.RoleAdmin)

	assert.True(t, policy.IsAccessUser(ctx, admin, target))
	// the admin role is no longer bound to anything
	assert.False(t, policy.IsAccessUser(ctx, admin, target))
	roles.AssertNumberOfCalls(t, "FindByName", 2)
}

func TestIsAccessUserRoleLookupFailure(t *testing.T) {
	ctx := context.Background()
	self := uuid.New()

	roles := new(MockRoleStore)
	roles.On("FindByName", mock.Anything, auth.RoleAdmin).Return(nil, errors.New("db down"))
	logger := &captureLogger{}
	policy := auth.NewAccessPolicy(roles, nil, logger)

	admin := auth.NewPrincipal(self, "a@example.com", "A", auth.RoleAdmin)

	assert.True(t, policy.IsAccessUser(ctx, admin, self))
	assert.False(t, policy.IsAccessUser(ctx, admin, uuid.New()))
	assert.True(t, logger.has("error", "admin role lookup failed"))

	panicking := auth.NewAccessPolicy(panickingRoleStore{}, nil, &captureLogger{})
	assert.False(t, panicking.IsAccessUser(ctx, admin, uuid.New()))
	assert.True(t, panicking.IsAccessUser(ctx, admin, self))

	noStore := auth.NewAccessPolicy(nil, nil, &captureLogger{})
	assert.False(t, noStore.IsAccessUser(ctx, admin, uuid.New()))
}

func TestIsAccessAddress(t *testing.T) {
	ctx := context.Background()
	u1, u2 := uuid.New(), uuid.New()
	a1, missing, faulty, orphan := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	addresses := new(MockAddressStore)
	addresses.On("FindByID", mock.Anything, a1).Return(&auth.Address{ID: a1, OwnerID: u1}, nil)
	addresses.On("FindByID", mock.Anything, missing).Return(nil, auth.ErrResourceNotFound)
	addresses.On("FindByID", mock.Anything, faulty).Return(nil, errors.New("timeout"))
	addresses.On("FindByID", mock.Anything, orphan).Return(&auth.Address{ID: orphan}, nil)

	roles := new(MockRoleStore)
	roles.On("FindByName", mock.Anything, auth.RoleAdmin).Return(adminRoles(), nil)

	logger := &captureLogger{}
	policy := auth.NewAccessPolicy(roles, addresses, logger)

	owner := auth.NewPrincipal(u1, "u1@example.com", "U1", auth.RoleUser)
	other := auth.NewPrincipal(u2, "u2@example.com", "U2", auth.RoleUser)
	admin := auth.NewPrincipal(u2, "u2@example.com", "U2", auth.RoleUser, auth.RoleAdmin)

	assert.True(t, policy.IsAccessAddress(ctx, owner, a1))
	assert.False(t, policy.IsAccessAddress(ctx, other, a1))
	assert.False(t, policy.IsAccessAddress(ctx, admin, a1), "admins get no address override")

	assert.False(t, policy.IsAccessAddress(ctx, owner, missing))
	assert.True(t, logger.has("warn", "address not found during access check"))

	assert.False(t, policy.IsAccessAddress(ctx, owner, faulty))
	assert.True(t, logger.has("error", "address access check failed"))

	assert.False(t, policy.IsAccessAddress(ctx, owner, orphan))
	assert.False(t, policy.IsAccessAddress(ctx, auth.Principal{}, a1))
	assert.False(t, policy.IsAccessAddress(ctx, owner, uuid.Nil))

	roles.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything)
}

func TestIsAccessAddressRecoversFromPanics(t *testing.T) {
	policy := auth.NewAccessPolicy(nil, panickingAddressStore{}, &captureLogger{})
	owner := auth.NewPrincipal(uuid.New(), "u@example.com", "U", auth.RoleUser)

	assert.NotPanics(t, func() {
		assert.False(t, policy.IsAccessAddress(context.Background(), owner, uuid.New()))
	})

	noStore := auth.NewAccessPolicy(nil, nil, &captureLogger{})
	assert.False(t, noStore.IsAccessAddress(context.Background(), owner, uuid.New()))
}

func TestPolicyIsSafeForConcurrentUse(t *testing.T) {
	ctx := context.Background()
	u1 := uuid.New()
	a1 := uuid.New()

	roles := new(MockRoleStore)
	roles.On("FindByName", mock.Anything, auth.RoleAdmin).Return(adminRoles(), nil)
	addresses := new(MockAddressStore)
	addresses.On("FindByID", mock.Anything, a1).Return(&auth.Address{ID: a1, OwnerID: u1}, nil)

	policy := auth.NewAccessPolicy(roles, addresses, &captureLogger{})
	owner := auth.NewPrincipal(u1, "u1@example.com", "U1", auth.RoleUser)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, policy.IsAccessAddress(ctx, owner, a1))
			assert.True(t, policy.IsAccessUser(ctx, owner, u1))
			assert.False(t, policy.IsAccessUser(ctx, owner, uuid.New()))
		}()
	}
	wg.Wait()
}
