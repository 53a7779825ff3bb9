package auth_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	auth "github.com/goliatone/go-userauth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// fixed instant on a whole second so exp arithmetic stays exact
var testNow = time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)

func testConfig() auth.Config {
	return auth.Config{
		Secret:     testSecret,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 14 * 24 * time.Hour,
		Issuer:     "userauth-test",
	}
}

// MockUserStore implements auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByID(ctx context.Context, id uuid.UUID) (*auth.Identity, error) {
	args := m.Called(ctx, id)
	identity, _ := args.Get(0).(*auth.Identity)
	return identity, args.Error(1)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	args := m.Called(ctx, email)
	identity, _ := args.Get(0).(*auth.Identity)
	return identity, args.Error(1)
}

// MockRoleStore implements auth.RoleStore
type MockRoleStore struct {
	mock.Mock
}

func (m *MockRoleStore) FindByName(ctx context.Context, name auth.RoleName) ([]auth.Role, error) {
	args := m.Called(ctx, name)
	roles, _ := args.Get(0).([]auth.Role)
	return roles, args.Error(1)
}

// MockAddressStore implements auth.AddressStore
type MockAddressStore struct {
	mock.Mock
}

func (m *MockAddressStore) FindByID(ctx context.Context, id uuid.UUID) (*auth.Address, error) {
	args := m.Called(ctx, id)
	address, _ := args.Get(0).(*auth.Address)
	return address, args.Error(1)
}

type panickingAddressStore struct{}

func (panickingAddressStore) FindByID(context.Context, uuid.UUID) (*auth.Address, error) {
	panic("address store exploded")
}

type panickingRoleStore struct{}

func (panickingRoleStore) FindByName(context.Context, auth.RoleName) ([]auth.Role, error) {
	panic("role store exploded")
}

type logCall struct {
	level   string
	message string
	args    []any
}

type captureLogger struct {
	mu    sync.Mutex
	calls []logCall
}

func (l *captureLogger) record(level, message string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, logCall{level: level, message: message, args: args})
}

func (l *captureLogger) Debug(message string, args ...any) { l.record("debug", message, args...) }
func (l *captureLogger) Info(message string, args ...any)  { l.record("info", message, args...) }
func (l *captureLogger) Warn(message string, args ...any)  { l.record("warn", message, args...) }
func (l *captureLogger) Error(message string, args ...any) { l.record("error", message, args...) }

func (l *captureLogger) has(level, message string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.calls {
		if c.level == level && c.message == message {
			return true
		}
	}
	return false
}

// contains reports whether any logged message or argument renders s
func (l *captureLogger) contains(s string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.calls {
		if strings.Contains(c.message, s) {
			return true
		}
		for _, a := range c.args {
			if strings.Contains(fmt.Sprint(a), s) {
				return true
			}
		}
	}
	return false
}

func newIdentity(t *testing.T, email, password string, roles ...auth.RoleName) *auth.Identity {
	t.Helper()

	hash, err := auth.HashPasswordWithCost(password, bcrypt.MinCost)
	require.NoError(t, err)

	identity := &auth.Identity{
		ID:             uuid.New(),
		Email:          email,
		PasswordHash:   hash,
		Name:           strings.Split(email, "@")[0],
		EmailConfirmed: true,
	}
	for i, r := range roles {
		identity.Roles = append(identity.Roles, auth.Role{ID: int64(i + 1), Name: r})
	}
	return identity
}

func newTokenKit(cfg auth.Config, logger auth.Logger) (*auth.TokenIssuer, *auth.TokenValidator) {
	codec := auth.NewCodec([]byte(cfg.Secret))
	return auth.NewTokenIssuer(cfg, codec), auth.NewTokenValidator(codec, logger)
}
