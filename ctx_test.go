package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGetClaims(t *testing.T) {
	tests := []struct {
		name       string
		setupCtx   func() context.Context
		wantClaims Claims
		wantOK     bool
	}{
		{
			name: "should return claims when present in context",
			setupCtx: func() context.Context {
				return WithClaimsContext(context.Background(), Claims{ID: "user123", Subject: "u@example.com"})
			},
			wantClaims: Claims{ID: "user123", Subject: "u@example.com"},
			wantOK:     true,
		},
		{
			name: "should return false when no claims in context",
			setupCtx: func() context.Context {
				return context.Background()
			},
			wantOK: false,
		},
		{
			name: "should return false when context has wrong type",
			setupCtx: func() context.Context {
				return context.WithValue(context.Background(), claimsCtxKey, "not-a-claims-object")
			},
			wantOK: false,
		},
		{
			name: "should return false for a nil context",
			setupCtx: func() context.Context {
				return nil
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, ok := GetClaims(tt.setupCtx())
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantClaims, claims)
		})
	}
}

func TestPrincipalFromContext(t *testing.T) {
	p := NewPrincipal(uuid.New(), "u@example.com", "U", RoleUser)

	got, ok := PrincipalFromContext(WithPrincipal(context.Background(), p))
	assert.True(t, ok)
	assert.Equal(t, p, got)

	_, ok = PrincipalFromContext(context.Background())
	assert.False(t, ok)

	_, ok = PrincipalFromContext(WithPrincipal(context.Background(), Principal{}))
	assert.False(t, ok, "zero principal is not an authenticated caller")

	_, ok = PrincipalFromContext(context.WithValue(context.Background(), principalCtxKey, "nope"))
	assert.False(t, ok)
}

func TestPrincipalAuthoritiesAreCopied(t *testing.T) {
	roles := []RoleName{RoleUser}
	p := NewPrincipal(uuid.New(), "u@example.com", "U", roles...)

	roles[0] = RoleAdmin
	assert.False(t, p.HasAuthority(RoleAdmin))

	out := p.Authorities()
	out[0] = RoleAdmin
	assert.False(t, p.HasAuthority(RoleAdmin))
	assert.True(t, p.HasAuthority(RoleUser))
}
