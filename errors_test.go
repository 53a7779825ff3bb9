package auth_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	auth "github.com/goliatone/go-userauth"
	"github.com/stretchr/testify/assert"
)

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		credentials  bool
		disabled     bool
		tokenInvalid bool
		notFound     bool
	}{
		{name: "nil"},
		{name: "invalid credentials", err: auth.ErrInvalidCredentials, credentials: true},
		{name: "account disabled", err: auth.ErrAccountDisabled, disabled: true},
		{name: "token invalid", err: auth.ErrTokenInvalid, tokenInvalid: true},
		{name: "token expired", err: auth.ErrTokenExpired, tokenInvalid: true},
		{name: "token malformed", err: auth.ErrTokenMalformed, tokenInvalid: true},
		{name: "token signature", err: auth.ErrTokenSignature, tokenInvalid: true},
		{name: "resource not found", err: auth.ErrResourceNotFound, notFound: true},
		{name: "sql no rows", err: fmt.Errorf("query: %w", sql.ErrNoRows), notFound: true},
		{
			name:     "wrapped not found",
			err:      goerrors.Wrap(auth.ErrResourceNotFound, goerrors.CategoryNotFound, "user not found"),
			notFound: true,
		},
		{
			name:         "wrapped token error",
			err:          fmt.Errorf("refresh: %w", auth.ErrTokenInvalid),
			tokenInvalid: true,
		},
		{name: "plain error", err: errors.New("invalid credentials")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.credentials, auth.IsInvalidCredentials(tt.err))
			assert.Equal(t, tt.disabled, auth.IsAccountDisabled(tt.err))
			assert.Equal(t, tt.tokenInvalid, auth.IsTokenInvalid(tt.err))
			assert.Equal(t, tt.notFound, auth.IsNotFound(tt.err))
		})
	}
}

func TestSentinelCategories(t *testing.T) {
	for _, err := range []*goerrors.Error{
		auth.ErrInvalidCredentials,
		auth.ErrAccountDisabled,
		auth.ErrTokenInvalid,
	} {
		assert.Equal(t, goerrors.CategoryAuth, err.Category)
		assert.NotEmpty(t, err.TextCode)
	}

	assert.Equal(t, goerrors.CategoryNotFound, auth.ErrResourceNotFound.Category)
}
