package auth

import (
	"database/sql"
	stderrors "errors"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeAccountDisabled    = "ACCOUNT_DISABLED"
	TextCodeTokenInvalid       = "TOKEN_INVALID"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeTokenSignature     = "TOKEN_BAD_SIGNATURE"
	TextCodeResourceNotFound   = "RESOURCE_NOT_FOUND"
)

// ErrInvalidCredentials is returned for any bad email/password pair, whether
// the email is unknown or the password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrAccountDisabled is returned when the identity exists but may not log in.
var ErrAccountDisabled = errors.New("account disabled", errors.CategoryAuth).
	WithTextCode(TextCodeAccountDisabled).
	WithCode(errors.CodeUnauthorized)

// ErrTokenInvalid is the single outcome surfaced for malformed, tampered or
// expired tokens.
var ErrTokenInvalid = errors.New("invalid token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrResourceNotFound is returned by stores when a user or address is absent.
var ErrResourceNotFound = errors.New("resource not found", errors.CategoryNotFound).
	WithTextCode(TextCodeResourceNotFound).
	WithCode(errors.CodeNotFound)

// ErrTokenExpired is used internally by the validator, never surfaced.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned by the codec when the token structure can not be decoded.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenSignature is returned by the codec when the signature does not verify.
var ErrTokenSignature = errors.New("token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenSignature).
	WithCode(errors.CodeUnauthorized)

// IsInvalidCredentials reports whether err is a credential failure
func IsInvalidCredentials(err error) bool {
	return matches(err, ErrInvalidCredentials)
}

// IsAccountDisabled reports whether err is a disabled account failure
func IsAccountDisabled(err error) bool {
	return matches(err, ErrAccountDisabled)
}

// IsTokenInvalid reports whether err is a token failure of any kind
func IsTokenInvalid(err error) bool {
	return matches(err, ErrTokenInvalid, ErrTokenExpired, ErrTokenMalformed, ErrTokenSignature)
}

// IsNotFound reports whether a store returned a not found result
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return matches(err, ErrResourceNotFound) ||
		stderrors.Is(err, sql.ErrNoRows) ||
		errors.IsNotFound(err)
}

// matches walks the wrap chain comparing sentinels by identity or text code.
// Category alone is not enough, every auth sentinel shares CategoryAuth.
func matches(err error, targets ...*errors.Error) bool {
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		rich, ok := e.(*errors.Error)
		if !ok {
			continue
		}
		for _, target := range targets {
			if rich == target || (rich.TextCode != "" && rich.TextCode == target.TextCode) {
				return true
			}
		}
	}
	return false
}

// internalError reports a store or crypto fault as CategoryInternal.
// errors.Wrap keeps the category of a rich source, so the result is built
// fresh with the fault as its source.
func internalError(err error, message string) *errors.Error {
	out := errors.New(message, errors.CategoryInternal)
	out.Source = err
	return out
}
