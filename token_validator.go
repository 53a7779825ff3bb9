package auth

import (
	"time"
)

// ValidationResult is the tagged outcome of checking a token
type ValidationResult int

const (
	ValidationValid ValidationResult = iota
	ValidationExpired
	ValidationBadSignature
	ValidationMalformed
)

func (r ValidationResult) String() string {
	switch r {
	case ValidationValid:
		return "valid"
	case ValidationExpired:
		return "expired"
	case ValidationBadSignature:
		return "bad_signature"
	case ValidationMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Err maps the outcome to the matching sentinel, nil when valid
func (r ValidationResult) Err() error {
	switch r {
	case ValidationValid:
		return nil
	case ValidationExpired:
		return ErrTokenExpired
	case ValidationBadSignature:
		return ErrTokenSignature
	default:
		return ErrTokenMalformed
	}
}

// TokenValidator verifies tokens produced by TokenIssuer
type TokenValidator struct {
	codec  *Codec
	logger Logger
}

// NewTokenValidator creates a validator sharing the issuer's codec
func NewTokenValidator(codec *Codec, logger Logger) *TokenValidator {
	_, logger = ResolveLogger("auth.token_validator", nil, logger)
	return &TokenValidator{
		codec:  codec,
		logger: logger,
	}
}

// Check decodes the token and classifies it. A token is expired the instant
// now reaches exp. Clock skew is not compensated.
func (tv *TokenValidator) Check(tokenString string, now time.Time) ValidationResult {
	result, _ := tv.check(tokenString, now)
	return result
}

// IsValid is the boolean predicate callers gate on. It never returns an
// error and has no side effects besides a debug log line.
func (tv *TokenValidator) IsValid(tokenString string, now time.Time) bool {
	result, _ := tv.check(tokenString, now)
	if result != ValidationValid {
		tv.logger.Debug("token rejected", "reason", result.String())
		return false
	}
	return true
}

// Claims extracts claims from a token that already passed IsValid. It only
// verifies the signature, expiry is the caller's gate.
func (tv *TokenValidator) Claims(tokenString string) (Claims, error) {
	claims := &JWTClaims{}
	if err := tv.codec.Decode(tokenString, claims); err != nil {
		return Claims{}, err
	}
	return claims.toClaims(), nil
}

// Validate combines IsValid and Claims, returning ErrTokenInvalid for any
// failure.
func (tv *TokenValidator) Validate(tokenString string, now time.Time) (Claims, error) {
	result, claims := tv.check(tokenString, now)
	if result != ValidationValid {
		tv.logger.Debug("token rejected", "reason", result.String())
		return Claims{}, ErrTokenInvalid
	}
	return claims.toClaims(), nil
}

func (tv *TokenValidator) check(tokenString string, now time.Time) (ValidationResult, *JWTClaims) {
	claims := &JWTClaims{}
	if err := tv.codec.Decode(tokenString, claims); err != nil {
		if matches(err, ErrTokenSignature) {
			return ValidationBadSignature, nil
		}
		return ValidationMalformed, nil
	}

	if claims.ExpiresAt == nil {
		return ValidationMalformed, nil
	}

	if !now.Before(claims.ExpiresAt.Time) {
		return ValidationExpired, nil
	}

	return ValidationValid, claims
}
