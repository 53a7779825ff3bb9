package auth

import (
	"context"
	"strings"
)

// CredentialAuthenticator verifies an email/password pair
type CredentialAuthenticator struct {
	resolver *PrincipalResolver
	matcher  PasswordMatcher
	logger   Logger
}

// NewCredentialAuthenticator creates an authenticator. A nil matcher falls
// back to bcrypt.
func NewCredentialAuthenticator(resolver *PrincipalResolver, matcher PasswordMatcher, logger Logger) *CredentialAuthenticator {
	if matcher == nil {
		matcher = BcryptMatcher{}
	}
	_, logger = ResolveLogger("auth.credentials", nil, logger)
	return &CredentialAuthenticator{
		resolver: resolver,
		matcher:  matcher,
		logger:   logger,
	}
}

// Authenticate returns the principal for a valid pair. Unknown email and
// wrong password both yield ErrInvalidCredentials. The disabled flag is only
// reported once the password matched, so a wrong guess learns nothing about
// the account state.
func (a *CredentialAuthenticator) Authenticate(ctx context.Context, email, password string) (Principal, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Principal{}, ErrInvalidCredentials
	}

	identity, err := a.resolver.lookup(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			a.logger.Warn("authentication failed", "reason", "unknown_identity")
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, err
	}

	if !a.matcher.Matches(password, identity.PasswordHash) {
		a.logger.Warn("authentication failed", "reason", "password_mismatch", "user_id", identity.ID.String())
		return Principal{}, ErrInvalidCredentials
	}

	if identity.Disabled {
		a.logger.Warn("authentication failed", "reason", "account_disabled", "user_id", identity.ID.String())
		return Principal{}, ErrAccountDisabled
	}

	return PrincipalFromIdentity(identity), nil
}
