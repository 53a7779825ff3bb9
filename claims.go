package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType tells access and refresh tokens apart
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// JWTClaims is the wire claim set for both token kinds. Refresh tokens leave
// Roles empty.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID   string    `json:"id"`
	Roles []string  `json:"roles,omitempty"`
	Type  TokenType `json:"typ,omitempty"`
}

// Claims is the decoded, read only view of a token handed to callers
type Claims struct {
	ID        string
	Subject   string
	Roles     []RoleName
	Type      TokenType
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (c *JWTClaims) toClaims() Claims {
	out := Claims{
		ID:      c.UID,
		Subject: c.RegisteredClaims.Subject,
		Type:    c.Type,
		TokenID: c.RegisteredClaims.ID,
	}

	if len(c.Roles) > 0 {
		out.Roles = make([]RoleName, len(c.Roles))
		for i, r := range c.Roles {
			out.Roles[i] = RoleName(r)
		}
	}

	if c.RegisteredClaims.IssuedAt != nil {
		out.IssuedAt = c.RegisteredClaims.IssuedAt.Time.UTC()
	}

	if c.RegisteredClaims.ExpiresAt != nil {
		out.ExpiresAt = c.RegisteredClaims.ExpiresAt.Time.UTC()
	}

	return out
}

// HasRole reports whether the token carries the given role
func (c Claims) HasRole(role RoleName) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
