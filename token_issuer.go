package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenIssuer mints access and refresh tokens. Every token gets a fresh jti
// so two tokens for the same identity never collide, even within the same
// second.
type TokenIssuer struct {
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
}

// NewTokenIssuer creates an issuer from the immutable config
func NewTokenIssuer(cfg Config, codec *Codec) *TokenIssuer {
	if codec == nil {
		codec = NewCodec([]byte(cfg.Secret))
	}
	return &TokenIssuer{
		codec:      codec,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		issuer:     cfg.Issuer,
	}
}

// IssueAccessToken signs {sub: email, id, roles, iat: now, exp: now+accessTTL}
func (ti *TokenIssuer) IssueAccessToken(email string, roles []RoleName, id uuid.UUID, now time.Time) (string, error) {
	if id == uuid.Nil {
		return "", errors.New("identity id is required", errors.CategoryBadInput)
	}
	claims := ti.newClaims(email, id, now, ti.accessTTL)
	claims.Type = TokenTypeAccess
	claims.Roles = roleStrings(roles)
	return ti.codec.Encode(claims)
}

// IssueRefreshToken signs {sub: email, id, iat: now, exp: now+refreshTTL}
func (ti *TokenIssuer) IssueRefreshToken(id uuid.UUID, email string, now time.Time) (string, error) {
	if id == uuid.Nil {
		return "", errors.New("identity id is required", errors.CategoryBadInput)
	}
	claims := ti.newClaims(email, id, now, ti.refreshTTL)
	claims.Type = TokenTypeRefresh
	return ti.codec.Encode(claims)
}

// IssuePair mints a brand new access/refresh pair for the identity
func (ti *TokenIssuer) IssuePair(identity *Identity, now time.Time) (TokenPair, error) {
	if identity == nil {
		return TokenPair{}, errors.New("identity is required", errors.CategoryBadInput)
	}

	access, err := ti.IssueAccessToken(identity.Email, RoleNames(identity.Roles), identity.ID, now)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := ti.IssueRefreshToken(identity.ID, identity.Email, now)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		ID:           identity.ID,
		Email:        identity.Email,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (ti *TokenIssuer) newClaims(email string, id uuid.UUID, now time.Time, ttl time.Duration) *JWTClaims {
	// NumericDate has second precision, truncate first so exp-iat == ttl on the wire
	issuedAt := now.Truncate(jwt.TimePrecision)

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ti.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		UID: id.String(),
	}

	return claims
}
