package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshState is a step of the refresh exchange
type RefreshState string

const (
	RefreshReceived  RefreshState = "received"
	RefreshValidated RefreshState = "validated"
	RefreshResolved  RefreshState = "resolved"
	RefreshReissued  RefreshState = "reissued"
	RefreshRejected  RefreshState = "rejected"
)

// RefreshOrchestrator exchanges a refresh token for a brand new pair. The
// old token is not invalidated, it stays usable until its own expiry.
type RefreshOrchestrator struct {
	validator *TokenValidator
	issuer    *TokenIssuer
	users     UserStore
	logger    Logger
}

// NewRefreshOrchestrator wires the refresh path
func NewRefreshOrchestrator(validator *TokenValidator, issuer *TokenIssuer, users UserStore, logger Logger) *RefreshOrchestrator {
	_, logger = ResolveLogger("auth.refresh", nil, logger)
	return &RefreshOrchestrator{
		validator: validator,
		issuer:    issuer,
		users:     users,
		logger:    logger,
	}
}

// Refresh runs received -> validated -> resolved -> reissued. Any failed gate
// moves to rejected and returns ErrTokenInvalid with nothing issued. Store
// faults other than not found are returned as internal errors.
func (r *RefreshOrchestrator) Refresh(ctx context.Context, refreshToken string, now time.Time) (TokenPair, error) {
	state := RefreshReceived

	reject := func(reason string) (TokenPair, error) {
		r.logger.Warn("refresh rejected", "state", string(state), "reason", reason)
		return TokenPair{}, ErrTokenInvalid
	}

	result := r.validator.Check(refreshToken, now)
	if result != ValidationValid {
		return reject(result.String())
	}

	claims, err := r.validator.Claims(refreshToken)
	if err != nil {
		return reject("claims")
	}

	if claims.Type == TokenTypeAccess {
		return reject("access_token_presented")
	}
	state = RefreshValidated

	id, err := uuid.Parse(claims.ID)
	if err != nil || id == uuid.Nil {
		return reject("bad_identity_claim")
	}

	identity, err := r.users.FindByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return reject("identity_not_found")
		}
		r.logger.Error("refresh identity lookup failed", "state", string(state), "error", err)
		return TokenPair{}, internalError(err, "failed to load identity for refresh")
	}
	if identity == nil || identity.ID != id {
		return reject("identity_not_found")
	}
	state = RefreshResolved

	// roles come from the freshly loaded identity, never from the old token
	pair, err := r.issuer.IssuePair(identity, now)
	if err != nil {
		r.logger.Error("refresh issue failed", "state", string(state), "error", err)
		return TokenPair{}, err
	}
	state = RefreshReissued

	r.logger.Debug("refresh completed", "state", string(state), "user_id", identity.ID.String())

	return pair, nil
}
