package auth

import (
	"github.com/google/uuid"
)

// Identity is a user record as exposed by the user store. This package only
// reads it.
type Identity struct {
	ID             uuid.UUID
	Email          string
	PasswordHash   string
	Name           string
	Roles          []Role
	EmailConfirmed bool
	Disabled       bool
}

// Address is the slice of an address record needed for ownership checks
type Address struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
}

// TokenPair is the response of a successful login or refresh
type TokenPair struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
}
