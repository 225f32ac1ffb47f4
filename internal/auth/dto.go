package auth

import (
	"github.com/google/uuid"

	"github.com/toychauz/toycha-backend/pkg/enums"
)

// LoginRequest carries phone credentials for either role.
type LoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the minted token pair plus a summary of the actor.
// The controller also sets the access token as an auth cookie.
type LoginResponse struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	Role         enums.Role `json:"role"`
	ActorID      uuid.UUID  `json:"actorId"`
	Name         string     `json:"name"`
}

// RefreshRequest exchanges an expired access token plus the refresh token it
// was issued with for a fresh pair.
type RefreshRequest struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}
