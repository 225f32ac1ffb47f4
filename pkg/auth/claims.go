package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/toychauz/toycha-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	ActorID uuid.UUID
	Role    enums.Role
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients. ActorID is the
// market or deliver id depending on Role.
type AccessTokenClaims struct {
	ActorID uuid.UUID  `json:"actor_id"`
	Role    enums.Role `json:"role"`
	jwt.RegisteredClaims
}
