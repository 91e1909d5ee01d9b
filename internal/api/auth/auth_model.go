package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/go-identity-profiles/internal/types"
)

// RegisterRequest represents the register request body.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response body. The token is returned at
// the top level next to the envelope fields, matching the public API contract.
type LoginResponse struct {
	Message string           `json:"message"`
	Success bool             `json:"success"`
	Data    types.PublicUser `json:"data"`
	Token   string           `json:"token"`
}

// Claims represents the custom claims included in the JWT access token.
type Claims struct {
	UserID               string `json:"uid"` // Custom claim for User ID.
	jwt.RegisteredClaims        // Embed standard claims (ExpiresAt, IssuedAt, Subject, etc.).
}
