package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/go-identity-profiles/config"
	"github.com/FACorreiaa/go-identity-profiles/internal/types"
)

// Token verification failures. All three collapse to 401 at the boundary but
// stay distinct internally for logging; each wraps types.ErrUnauthenticated
// so errors.Is works at the handler level too.
var (
	ErrTokenExpired          = fmt.Errorf("token expired: %w", types.ErrUnauthenticated)
	ErrTokenMalformed        = fmt.Errorf("malformed token: %w", types.ErrUnauthenticated)
	ErrTokenSignatureInvalid = fmt.Errorf("invalid token signature: %w", types.ErrUnauthenticated)
)

// TokenService issues and verifies HMAC-signed, time-limited access tokens.
// The signing secret and expiry are process configuration injected at
// construction; tokens are never persisted server-side.
type TokenService struct {
	cfg    config.JWTConfig
	secret []byte
}

func NewTokenService(cfg config.JWTConfig) (*TokenService, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("JWT secret key cannot be empty")
	}
	return &TokenService{cfg: cfg, secret: []byte(cfg.SecretKey)}, nil
}

// Issue produces a signed token embedding the user's ID and an expiry
// timestamp derived from the configured TTL.
func (s *TokenService) Issue(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry, issuer and audience of a token and
// returns the embedded user ID on success.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
	)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrTokenSignatureInvalid
		default:
			return "", fmt.Errorf("token validation failed: %w", types.ErrUnauthenticated)
		}
	}

	if !token.Valid || claims.UserID == "" {
		return "", fmt.Errorf("token claims invalid: %w", types.ErrUnauthenticated)
	}

	return claims.UserID, nil
}
