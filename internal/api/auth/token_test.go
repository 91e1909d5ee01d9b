package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/go-identity-profiles/config"
	"github.com/FACorreiaa/go-identity-profiles/internal/types"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:      "test-secret",
		Issuer:         "test-issuer",
		Audience:       "test-audience",
		AccessTokenTTL: 15 * time.Minute,
	}
}

func TestTokenService(t *testing.T) {
	t.Run("IssueAndVerify", func(t *testing.T) {
		service, err := NewTokenService(testJWTConfig())
		assert.NoError(t, err)

		token, err := service.Issue("user-123")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		userID, err := service.Verify(token)
		assert.NoError(t, err)
		assert.Equal(t, "user-123", userID)
	})

	t.Run("EmptySecret", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.SecretKey = ""

		_, err := NewTokenService(cfg)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.AccessTokenTTL = -1 * time.Minute
		service, _ := NewTokenService(cfg)

		token, err := service.Issue("user-123")
		assert.NoError(t, err)

		_, err = service.Verify(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
	})

	t.Run("Malformed", func(t *testing.T) {
		service, _ := NewTokenService(testJWTConfig())

		_, err := service.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		service, _ := NewTokenService(testJWTConfig())
		token, err := service.Issue("user-123")
		assert.NoError(t, err)

		otherCfg := testJWTConfig()
		otherCfg.SecretKey = "different-secret"
		otherService, _ := NewTokenService(otherCfg)

		_, err = otherService.Verify(token)
		assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		issuerCfg := testJWTConfig()
		issuerCfg.Issuer = "other-issuer"
		issuerService, _ := NewTokenService(issuerCfg)

		token, err := issuerService.Issue("user-123")
		assert.NoError(t, err)

		service, _ := NewTokenService(testJWTConfig())
		_, err = service.Verify(token)
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
	})

	t.Run("TamperedPayload", func(t *testing.T) {
		service, _ := NewTokenService(testJWTConfig())
		token, err := service.Issue("user-123")
		assert.NoError(t, err)

		tampered := token[:len(token)-4] + "AAAA"
		_, err = service.Verify(tampered)
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
	})
}
