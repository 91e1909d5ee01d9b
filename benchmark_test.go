package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-identity-profiles/config"
	"github.com/FACorreiaa/go-identity-profiles/internal/api/auth"
)

func benchTokenService(b *testing.B) *auth.TokenService {
	b.Helper()
	tokens, err := auth.NewTokenService(config.JWTConfig{
		SecretKey:      "bench-secret",
		Issuer:         "identity-profiles",
		Audience:       "identity-profiles-clients",
		AccessTokenTTL: time.Hour,
	})
	if err != nil {
		b.Fatal(err)
	}
	return tokens
}

func BenchmarkPasswordHash(b *testing.B) {
	hasher := auth.NewPasswordHasher(bcrypt.DefaultCost)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := hasher.Hash("password123"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPasswordVerify(b *testing.B) {
	hasher := auth.NewPasswordHasher(bcrypt.DefaultCost)
	hash, err := hasher.Hash("password123")
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := hasher.Verify("password123", hash); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTokenIssue(b *testing.B) {
	tokens := benchTokenService(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tokens.Issue("user-123"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTokenVerify(b *testing.B) {
	tokens := benchTokenService(b)
	token, err := tokens.Issue("user-123")
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tokens.Verify(token); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkLoginEndpoint measures the full login path: handler decode,
// in-memory user lookup, bcrypt verification and token signing.
func BenchmarkLoginEndpoint(b *testing.B) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemStore()
	tokens := benchTokenService(b)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("password123")
	if err != nil {
		b.Fatal(err)
	}
	if _, err := store.CreateUser(context.Background(), "Bench User", "bench@example.com", hash); err != nil {
		b.Fatal(err)
	}

	service := auth.NewAuthService(store, store, hasher, tokens, logger)
	handler := auth.NewHandlerImpl(service, logger)

	payload, err := json.Marshal(map[string]string{
		"email":    "bench@example.com",
		"password": "password123",
	})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		handler.Login(w, req)

		if w.Code != http.StatusOK {
			b.Fatal(fmt.Errorf("unexpected status %d: %s", w.Code, w.Body.String()))
		}
	}
}
