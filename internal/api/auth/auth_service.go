package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-identity-profiles/internal/types"
)

// ProfileEnsurer is the slice of the profile repository the auth flow needs:
// eager profile creation on register and the compensating get-or-create on
// login. Declared here to keep the dependency direction one way.
type ProfileEnsurer interface {
	EnsureExists(ctx context.Context, userID uuid.UUID) error
}

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the business logic contract for authentication.
type AuthService interface {
	// Register creates a user plus an empty profile record.
	Register(ctx context.Context, name, email, password string) error

	// Login verifies credentials and returns an access token with the user's
	// public identity. Unknown email surfaces as types.ErrNotFound, a wrong
	// password as types.ErrUnauthenticated; the two are distinct API statuses.
	Login(ctx context.Context, email, password string) (string, *types.PublicUser, error)

	// Logout is a stateless acknowledgment; tokens expire on their own.
	Logout(ctx context.Context) error
}

// AuthServiceImpl provides the implementation for AuthService.
type AuthServiceImpl struct {
	logger   *slog.Logger
	repo     AuthRepo
	profiles ProfileEnsurer
	hasher   *PasswordHasher
	tokens   *TokenService
}

func NewAuthService(repo AuthRepo, profiles ProfileEnsurer, hasher *PasswordHasher, tokens *TokenService, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger:   logger,
		repo:     repo,
		profiles: profiles,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Register creates the user record and eagerly creates its empty profile.
// There is no multi-record transaction: if the profile insert fails after the
// user insert succeeded, the get-or-create on the next login compensates.
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string) error {
	l := s.logger.With(slog.String("method", "Register"), slog.String("email", email))

	if name == "" || email == "" || password == "" {
		return fmt.Errorf("name, email and password are required: %w", types.ErrBadRequest)
	}

	// Check-then-create mirrors the public contract; the unique index on
	// email remains the source of truth when two registrations race.
	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		l.WarnContext(ctx, "Registration rejected, email already exists")
		return fmt.Errorf("email already exists: %w", types.ErrConflict)
	}
	if !errors.Is(err, types.ErrNotFound) {
		l.ErrorContext(ctx, "Failed to check existing email", slog.Any("error", err))
		return fmt.Errorf("error checking existing user: %w", err)
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		l.ErrorContext(ctx, "Password hashing failed", slog.Any("error", err))
		return fmt.Errorf("error processing password: %w", err)
	}

	userID, err := s.repo.CreateUser(ctx, name, email, hashedPassword)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		return fmt.Errorf("error creating user: %w", err)
	}

	if err := s.profiles.EnsureExists(ctx, userID); err != nil {
		// User row exists at this point; login's get-or-create repairs the gap.
		l.ErrorContext(ctx, "Failed to create empty profile after register", slog.Any("error", err))
		return fmt.Errorf("error creating profile: %w", err)
	}

	l.InfoContext(ctx, "User registered", slog.String("userID", userID.String()))
	return nil
}

// Login verifies credentials, issues an access token and lazily ensures a
// profile row exists for the user.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *types.PublicUser, error) {
	l := s.logger.With(slog.String("method", "Login"), slog.String("email", email))

	if email == "" || password == "" {
		return "", nil, fmt.Errorf("email and password are required: %w", types.ErrBadRequest)
	}

	user, err := s.repo.GetUserAuthByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			l.WarnContext(ctx, "Login attempt for unknown email")
			return "", nil, fmt.Errorf("invalid login credentials: %w", types.ErrNotFound)
		}
		l.ErrorContext(ctx, "Failed to fetch user for login", slog.Any("error", err))
		return "", nil, fmt.Errorf("error fetching user: %w", err)
	}

	if err := s.hasher.Verify(password, user.Password); err != nil {
		l.WarnContext(ctx, "Password verification failed")
		return "", nil, fmt.Errorf("invalid email or password: %w", types.ErrUnauthenticated)
	}

	token, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue access token", slog.Any("error", err))
		return "", nil, fmt.Errorf("error issuing token: %w", err)
	}

	// Compensating create for any register that failed between inserts.
	if err := s.profiles.EnsureExists(ctx, user.ID); err != nil {
		l.ErrorContext(ctx, "Failed to ensure profile on login", slog.Any("error", err))
		return "", nil, fmt.Errorf("error ensuring profile: %w", err)
	}

	l.InfoContext(ctx, "Login successful", slog.String("userID", user.ID.String()))
	return token, &types.PublicUser{Name: user.Name, Email: user.Email}, nil
}

// Logout performs no server-side state change; the client discards the token.
func (s *AuthServiceImpl) Logout(ctx context.Context) error {
	s.logger.DebugContext(ctx, "Logout acknowledged")
	return nil
}
