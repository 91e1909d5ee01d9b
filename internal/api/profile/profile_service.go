package profile

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-identity-profiles/internal/types"
)

// Validation bounds for profile writes.
const (
	minAge       = 1
	maxAge       = 110
	maxBioLength = 1000
)

var _ ProfileService = (*ProfileServiceImpl)(nil)

// ProfileService defines the business logic contract for profile reconciliation.
type ProfileService interface {
	// GetProfile returns the profile view for a user. A user without a
	// profile row gets a view with empty optional fields, not an error.
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.ProfileView, error)

	// UpdateProfile routes name/email to the user record, merges the
	// remaining fields into the profile via upsert and returns the updated
	// view. Invalid fields yield types.ErrValidation naming the field.
	UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpdateProfileParams) (*types.ProfileView, error)
}

// ProfileServiceImpl provides the implementation for ProfileService.
type ProfileServiceImpl struct {
	logger *slog.Logger
	repo   ProfileRepo
}

func NewProfileService(repo ProfileRepo, logger *slog.Logger) *ProfileServiceImpl {
	return &ProfileServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *ProfileServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*types.ProfileView, error) {
	l := s.logger.With(slog.String("method", "GetProfile"), slog.String("userID", userID.String()))
	l.DebugContext(ctx, "Fetching profile view")

	view, err := s.repo.GetView(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch profile view", slog.Any("error", err))
		return nil, fmt.Errorf("error fetching profile: %w", err)
	}

	return view, nil
}

func (s *ProfileServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpdateProfileParams) (*types.ProfileView, error) {
	l := s.logger.With(slog.String("method", "UpdateProfile"), slog.String("userID", userID.String()))
	l.DebugContext(ctx, "Updating profile")

	if err := validateParams(params); err != nil {
		l.WarnContext(ctx, "Profile update rejected by validation", slog.Any("error", err))
		return nil, err
	}

	// Identity fields go to the users record; empty values were already
	// filtered out at the boundary.
	if params.Name != nil || params.Email != nil {
		if err := s.repo.UpdateUserIdentity(ctx, userID, params.Name, params.Email); err != nil {
			l.ErrorContext(ctx, "Failed to update user identity", slog.Any("error", err))
			return nil, fmt.Errorf("error updating user identity: %w", err)
		}
	}

	if err := s.repo.Upsert(ctx, userID, params); err != nil {
		l.ErrorContext(ctx, "Failed to upsert profile", slog.Any("error", err))
		return nil, fmt.Errorf("error upserting profile: %w", err)
	}

	view, err := s.repo.GetView(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch updated profile view", slog.Any("error", err))
		return nil, fmt.Errorf("error fetching updated profile: %w", err)
	}

	l.InfoContext(ctx, "Profile updated")
	return view, nil
}

func validateParams(params types.UpdateProfileParams) error {
	if params.Age != nil && (*params.Age < minAge || *params.Age > maxAge) {
		return fmt.Errorf("age must be between %d and %d: %w", minAge, maxAge, types.ErrValidation)
	}
	// Counted in characters, not bytes, matching the column constraint.
	if params.Bio != nil && utf8.RuneCountInString(*params.Bio) > maxBioLength {
		return fmt.Errorf("bio cannot be more than %d characters: %w", maxBioLength, types.ErrValidation)
	}
	if params.Name != nil && *params.Name == "" {
		return fmt.Errorf("name cannot be empty: %w", types.ErrValidation)
	}
	if params.Email != nil && *params.Email == "" {
		return fmt.Errorf("email cannot be empty: %w", types.ErrValidation)
	}
	return nil
}
