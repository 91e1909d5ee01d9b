package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-identity-profiles/internal/types"
)

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it
// in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ ProfileRepo = (*PostgresProfileRepo)(nil)

// ProfileRepo defines the contract for profile persistence.
type ProfileRepo interface {
	// GetView retrieves the profile joined with the user's name and email.
	// A user without a profile row yields a view with empty optional fields;
	// only a missing user is types.ErrNotFound.
	GetView(ctx context.Context, userID uuid.UUID) (*types.ProfileView, error)

	// EnsureExists creates an empty profile row for the user if none exists.
	// Idempotent; safe to call on every login.
	EnsureExists(ctx context.Context, userID uuid.UUID) error

	// Upsert merges the supplied scalar fields into the profile keyed by
	// user_id, creating the row if absent. Fields left nil keep their stored
	// values. The primary key on user_id guarantees two racing upserts never
	// produce a second row.
	Upsert(ctx context.Context, userID uuid.UUID, params types.UpdateProfileParams) error

	// UpdateUserIdentity updates name and/or email on the users record.
	// Fields left nil are untouched. A duplicate email maps to types.ErrConflict.
	UpdateUserIdentity(ctx context.Context, userID uuid.UUID, name, email *string) error
}

type PostgresProfileRepo struct {
	logger *slog.Logger
	db     DB
}

func NewPostgresProfileRepo(db DB, logger *slog.Logger) *PostgresProfileRepo {
	return &PostgresProfileRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresProfileRepo) GetView(ctx context.Context, userID uuid.UUID) (*types.ProfileView, error) {
	ctx, span := otel.Tracer("ProfileRepo").Start(ctx, "GetView", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users, profiles"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	query := `
        SELECT u.id, u.name, u.email,
               p.age, p.dob, p.contact, p.region, p.bio, p.image,
               p.created_at, p.updated_at
        FROM users u
        LEFT JOIN profiles p ON p.user_id = u.id
        WHERE u.id = $1`

	var view types.ProfileView
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&view.UserID, &view.Name, &view.Email,
		&view.Age, &view.DOB, &view.Contact, &view.Region, &view.Bio, &view.Image,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("user not found: %w", types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching profile view: %w", err)
	}

	span.SetStatus(codes.Ok, "Profile view fetched")
	return &view, nil
}

func (r *PostgresProfileRepo) EnsureExists(ctx context.Context, userID uuid.UUID) error {
	ctx, span := otel.Tracer("ProfileRepo").Start(ctx, "EnsureExists", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "profiles"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	_, err := r.db.Exec(ctx,
		`INSERT INTO profiles (user_id, created_at, updated_at)
         VALUES ($1, now(), now())
         ON CONFLICT (user_id) DO NOTHING`,
		userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to ensure profile row", slog.Any("error", err), slog.String("userID", userID.String()))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return fmt.Errorf("database error ensuring profile: %w", err)
	}

	span.SetStatus(codes.Ok, "Profile ensured")
	return nil
}

func (r *PostgresProfileRepo) Upsert(ctx context.Context, userID uuid.UUID, params types.UpdateProfileParams) error {
	ctx, span := otel.Tracer("ProfileRepo").Start(ctx, "Upsert", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "profiles"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Upsert"), slog.String("userID", userID.String()))

	// NULL params fall through COALESCE to the stored value, so omitted
	// fields never blank out earlier writes.
	query := `
        INSERT INTO profiles (user_id, age, dob, contact, region, bio, image, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
        ON CONFLICT (user_id) DO UPDATE SET
            age        = COALESCE(EXCLUDED.age, profiles.age),
            dob        = COALESCE(EXCLUDED.dob, profiles.dob),
            contact    = COALESCE(EXCLUDED.contact, profiles.contact),
            region     = COALESCE(EXCLUDED.region, profiles.region),
            bio        = COALESCE(EXCLUDED.bio, profiles.bio),
            image      = COALESCE(EXCLUDED.image, profiles.image),
            updated_at = now()`

	_, err := r.db.Exec(ctx, query,
		userID, params.Age, params.DOB, params.Contact, params.Region, params.Bio, params.Image)
	if err != nil {
		l.ErrorContext(ctx, "Failed to upsert profile", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB upsert failed")
		return fmt.Errorf("database error upserting profile: %w", err)
	}

	l.InfoContext(ctx, "Profile upserted")
	span.SetStatus(codes.Ok, "Profile upserted")
	return nil
}

func (r *PostgresProfileRepo) UpdateUserIdentity(ctx context.Context, userID uuid.UUID, name, email *string) error {
	ctx, span := otel.Tracer("ProfileRepo").Start(ctx, "UpdateUserIdentity", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpdateUserIdentity"), slog.String("userID", userID.String()))

	var setClauses []string
	var args []interface{}
	argID := 1

	if name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argID))
		args = append(args, *name)
		argID++
		span.SetAttributes(attribute.Bool("update.name", true))
	}
	if email != nil {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", argID))
		args = append(args, *email)
		argID++
		span.SetAttributes(attribute.Bool("update.email", true))
	}

	if len(setClauses) == 0 {
		span.SetStatus(codes.Ok, "No update fields provided")
		return nil
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++

	args = append(args, userID)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), argID)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			l.WarnContext(ctx, "Duplicate email on identity update")
			span.SetStatus(codes.Error, "Duplicate email")
			return fmt.Errorf("email already exists: %w", types.ErrConflict)
		}
		l.ErrorContext(ctx, "Failed to update user identity", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error updating user identity: %w", err)
	}

	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "User not found")
		return fmt.Errorf("user not found for update: %w", types.ErrNotFound)
	}

	l.InfoContext(ctx, "User identity updated")
	span.SetStatus(codes.Ok, "Identity updated")
	return nil
}
