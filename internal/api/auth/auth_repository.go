package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

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

// uniqueViolation is the Postgres error code for duplicate unique keys. The
// unique index on users.email is the source of truth for the register race.
const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the repository needs. Declared as an
// interface so repository tests can substitute pgxmock.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo defines the contract for credential persistence.
type AuthRepo interface {
	// GetUserByEmail retrieves the public projection of a user.
	// Returns types.ErrNotFound if no user exists with that email.
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)

	// GetUserAuthByEmail retrieves a user including the password hash. This is
	// the only read path that exposes the credential-bearing projection.
	GetUserAuthByEmail(ctx context.Context, email string) (*types.User, error)

	// GetUserByID retrieves the public projection by primary key.
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)

	// CreateUser inserts a new user record. A duplicate email maps to
	// types.ErrConflict.
	CreateUser(ctx context.Context, name, email, passwordHash string) (uuid.UUID, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	db     DB
}

func NewPostgresAuthRepo(db DB, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	var user types.User
	err := r.db.QueryRow(ctx,
		"SELECT id, name, email, created_at, updated_at FROM users WHERE email = $1",
		email).Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("user with email not found: %w", types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching user by email: %w", err)
	}

	span.SetStatus(codes.Ok, "User fetched")
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserAuthByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserAuthByEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	var user types.User
	err := r.db.QueryRow(ctx,
		"SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE email = $1",
		email).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("user with email not found: %w", types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching user credentials: %w", err)
	}

	span.SetStatus(codes.Ok, "User fetched")
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	var user types.User
	err := r.db.QueryRow(ctx,
		"SELECT id, name, email, created_at, updated_at FROM users WHERE id = $1",
		userID).Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("user not found: %w", types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching user by id: %w", err)
	}

	span.SetStatus(codes.Ok, "User fetched")
	return &user, nil
}

func (r *PostgresAuthRepo) CreateUser(ctx context.Context, name, email, passwordHash string) (uuid.UUID, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreateUser"))

	var userID uuid.UUID
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, created_at, updated_at)
         VALUES ($1, $2, $3, now(), now())
         RETURNING id`,
		name, email, passwordHash).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			l.WarnContext(ctx, "Duplicate email on user insert", slog.String("email", email))
			span.SetStatus(codes.Error, "Duplicate email")
			return uuid.Nil, fmt.Errorf("email already exists: %w", types.ErrConflict)
		}
		l.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return uuid.Nil, fmt.Errorf("database error creating user: %w", err)
	}

	l.InfoContext(ctx, "User created", slog.String("userID", userID.String()))
	span.SetStatus(codes.Ok, "User created")
	return userID, nil
}
