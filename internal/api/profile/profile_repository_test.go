package profile

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-identity-profiles/internal/types"
)

func newMockProfileRepo(t *testing.T) (pgxmock.PgxPoolIface, *PostgresProfileRepo) {
	t.Helper()
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return mockDB, NewPostgresProfileRepo(mockDB, slog.Default())
}

var viewColumns = []string{
	"id", "name", "email",
	"age", "dob", "contact", "region", "bio", "image",
	"created_at", "updated_at",
}

func TestPostgresProfileRepo_GetView(t *testing.T) {
	t.Run("WithProfile", func(t *testing.T) {
		mockDB, repo := newMockProfileRepo(t)
		userID := uuid.New()
		now := time.Now()
		age := 30
		bio := "hello"

		mockDB.ExpectQuery("SELECT u.id, u.name, u.email").
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows(viewColumns).
				AddRow(userID, "Test User", "test@example.com",
					&age, (*time.Time)(nil), (*string)(nil), (*string)(nil), &bio, (*string)(nil),
					&now, &now))

		view, err := repo.GetView(context.Background(), userID)

		assert.NoError(t, err)
		assert.Equal(t, userID, view.UserID)
		assert.Equal(t, 30, *view.Age)
		assert.Equal(t, "hello", *view.Bio)
		assert.Nil(t, view.Contact)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("UserWithoutProfileRow", func(t *testing.T) {
		mockDB, repo := newMockProfileRepo(t)
		userID := uuid.New()

		// LEFT JOIN still yields one row; every profile column is NULL.
		mockDB.ExpectQuery("SELECT u.id, u.name, u.email").
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows(viewColumns).
				AddRow(userID, "Test User", "test@example.com",
					(*int)(nil), (*time.Time)(nil), (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil),
					(*time.Time)(nil), (*time.Time)(nil)))

		view, err := repo.GetView(context.Background(), userID)

		assert.NoError(t, err)
		assert.Equal(t, "Test User", view.Name)
		assert.Nil(t, view.Age)
		assert.Nil(t, view.Bio)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("UserNotFound", func(t *testing.T) {
		mockDB, repo := newMockProfileRepo(t)
		userID := uuid.New()

		mockDB.ExpectQuery("SELECT u.id, u.name, u.email").
			WithArgs(userID).
			WillReturnError(pgx.ErrNoRows)

		view, err := repo.GetView(context.Background(), userID)

		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.Nil(t, view)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestPostgresProfileRepo_EnsureExists(t *testing.T) {
	mockDB, repo := newMockProfileRepo(t)
	userID := uuid.New()

	mockDB.ExpectExec("INSERT INTO profiles").
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.EnsureExists(context.Background(), userID)

	assert.NoError(t, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestPostgresProfileRepo_Upsert(t *testing.T) {
	mockDB, repo := newMockProfileRepo(t)
	userID := uuid.New()
	age := 30
	bio := "hello"
	params := types.UpdateProfileParams{Age: &age, Bio: &bio}

	mockDB.ExpectExec("INSERT INTO profiles").
		WithArgs(userID, params.Age, params.DOB, params.Contact, params.Region, params.Bio, params.Image).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Upsert(context.Background(), userID, params)

	assert.NoError(t, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestPostgresProfileRepo_UpdateUserIdentity(t *testing.T) {
	t.Run("NameAndEmail", func(t *testing.T) {
		mockDB, repo := newMockProfileRepo(t)
		userID := uuid.New()
		name := "New Name"
		email := "new@example.com"

		mockDB.ExpectExec("UPDATE users SET").
			WithArgs(name, email, pgxmock.AnyArg(), userID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateUserIdentity(context.Background(), userID, &name, &email)

		assert.NoError(t, err)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("NoFieldsIsNoOp", func(t *testing.T) {
		mockDB, repo := newMockProfileRepo(t)

		err := repo.UpdateUserIdentity(context.Background(), uuid.New(), nil, nil)

		assert.NoError(t, err)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mockDB, repo := newMockProfileRepo(t)
		userID := uuid.New()
		email := "taken@example.com"

		mockDB.ExpectExec("UPDATE users SET").
			WithArgs(email, pgxmock.AnyArg(), userID).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.UpdateUserIdentity(context.Background(), userID, nil, &email)

		assert.ErrorIs(t, err, types.ErrConflict)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("UserMissing", func(t *testing.T) {
		mockDB, repo := newMockProfileRepo(t)
		userID := uuid.New()
		name := "New Name"

		mockDB.ExpectExec("UPDATE users SET").
			WithArgs(name, pgxmock.AnyArg(), userID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateUserIdentity(context.Background(), userID, &name, nil)

		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}
