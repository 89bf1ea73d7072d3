package repository_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sareemart/storefront/internal/models"
	repository "github.com/sareemart/storefront/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserRepoTest(t *testing.T) (*repository.UserRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	return repository.NewUserRepository(db), mock
}

func TestCreateUser(t *testing.T) {
	repo, mock := setupUserRepoTest(t)
	now := time.Now()

	t.Run("Success - User Created", func(t *testing.T) {
		// Arrange
		user := &models.User{
			ID:        uuid.New(),
			Email:     "meera@example.com",
			Password:  "hashed-password",
			FirstName: "Meera",
			LastName:  "Iyer",
		}

		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		// Act
		err := repo.CreateUser(t.Context(), user)

		// Assert
		require.NoError(t, err)
		assert.WithinDuration(t, now, user.CreatedAt, time.Second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Duplicate Email", func(t *testing.T) {
		// Arrange
		user := &models.User{ID: uuid.New(), Email: "meera@example.com", Password: "hashed-password"}

		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		// Act
		err := repo.CreateUser(t.Context(), user)

		// Assert
		require.ErrorIs(t, err, repository.ErrDuplicateEmail)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetUserByEmail(t *testing.T) {
	repo, mock := setupUserRepoTest(t)
	now := time.Now()

	t.Run("Success - User Found", func(t *testing.T) {
		// Arrange
		userID := uuid.New()

		mock.ExpectQuery(`FROM users\s+WHERE email = \$1`).
			WithArgs("meera@example.com").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "email", "password", "first_name", "last_name", "phone", "created_at", "updated_at",
			}).AddRow(userID, "meera@example.com", "hashed-password", "Meera", "Iyer", "+919876543210", now, now))

		// Act
		user, err := repo.GetUserByEmail(t.Context(), "meera@example.com")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Unknown Email", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`FROM users\s+WHERE email = \$1`).
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		// Act
		user, err := repo.GetUserByEmail(t.Context(), "nobody@example.com")

		// Assert
		require.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, user)
	})
}
