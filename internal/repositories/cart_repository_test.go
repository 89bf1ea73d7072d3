package repository_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sareemart/storefront/internal/models"
	repository "github.com/sareemart/storefront/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartRepoTest(t *testing.T) (*repository.CartRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	return repository.NewCartRepository(db), mock
}

func TestAddItem(t *testing.T) {
	repo, mock := setupCartRepoTest(t)
	userID := uuid.New()
	productID := uuid.New()
	now := time.Now()

	t.Run("Success - New Line Inserted", func(t *testing.T) {
		// Arrange
		size := "free"
		line := &models.CartLine{
			ID:        uuid.New(),
			UserID:    userID,
			ProductID: productID,
			Quantity:  1,
			Size:      &size,
		}

		mock.ExpectQuery(`ON CONFLICT \(user_id, product_id, size, color\)`).
			WithArgs(line.ID, userID, productID, 1, &size, nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "quantity", "created_at", "updated_at"}).
				AddRow(line.ID, 1, now, now))

		// Act
		err := repo.AddItem(t.Context(), line)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 1, line.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - Existing Line Quantity Bumped", func(t *testing.T) {
		// Arrange
		existingID := uuid.New()
		line := &models.CartLine{
			ID:        uuid.New(),
			UserID:    userID,
			ProductID: productID,
			Quantity:  2,
		}

		// The upsert returns the surviving row, not the one we tried to insert.
		mock.ExpectQuery(`DO UPDATE SET quantity = cart\.quantity \+ EXCLUDED\.quantity`).
			WithArgs(line.ID, userID, productID, 2, nil, nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "quantity", "created_at", "updated_at"}).
				AddRow(existingID, 5, now, now))

		// Act
		err := repo.AddItem(t.Context(), line)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, existingID, line.ID)
		assert.Equal(t, 5, line.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateQuantity(t *testing.T) {
	repo, mock := setupCartRepoTest(t)
	userID := uuid.New()
	lineID := uuid.New()

	t.Run("Failure - Another User's Line", func(t *testing.T) {
		// Arrange
		mock.ExpectExec(`UPDATE cart\s+SET quantity = \$1`).
			WithArgs(3, lineID, userID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// Act
		err := repo.UpdateQuantity(t.Context(), userID, lineID, 3)

		// Assert
		require.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListForCheckout(t *testing.T) {
	repo, mock := setupCartRepoTest(t)
	userID := uuid.New()
	now := time.Now()

	t.Run("Success - Discounted Price Wins", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`WHERE c\.user_id = \$1 AND p\.is_active = true\s+ORDER BY c\.created_at, c\.id`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "product_id", "quantity", "size", "color",
				"created_at", "updated_at", "name", "images", "price", "discount_price", "final_price", "is_active",
			}).
				AddRow(uuid.New(), userID, uuid.New(), 1, nil, nil, now, now,
					"Kanjivaram Silk Saree", []byte("{silk1.jpg,silk2.jpg}"), 5000.0, 4500.0, 4500.0, true).
				AddRow(uuid.New(), userID, uuid.New(), 2, nil, nil, now, now,
					"Cotton Saree", []byte("{}"), 900.0, nil, 900.0, true))

		// Act
		lines, err := repo.ListForCheckout(t.Context(), userID)

		// Assert
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.InDelta(t, 4500.0, lines[0].FinalPrice, 0.001)
		require.NotNil(t, lines[0].ProductImage)
		assert.Equal(t, "silk1.jpg", *lines[0].ProductImage)
		assert.Nil(t, lines[1].ProductImage)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteAllForUser(t *testing.T) {
	repo, mock := setupCartRepoTest(t)
	userID := uuid.New()

	t.Run("Success - Cart Cleared", func(t *testing.T) {
		// Arrange
		mock.ExpectExec(`DELETE FROM cart WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnResult(sqlmock.NewResult(0, 3))

		// Act
		err := repo.DeleteAllForUser(t.Context(), userID)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
