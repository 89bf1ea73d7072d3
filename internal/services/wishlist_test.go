package service_test

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	appErrors "github.com/sareemart/storefront/internal/errors"
	"github.com/sareemart/storefront/internal/models"
	repository "github.com/sareemart/storefront/internal/repositories"
	service "github.com/sareemart/storefront/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWishlistServiceTest(t *testing.T) (service.WishlistService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	repos := repository.NewWithDB(db)

	return service.NewWishlistService(repos.Wishlist, repos.Product), mock
}

func TestWishlistService_Remove(t *testing.T) {
	userID := uuid.New()
	itemID := uuid.New()

	t.Run("Success - Item Removed", func(t *testing.T) {
		// Arrange
		wishlistService, mock := setupWishlistServiceTest(t)

		mock.ExpectExec(`DELETE FROM wishlist WHERE id = \$1 AND user_id = \$2`).
			WithArgs(itemID, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act
		err := wishlistService.Remove(t.Context(), userID, itemID)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Unknown Item", func(t *testing.T) {
		// Arrange
		wishlistService, mock := setupWishlistServiceTest(t)

		mock.ExpectExec(`DELETE FROM wishlist WHERE id = \$1 AND user_id = \$2`).
			WithArgs(itemID, userID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// Act
		err := wishlistService.Remove(t.Context(), userID, itemID)

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Another User's Item", func(t *testing.T) {
		// Arrange
		wishlistService, mock := setupWishlistServiceTest(t)
		caller := uuid.New()

		// The owner scope in the WHERE clause makes the delete a no-op.
		mock.ExpectExec(`DELETE FROM wishlist WHERE id = \$1 AND user_id = \$2`).
			WithArgs(itemID, caller).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// Act
		err := wishlistService.Remove(t.Context(), caller, itemID)

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestWishlistService_Count(t *testing.T) {
	userID := uuid.New()

	t.Run("Success - Count Returned", func(t *testing.T) {
		// Arrange
		wishlistService, mock := setupWishlistServiceTest(t)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM wishlist WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		// Act
		count, err := wishlistService.Count(t.Context(), userID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 4, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWishlistService_Toggle(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	now := time.Now()

	t.Run("Success - Present Product Toggles Off", func(t *testing.T) {
		// Arrange
		wishlistService, mock := setupWishlistServiceTest(t)

		mock.ExpectExec(`DELETE FROM wishlist WHERE user_id = \$1 AND product_id = \$2`).
			WithArgs(userID, productID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM wishlist WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		// Act
		result, err := wishlistService.Toggle(t.Context(), userID,
			&models.ToggleWishlistRequest{ProductID: productID})

		// Assert
		require.NoError(t, err)
		assert.False(t, result.Added)
		assert.Equal(t, 2, result.Count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - Absent Product Toggles On", func(t *testing.T) {
		// Arrange
		wishlistService, mock := setupWishlistServiceTest(t)

		mock.ExpectExec(`DELETE FROM wishlist WHERE user_id = \$1 AND product_id = \$2`).
			WithArgs(userID, productID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		mock.ExpectQuery(`FROM products\s+WHERE id = \$1`).
			WithArgs(productID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "name", "description", "category", "fabric", "price", "discount_price",
				"images", "stock", "is_active", "created_at", "updated_at",
			}).AddRow(productID, "Kanjivaram Silk Saree", "Handwoven", "kanjivaram", "silk",
				5000.0, nil, []byte("{silk1.jpg}"), 3, true, now, now))

		mock.ExpectQuery(`INSERT INTO wishlist`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM wishlist WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		// Act
		result, err := wishlistService.Toggle(t.Context(), userID,
			&models.ToggleWishlistRequest{ProductID: productID})

		// Assert
		require.NoError(t, err)
		assert.True(t, result.Added)
		assert.Equal(t, 3, result.Count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
