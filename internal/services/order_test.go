package service_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	appErrors "github.com/sareemart/storefront/internal/errors"
	"github.com/sareemart/storefront/internal/models"
	"github.com/sareemart/storefront/internal/pricing"
	repository "github.com/sareemart/storefront/internal/repositories"
	service "github.com/sareemart/storefront/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupOrderServiceTest(t *testing.T) (service.OrderService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	repos := repository.NewWithDB(db)
	txManager := repository.NewTxManager(db)
	calculator := pricing.NewCalculator(pricing.DefaultFreeShippingThreshold, pricing.DefaultFlatShippingFee)

	orderService := service.NewOrderService(txManager, repos.Order, calculator, nil, "India")

	return orderService, mock
}

func shippingRequest() *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		FirstName:     "Meera",
		LastName:      "Iyer",
		Email:         "meera@example.com",
		Phone:         "+919876543210",
		AddressLine1:  "14 Temple Street",
		City:          "Chennai",
		State:         "Tamil Nadu",
		PostalCode:    "600004",
		PaymentMethod: "cod",
	}
}

func cartColumns() []string {
	return []string{
		"id", "user_id", "product_id", "quantity", "size", "color",
		"created_at", "updated_at", "name", "images", "price", "discount_price", "final_price", "is_active",
	}
}

func orderColumns() []string {
	return []string{
		"user_id", "order_number", "status", "subtotal", "shipping_fee", "total_amount",
		"first_name", "last_name", "email", "phone", "address_line1", "address_line2",
		"city", "state", "postal_code", "country", "payment_method", "created_at", "updated_at",
	}
}

func expectOrderReadBack(mock sqlmock.Sqlmock, userID uuid.UUID, subtotal, shipping float64) {
	now := time.Now()

	mock.ExpectQuery(`SELECT user_id, order_number, status, subtotal, shipping_fee, total_amount`).
		WillReturnRows(sqlmock.NewRows(orderColumns()).
			AddRow(userID, "ORD-1756600000000-abcd1234", "pending", subtotal, shipping, subtotal+shipping,
				"Meera", "Iyer", "meera@example.com", "+919876543210", "14 Temple Street", nil,
				"Chennai", "Tamil Nadu", "600004", "India", "cod", now, now))

	mock.ExpectQuery(`SELECT id, product_id, product_name, product_image, price, quantity, size, color, subtotal, created_at\s+FROM order_items`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "product_id", "product_name", "product_image", "price",
			"quantity", "size", "color", "subtotal", "created_at",
		}).AddRow(uuid.New(), uuid.New(), "Kanjivaram Silk Saree", "silk1.jpg", 4500.0, 1, "free", nil, 4500.0, now))
}

func TestOrderService_PlaceOrder(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	now := time.Now()

	t.Run("Success - Single Line Below Free Shipping", func(t *testing.T) {
		// Arrange
		orderService, mock := setupOrderServiceTest(t)

		mock.ExpectBegin()

		mock.ExpectQuery(`SELECT c\.id, c\.user_id, c\.product_id`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(cartColumns()).
				AddRow(uuid.New(), userID, productID, 1, "free", nil, now, now,
					"Kanjivaram Silk Saree", []byte("{silk1.jpg}"), 5000.0, 4500.0, 4500.0, true))

		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		mock.ExpectQuery(`SELECT stock FROM products WHERE id = \$1 FOR UPDATE`).
			WithArgs(productID).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(3))

		mock.ExpectQuery(`INSERT INTO order_items`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

		mock.ExpectExec(`UPDATE products\s+SET stock = stock - \$1`).
			WithArgs(1, productID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectExec(`DELETE FROM cart WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		expectOrderReadBack(mock, userID, 4500, 200)

		// Act
		order, err := orderService.PlaceOrder(t.Context(), userID, shippingRequest())

		// Assert
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.InDelta(t, 4500.0, order.Subtotal, 0.001)
		assert.InDelta(t, 200.0, order.ShippingFee, 0.001)
		assert.InDelta(t, 4700.0, order.TotalAmount, 0.001)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.Len(t, order.Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Empty Cart", func(t *testing.T) {
		// Arrange
		orderService, mock := setupOrderServiceTest(t)

		mock.ExpectBegin()

		mock.ExpectQuery(`SELECT c\.id, c\.user_id, c\.product_id`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(cartColumns()))

		mock.ExpectRollback()

		// Act
		order, err := orderService.PlaceOrder(t.Context(), userID, shippingRequest())

		// Assert
		require.Error(t, err)
		assert.Nil(t, order)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeEmptyCart, appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Insufficient Stock Rolls Back", func(t *testing.T) {
		// Arrange
		orderService, mock := setupOrderServiceTest(t)

		mock.ExpectBegin()

		mock.ExpectQuery(`SELECT c\.id, c\.user_id, c\.product_id`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(cartColumns()).
				AddRow(uuid.New(), userID, productID, 5, nil, nil, now, now,
					"Banarasi Saree", []byte("{banarasi.jpg}"), 3200.0, nil, 3200.0, true))

		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		mock.ExpectQuery(`SELECT stock FROM products WHERE id = \$1 FOR UPDATE`).
			WithArgs(productID).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(2))

		mock.ExpectRollback()

		// Act
		order, err := orderService.PlaceOrder(t.Context(), userID, shippingRequest())

		// Assert
		require.Error(t, err)
		assert.Nil(t, order)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeInsufficientStock, appErr.Code)
		assert.Contains(t, appErr.Message, "Banarasi Saree")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Conditional Decrement Rejected", func(t *testing.T) {
		// Arrange
		orderService, mock := setupOrderServiceTest(t)

		mock.ExpectBegin()

		mock.ExpectQuery(`SELECT c\.id, c\.user_id, c\.product_id`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(cartColumns()).
				AddRow(uuid.New(), userID, productID, 2, nil, nil, now, now,
					"Chiffon Saree", []byte("{chiffon.jpg}"), 1800.0, nil, 1800.0, true))

		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		mock.ExpectQuery(`SELECT stock FROM products WHERE id = \$1 FOR UPDATE`).
			WithArgs(productID).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(2))

		mock.ExpectQuery(`INSERT INTO order_items`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

		// The guarded update matches no row, e.g. a concurrent checkout won.
		mock.ExpectExec(`UPDATE products\s+SET stock = stock - \$1`).
			WithArgs(2, productID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		mock.ExpectRollback()

		// Act
		order, err := orderService.PlaceOrder(t.Context(), userID, shippingRequest())

		// Assert
		require.Error(t, err)
		assert.Nil(t, order)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeInsufficientStock, appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Cart Clear Error After Decrement Rolls Back", func(t *testing.T) {
		// Arrange
		orderService, mock := setupOrderServiceTest(t)

		mock.ExpectBegin()

		mock.ExpectQuery(`SELECT c\.id, c\.user_id, c\.product_id`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(cartColumns()).
				AddRow(uuid.New(), userID, productID, 1, "free", nil, now, now,
					"Kanjivaram Silk Saree", []byte("{silk1.jpg}"), 5000.0, 4500.0, 4500.0, true))

		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		mock.ExpectQuery(`SELECT stock FROM products WHERE id = \$1 FOR UPDATE`).
			WithArgs(productID).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(3))

		mock.ExpectQuery(`INSERT INTO order_items`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

		// The decrement lands, then clearing the cart fails. The decrement
		// must not survive on its own.
		mock.ExpectExec(`UPDATE products\s+SET stock = stock - \$1`).
			WithArgs(1, productID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectExec(`DELETE FROM cart WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnError(sql.ErrConnDone)

		mock.ExpectRollback()

		// Act
		order, err := orderService.PlaceOrder(t.Context(), userID, shippingRequest())

		// Assert
		require.Error(t, err)
		assert.Nil(t, order)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeOrderCreationFailed, appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Commit Error Surfaces As Order Creation Failed", func(t *testing.T) {
		// Arrange
		orderService, mock := setupOrderServiceTest(t)

		mock.ExpectBegin()

		mock.ExpectQuery(`SELECT c\.id, c\.user_id, c\.product_id`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(cartColumns()).
				AddRow(uuid.New(), userID, productID, 1, "free", nil, now, now,
					"Kanjivaram Silk Saree", []byte("{silk1.jpg}"), 5000.0, 4500.0, 4500.0, true))

		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		mock.ExpectQuery(`SELECT stock FROM products WHERE id = \$1 FOR UPDATE`).
			WithArgs(productID).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(3))

		mock.ExpectQuery(`INSERT INTO order_items`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

		mock.ExpectExec(`UPDATE products\s+SET stock = stock - \$1`).
			WithArgs(1, productID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectExec(`DELETE FROM cart WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit().WillReturnError(sql.ErrTxDone)

		// Act
		order, err := orderService.PlaceOrder(t.Context(), userID, shippingRequest())

		// Assert
		require.Error(t, err)
		assert.Nil(t, order)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeOrderCreationFailed, appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - Retries Once On Order Number Collision", func(t *testing.T) {
		// Arrange
		orderService, mock := setupOrderServiceTest(t)

		cartRow := func() *sqlmock.Rows {
			return sqlmock.NewRows(cartColumns()).
				AddRow(uuid.New(), userID, productID, 1, "free", nil, now, now,
					"Kanjivaram Silk Saree", []byte("{silk1.jpg}"), 5000.0, 4500.0, 4500.0, true)
		}

		// First attempt hits the unique constraint on order_number.
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT c\.id, c\.user_id, c\.product_id`).
			WithArgs(userID).
			WillReturnRows(cartRow())
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "orders_order_number_key"})
		mock.ExpectRollback()

		// Second attempt succeeds with a fresh number.
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT c\.id, c\.user_id, c\.product_id`).
			WithArgs(userID).
			WillReturnRows(cartRow())
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectQuery(`SELECT stock FROM products WHERE id = \$1 FOR UPDATE`).
			WithArgs(productID).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(3))
		mock.ExpectQuery(`INSERT INTO order_items`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
		mock.ExpectExec(`UPDATE products\s+SET stock = stock - \$1`).
			WithArgs(1, productID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM cart WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		expectOrderReadBack(mock, userID, 4500, 200)

		// Act
		order, err := orderService.PlaceOrder(t.Context(), userID, shippingRequest())

		// Assert
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - Free Shipping At Threshold", func(t *testing.T) {
		// Arrange
		orderService, mock := setupOrderServiceTest(t)

		mock.ExpectBegin()

		mock.ExpectQuery(`SELECT c\.id, c\.user_id, c\.product_id`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(cartColumns()).
				AddRow(uuid.New(), userID, productID, 2, nil, nil, now, now,
					"Silk Saree", []byte("{silk.jpg}"), 2500.0, nil, 2500.0, true))

		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		mock.ExpectQuery(`SELECT stock FROM products WHERE id = \$1 FOR UPDATE`).
			WithArgs(productID).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(10))

		mock.ExpectQuery(`INSERT INTO order_items`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

		mock.ExpectExec(`UPDATE products\s+SET stock = stock - \$1`).
			WithArgs(2, productID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectExec(`DELETE FROM cart WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		expectOrderReadBack(mock, userID, 5000, 0)

		// Act
		order, err := orderService.PlaceOrder(t.Context(), userID, shippingRequest())

		// Assert
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.InDelta(t, 0.0, order.ShippingFee, 0.001)
		assert.InDelta(t, 5000.0, order.TotalAmount, 0.001)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderService_GetMyOrder(t *testing.T) {
	t.Run("Failure - Another User's Order Reads As Not Found", func(t *testing.T) {
		// Arrange
		orderService, mock := setupOrderServiceTest(t)

		owner := uuid.New()
		caller := uuid.New()
		orderID := uuid.New()

		expectOrderReadBack(mock, owner, 4500, 200)

		// Act
		order, err := orderService.GetMyOrder(t.Context(), caller, orderID)

		// Assert
		require.Error(t, err)
		assert.Nil(t, order)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Missing Order", func(t *testing.T) {
		// Arrange
		orderService, mock := setupOrderServiceTest(t)

		mock.ExpectQuery(`SELECT user_id, order_number, status`).
			WillReturnError(sql.ErrNoRows)

		// Act
		order, err := orderService.GetMyOrder(t.Context(), uuid.New(), uuid.New())

		// Assert
		require.Error(t, err)
		assert.Nil(t, order)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}
