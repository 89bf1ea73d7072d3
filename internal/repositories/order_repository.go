package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sareemart/storefront/internal/models"
	"github.com/sareemart/storefront/internal/utils"
)

type OrderRepository struct {
	DB DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{DB: db}
}

// InsertOrder writes the order header. Called on a tx-bound repository during
// checkout; a duplicate order number comes back as ErrOrderNumberConflict so
// the caller can regenerate and retry.
func (r *OrderRepository) InsertOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, user_id, order_number, status, subtotal, shipping_fee, total_amount,
			first_name, last_name, email, phone, address_line1, address_line2, city, state, postal_code, country, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at
	`

	err := r.DB.QueryRowContext(ctx, query,
		order.ID, order.UserID, order.OrderNumber, order.Status,
		order.Subtotal, order.ShippingFee, order.TotalAmount,
		order.FirstName, order.LastName, order.Email, order.Phone,
		order.AddressLine1, order.AddressLine2, order.City, order.State,
		order.PostalCode, order.Country, order.PaymentMethod).
		Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrOrderNumberConflict
		}

		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

// InsertOrderItem writes one immutable line snapshot.
func (r *OrderRepository) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, product_name, product_image, price, quantity, size, color, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.DB.QueryRowContext(ctx, query,
		item.ID, item.OrderID, item.ProductID, item.ProductName, item.ProductImage,
		item.UnitPrice, item.Quantity, item.Size, item.Color, item.Subtotal).
		Scan(&item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order item: %w", err)
	}

	return nil
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order := &models.Order{ID: id}

	query := `
		SELECT user_id, order_number, status, subtotal, shipping_fee, total_amount,
			first_name, last_name, email, phone, address_line1, address_line2, city, state, postal_code, country, payment_method,
			created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	err := r.DB.QueryRowContext(dbCtx, query, id).
		Scan(&order.UserID, &order.OrderNumber, &order.Status, &order.Subtotal, &order.ShippingFee, &order.TotalAmount,
			&order.FirstName, &order.LastName, &order.Email, &order.Phone,
			&order.AddressLine1, &order.AddressLine2, &order.City, &order.State, &order.PostalCode, &order.Country, &order.PaymentMethod,
			&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("failed to get the order: %w", err)
	}

	items, err := r.listItems(dbCtx, id)
	if err != nil {
		return nil, err
	}

	order.Items = items

	return order, nil
}

func (r *OrderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, order_number, status, subtotal, shipping_fee, total_amount,
			first_name, last_name, email, phone, address_line1, address_line2, city, state, postal_code, country, payment_method,
			created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.DB.QueryContext(dbCtx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.listItems(dbCtx, orders[i].ID)
		if err != nil {
			return nil, err
		}

		orders[i].Items = items
	}

	return orders, nil
}

func (r *OrderRepository) ListAllOrders(ctx context.Context, page, size int) ([]models.Order, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * size

	query := `
		SELECT id, user_id, order_number, status, subtotal, shipping_fee, total_amount,
			first_name, last_name, email, phone, address_line1, address_line2, city, state, postal_code, country, payment_method,
			created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.DB.QueryContext(dbCtx, query, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, 0, err
	}

	for i := range orders {
		items, err := r.listItems(dbCtx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}

		orders[i].Items = items
	}

	return orders, total, nil
}

func (r *OrderRepository) ListRecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, order_number, status, subtotal, shipping_fee, total_amount,
			first_name, last_name, email, phone, address_line1, address_line2, city, state, postal_code, country, payment_method,
			created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.DB.QueryContext(dbCtx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}

	defer rows.Close()

	return scanOrders(rows)
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.DB.ExecContext(dbCtx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed checking rows affected for order status update: %w", err)
	}

	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *OrderRepository) CountOrders(ctx context.Context) (int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM orders`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return total, nil
}

// TotalRevenue sums committed order totals, cancelled orders excluded.
func (r *OrderRepository) TotalRevenue(ctx context.Context) (float64, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var revenue float64

	query := `SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status != 'cancelled'`

	err := r.DB.QueryRowContext(dbCtx, query).Scan(&revenue)
	if err != nil {
		return 0, fmt.Errorf("failed to compute revenue: %w", err)
	}

	return revenue, nil
}

func (r *OrderRepository) listItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	query := `
		SELECT id, product_id, product_name, product_image, price, quantity, size, color, subtotal, created_at
		FROM order_items
		WHERE order_id = $1
	`

	rows, err := r.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get the order items: %w", err)
	}

	defer rows.Close()

	var items []models.OrderItem

	for rows.Next() {
		var item models.OrderItem

		err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.ProductImage,
			&item.UnitPrice, &item.Quantity, &item.Size, &item.Color, &item.Subtotal, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		item.OrderID = orderID

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func scanOrders(rows *sql.Rows) ([]models.Order, error) {
	var orders []models.Order

	for rows.Next() {
		var order models.Order

		err := rows.Scan(&order.ID, &order.UserID, &order.OrderNumber, &order.Status,
			&order.Subtotal, &order.ShippingFee, &order.TotalAmount,
			&order.FirstName, &order.LastName, &order.Email, &order.Phone,
			&order.AddressLine1, &order.AddressLine2, &order.City, &order.State, &order.PostalCode, &order.Country, &order.PaymentMethod,
			&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
