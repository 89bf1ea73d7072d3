package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sareemart/storefront/internal/models"
	"github.com/sareemart/storefront/internal/utils"
)

type CartRepository struct {
	DB DBTX
}

func NewCartRepository(db DBTX) *CartRepository {
	return &CartRepository{DB: db}
}

// AddItem inserts a cart line, or bumps the quantity when the same
// (user, product, size, color) combination is already in the cart.
func (r *CartRepository) AddItem(ctx context.Context, line *models.CartLine) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO cart (id, user_id, product_id, quantity, size, color)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, product_id, size, color)
		DO UPDATE SET quantity = cart.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING id, quantity, created_at, updated_at
	`

	err := r.DB.QueryRowContext(dbCtx, query, line.ID, line.UserID, line.ProductID, line.Quantity, line.Size, line.Color).
		Scan(&line.ID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE cart
		SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`

	result, err := r.DB.ExecContext(dbCtx, query, quantity, lineID, userID)
	if err != nil {
		return fmt.Errorf("failed to update cart quantity: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed checking rows affected for cart update: %w", err)
	}

	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *CartRepository) RemoveItem(ctx context.Context, userID, lineID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM cart WHERE id = $1 AND user_id = $2`, lineID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed checking rows affected for cart removal: %w", err)
	}

	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ListWithProducts returns every cart line joined with its live catalog row,
// including lines whose product has gone inactive so the storefront can flag
// them.
func (r *CartRepository) ListWithProducts(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.size, c.color, c.created_at, c.updated_at,
			p.name, p.images, p.price, p.discount_price, COALESCE(p.discount_price, p.price) AS final_price, p.is_active
		FROM cart c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = $1
		ORDER BY c.created_at, c.id
	`

	rows, err := r.DB.QueryContext(dbCtx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}

	defer rows.Close()

	return scanCartLines(rows)
}

// ListForCheckout returns the purchasable cart: lines joined with live
// pricing, inactive products silently excluded. Runs inside the checkout
// transaction via a tx-bound repository.
func (r *CartRepository) ListForCheckout(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	query := `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.size, c.color, c.created_at, c.updated_at,
			p.name, p.images, p.price, p.discount_price, COALESCE(p.discount_price, p.price) AS final_price, p.is_active
		FROM cart c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = $1 AND p.is_active = true
		ORDER BY c.created_at, c.id
	`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for checkout: %w", err)
	}

	defer rows.Close()

	return scanCartLines(rows)
}

// DeleteAllForUser clears the whole cart, ordered and excluded lines alike.
func (r *CartRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM cart WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

func scanCartLines(rows *sql.Rows) ([]models.CartLine, error) {
	var lines []models.CartLine

	for rows.Next() {
		var line models.CartLine

		var images []string

		err := rows.Scan(&line.ID, &line.UserID, &line.ProductID, &line.Quantity, &line.Size, &line.Color,
			&line.CreatedAt, &line.UpdatedAt,
			&line.ProductName, pq.Array(&images), &line.Price, &line.DiscountPrice, &line.FinalPrice, &line.IsActive)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart row: %w", err)
		}

		if len(images) > 0 {
			line.ProductImage = &images[0]
		}

		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}
