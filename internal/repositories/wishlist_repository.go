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

type WishlistRepository struct {
	DB DBTX
}

func NewWishlistRepository(db DBTX) *WishlistRepository {
	return &WishlistRepository{DB: db}
}

func (r *WishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT w.id, w.user_id, w.product_id, w.created_at,
			p.id, p.name, p.description, p.category, p.fabric, p.price, p.discount_price, p.images, p.stock, p.is_active, p.created_at, p.updated_at
		FROM wishlist w
		JOIN products p ON w.product_id = p.id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC
	`

	rows, err := r.DB.QueryContext(dbCtx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}

	defer rows.Close()

	var items []models.WishlistItem

	for rows.Next() {
		var item models.WishlistItem

		var product models.Product

		err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt,
			&product.ID, &product.Name, &product.Description, &product.Category, &product.Fabric,
			&product.Price, &product.DiscountPrice, pq.Array(&product.Images), &product.Stock,
			&product.IsActive, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wishlist row: %w", err)
		}

		item.Product = &product

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Remove deletes the entry and reports whether one existed.
func (r *WishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM wishlist WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return false, fmt.Errorf("failed to remove wishlist item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed checking rows affected for wishlist removal: %w", err)
	}

	return affected > 0, nil
}

func (r *WishlistRepository) Add(ctx context.Context, item *models.WishlistItem) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO wishlist (id, user_id, product_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO NOTHING
		RETURNING created_at
	`

	err := r.DB.QueryRowContext(dbCtx, query, item.ID, item.UserID, item.ProductID).Scan(&item.CreatedAt)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}

	return nil
}

// RemoveByID deletes one entry addressed by its own id, scoped to the owner,
// and reports whether one existed.
func (r *WishlistRepository) RemoveByID(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM wishlist WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove wishlist item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed checking rows affected for wishlist removal: %w", err)
	}

	return affected > 0, nil
}

func (r *WishlistRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var count int

	err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM wishlist WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count wishlist: %w", err)
	}

	return count, nil
}
