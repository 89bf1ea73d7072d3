package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sareemart/storefront/internal/models"
	"github.com/sareemart/storefront/internal/utils"
)

type ProductRepository struct {
	DB DBTX
}

func NewProductRepository(db DBTX) *ProductRepository {
	return &ProductRepository{DB: db}
}

func (r *ProductRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO products (id, name, description, category, fabric, price, discount_price, images, stock, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query,
		product.ID, product.Name, product.Description, product.Category, product.Fabric,
		product.Price, product.DiscountPrice, pq.Array(product.Images), product.Stock, product.IsActive).
		Scan(&product.CreatedAt, &product.UpdatedAt)
}

func (r *ProductRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	product := &models.Product{}

	query := `
		SELECT id, name, description, category, fabric, price, discount_price, images, stock, is_active, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	err := r.DB.QueryRowContext(dbCtx, query, id).
		Scan(&product.ID, &product.Name, &product.Description, &product.Category, &product.Fabric,
			&product.Price, &product.DiscountPrice, pq.Array(&product.Images), &product.Stock,
			&product.IsActive, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return product, nil
}

func (r *ProductRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET name = $1, description = $2, category = $3, fabric = $4, price = $5,
			discount_price = $6, images = $7, stock = $8, is_active = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`

	err := r.DB.QueryRowContext(dbCtx, query,
		product.Name, product.Description, product.Category, product.Fabric, product.Price,
		product.DiscountPrice, pq.Array(product.Images), product.Stock, product.IsActive, product.ID).
		Scan(&product.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return err
		}

		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// ToggleActive flips is_active and returns the new value.
func (r *ProductRepository) ToggleActive(ctx context.Context, id uuid.UUID) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET is_active = NOT is_active, updated_at = NOW()
		WHERE id = $1
		RETURNING is_active
	`

	var active bool

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&active)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, err
		}

		return false, fmt.Errorf("failed to toggle product status: %w", err)
	}

	return active, nil
}

func (r *ProductRepository) ListProducts(ctx context.Context, filter *models.ProductFilter) ([]models.Product, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	conditions := []string{"is_active = true"}
	args := []any{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}

	if filter.Fabric != "" {
		args = append(args, filter.Fabric)
		conditions = append(conditions, fmt.Sprintf("fabric = $%d", len(args)))
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int

	countQuery := `SELECT COUNT(*) FROM products ` + where
	if err := r.DB.QueryRowContext(dbCtx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := "created_at DESC"

	switch filter.SortBy {
	case "price_asc":
		orderBy = "COALESCE(discount_price, price) ASC"
	case "price_desc":
		orderBy = "COALESCE(discount_price, price) DESC"
	case "name":
		orderBy = "name ASC"
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	query := fmt.Sprintf(`
		SELECT id, name, description, category, fabric, price, discount_price, images, stock, is_active, created_at, updated_at
		FROM products
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, where, orderBy, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductRepository) ListNewArrivals(ctx context.Context, limit int) ([]models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, description, category, fabric, price, discount_price, images, stock, is_active, created_at, updated_at
		FROM products
		WHERE is_active = true
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.DB.QueryContext(dbCtx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list new arrivals: %w", err)
	}

	defer rows.Close()

	return scanProducts(rows)
}

func (r *ProductRepository) ListLowStock(ctx context.Context, threshold, limit int) ([]models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, description, category, fabric, price, discount_price, images, stock, is_active, created_at, updated_at
		FROM products
		WHERE is_active = true AND stock <= $1
		ORDER BY stock ASC
		LIMIT $2
	`

	rows, err := r.DB.QueryContext(dbCtx, query, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}

	defer rows.Close()

	return scanProducts(rows)
}

func (r *ProductRepository) CountProducts(ctx context.Context) (int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM products`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return total, nil
}

// GetStockForUpdate reads the live stock count with a row lock. It must run
// on a transaction-bound repository: the lock is what keeps two concurrent
// checkouts from both passing the sufficiency check on the same unit.
func (r *ProductRepository) GetStockForUpdate(ctx context.Context, id uuid.UUID) (int, error) {
	query := `SELECT stock FROM products WHERE id = $1 FOR UPDATE`

	var stock int

	err := r.DB.QueryRowContext(ctx, query, id).Scan(&stock)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}

		return 0, fmt.Errorf("failed to read stock: %w", err)
	}

	return stock, nil
}

// DecrementStock subtracts quantity conditionally, so stock can never go
// negative even if a caller skipped the sufficiency check.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
	`

	result, err := r.DB.ExecContext(ctx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed checking rows affected for stock decrement: %w", err)
	}

	if affected == 0 {
		return ErrStockConflict
	}

	return nil
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	var products []models.Product

	for rows.Next() {
		var product models.Product

		err := rows.Scan(&product.ID, &product.Name, &product.Description, &product.Category, &product.Fabric,
			&product.Price, &product.DiscountPrice, pq.Array(&product.Images), &product.Stock,
			&product.IsActive, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
