package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/sareemart/storefront/internal/config"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	_ "github.com/lib/pq"
)

// DBTX is the slice of database/sql shared by *sql.DB and *sql.Tx. Every
// repository runs against it, so the same query code serves both plain calls
// and the checkout transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repositories bundles the per-entity repositories over one shared pool.
type Repositories struct {
	DB       *sql.DB
	User     *UserRepository
	Admin    *AdminRepository
	Product  *ProductRepository
	Cart     *CartRepository
	Wishlist *WishlistRepository
	Order    *OrderRepository
}

func New(cfg *config.Config) (*Repositories, error) {
	db, err := otelsql.Open("postgres", cfg.Database.GetDSN(),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// Test the connection to make sure the DB is reachable
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewWithDB(db), nil
}

// NewWithDB wires repositories over an existing handle. Tests inject sqlmock
// through here.
func NewWithDB(db *sql.DB) *Repositories {
	return &Repositories{
		DB:       db,
		User:     NewUserRepository(db),
		Admin:    NewAdminRepository(db),
		Product:  NewProductRepository(db),
		Cart:     NewCartRepository(db),
		Wishlist: NewWishlistRepository(db),
		Order:    NewOrderRepository(db),
	}
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}
