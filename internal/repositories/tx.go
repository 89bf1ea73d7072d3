package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// TxRepositories are the repositories bound to one open transaction. Whatever
// they touch commits or rolls back together.
type TxRepositories struct {
	Product *ProductRepository
	Cart    *CartRepository
	Order   *OrderRepository
}

// TxManager runs a function inside a single database transaction. The
// checkout path is its only caller today, but nothing about it is
// checkout-specific.
type TxManager struct {
	DB *sql.DB
}

func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{DB: db}
}

// WithinTx begins a transaction, hands tx-bound repositories to fn, and
// commits only when fn returns nil. Any error, or a panic, rolls everything
// back.
func (m *TxManager) WithinTx(ctx context.Context, fn func(r *TxRepositories) error) error {
	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		// No-op after a successful commit.
		_ = tx.Rollback()
	}()

	repos := &TxRepositories{
		Product: &ProductRepository{DB: tx},
		Cart:    &CartRepository{DB: tx},
		Order:   &OrderRepository{DB: tx},
	}

	if err := fn(repos); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
