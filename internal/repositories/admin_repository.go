package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sareemart/storefront/internal/models"
	"github.com/sareemart/storefront/internal/utils"
)

type AdminRepository struct {
	DB DBTX
}

func NewAdminRepository(db DBTX) *AdminRepository {
	return &AdminRepository{DB: db}
}

func (r *AdminRepository) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	admin := &models.Admin{}

	query := `
		SELECT id, email, password, name, created_at
		FROM admins
		WHERE email = $1
	`

	err := r.DB.QueryRowContext(dbCtx, query, email).
		Scan(&admin.ID, &admin.Email, &admin.Password, &admin.Name, &admin.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return admin, nil
}
