package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Fabric        string    `json:"fabric,omitempty"`
	Price         float64   `json:"price"`
	DiscountPrice *float64  `json:"discount_price,omitempty"`
	Images        []string  `json:"images"`
	Stock         int       `json:"stock"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FinalPrice is the price a buyer actually pays: the discount price when one
// is set, the list price otherwise.
func (p *Product) FinalPrice() float64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}

	return p.Price
}

type CreateProductRequest struct {
	Name          string   `json:"name" validate:"required,min=3,max=200"`
	Description   string   `json:"description,omitempty"`
	Category      string   `json:"category" validate:"required"`
	Fabric        string   `json:"fabric,omitempty"`
	Price         float64  `json:"price" validate:"required,gt=0"`
	DiscountPrice *float64 `json:"discount_price,omitempty" validate:"omitempty,gt=0"`
	Images        []string `json:"images,omitempty"`
	Stock         int      `json:"stock" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=3,max=200"`
	Description   *string  `json:"description,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Fabric        *string  `json:"fabric,omitempty"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	DiscountPrice *float64 `json:"discount_price,omitempty" validate:"omitempty,gt=0"`
	Images        []string `json:"images,omitempty"`
	Stock         *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
}

// ProductFilter narrows the catalog listing.
type ProductFilter struct {
	Category string
	Fabric   string
	Search   string
	SortBy   string
	Page     int
	PageSize int
}
