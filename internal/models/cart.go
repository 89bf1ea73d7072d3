package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLine is one row of a customer's cart. A line is unique per
// (user, product, size, color); adding the same combination again bumps the
// quantity instead of creating a second row.
type CartLine struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Size      *string   `json:"size,omitempty"`
	Color     *string   `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined from the live catalog row; never persisted on the cart itself.
	// IsActive false marks a line whose product was deactivated after it was
	// added; such lines are shown but not priced and never checked out.
	ProductName   string   `json:"product_name,omitempty"`
	ProductImage  *string  `json:"product_image,omitempty"`
	Price         float64  `json:"price,omitempty"`
	DiscountPrice *float64 `json:"discount_price,omitempty"`
	FinalPrice    float64  `json:"final_price,omitempty"`
	IsActive      bool     `json:"is_active"`
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	Size      *string   `json:"size,omitempty"`
	Color     *string   `json:"color,omitempty"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type CartResponse struct {
	Items    []CartLine `json:"items"`
	Subtotal float64    `json:"subtotal"`
}
