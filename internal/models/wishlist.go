package models

import (
	"time"

	"github.com/google/uuid"
)

type WishlistItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`

	Product *Product `json:"product,omitempty"`
}

type ToggleWishlistRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

// ToggleWishlistResponse reports the new state of the toggled product and the
// wishlist size afterwards, which the storefront shows as a badge.
type ToggleWishlistResponse struct {
	Added bool `json:"added"`
	Count int  `json:"count"`
}
