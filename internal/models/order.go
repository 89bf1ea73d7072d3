package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order is written exactly once, at checkout, inside a single transaction.
// Totals are computed at creation time and never recomputed; only the status
// changes afterwards, via admin action.
type Order struct {
	ID            uuid.UUID   `json:"id"`
	UserID        uuid.UUID   `json:"user_id"`
	OrderNumber   string      `json:"order_number"`
	Status        OrderStatus `json:"status"`
	Subtotal      float64     `json:"subtotal"`
	ShippingFee   float64     `json:"shipping_fee"`
	TotalAmount   float64     `json:"total_amount"`
	FirstName     string      `json:"first_name"`
	LastName      string      `json:"last_name"`
	Email         string      `json:"email"`
	Phone         string      `json:"phone"`
	AddressLine1  string      `json:"address_line1"`
	AddressLine2  *string     `json:"address_line2,omitempty"`
	City          string      `json:"city"`
	State         string      `json:"state"`
	PostalCode    string      `json:"postal_code"`
	Country       string      `json:"country"`
	PaymentMethod string      `json:"payment_method"`
	Items         []OrderItem `json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderItem is an immutable snapshot of one cart line at the moment of
// purchase. Later catalog edits do not touch it, so historical invoices stay
// correct.
type OrderItem struct {
	ID           uuid.UUID `json:"id"`
	OrderID      uuid.UUID `json:"order_id"`
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductImage *string   `json:"product_image,omitempty"`
	UnitPrice    float64   `json:"price"`
	Quantity     int       `json:"quantity"`
	Size         *string   `json:"size,omitempty"`
	Color        *string   `json:"color,omitempty"`
	Subtotal     float64   `json:"subtotal"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateOrderRequest struct {
	FirstName     string  `json:"first_name" validate:"required"`
	LastName      string  `json:"last_name" validate:"required"`
	Email         string  `json:"email" validate:"required,email"`
	Phone         string  `json:"phone" validate:"required"`
	AddressLine1  string  `json:"address_line1" validate:"required"`
	AddressLine2  *string `json:"address_line2,omitempty"`
	City          string  `json:"city" validate:"required"`
	State         string  `json:"state" validate:"required"`
	PostalCode    string  `json:"postal_code" validate:"required"`
	Country       string  `json:"country,omitempty"`
	PaymentMethod string  `json:"payment_method" validate:"required,oneof=cod upi bank_transfer"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled"`
}

// DashboardStats backs the admin landing page.
type DashboardStats struct {
	TotalOrders   int       `json:"total_orders"`
	TotalUsers    int       `json:"total_users"`
	TotalProducts int       `json:"total_products"`
	TotalRevenue  float64   `json:"total_revenue"`
	RecentOrders  []Order   `json:"recent_orders"`
	LowStock      []Product `json:"low_stock_products"`
}
