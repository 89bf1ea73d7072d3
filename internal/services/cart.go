package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	appErrors "github.com/sareemart/storefront/internal/errors"
	"github.com/sareemart/storefront/internal/models"
	repository "github.com/sareemart/storefront/internal/repositories"
)

type CartService interface {
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.CartLine, error)
	UpdateItem(ctx context.Context, userID, lineID uuid.UUID, req *models.UpdateCartItemRequest) error
	RemoveItem(ctx context.Context, userID, lineID uuid.UUID) error
	GetCart(ctx context.Context, userID uuid.UUID) (*models.CartResponse, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	cartRepo    *repository.CartRepository
	productRepo *repository.ProductRepository
}

func NewCartService(cartRepo *repository.CartRepository, productRepo *repository.ProductRepository) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo}
}

// AddItem checks the product is live and in stock before writing the line.
// The stock check here is advisory; the authoritative one happens at checkout.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.CartLine, error) {
	product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if !product.IsActive {
		return nil, appErrors.BadRequestError("Product is not available")
	}

	if product.Stock < req.Quantity {
		return nil, appErrors.InsufficientStockError(product.Name)
	}

	line := &models.CartLine{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
	}

	if err := s.cartRepo.AddItem(ctx, line); err != nil {
		return nil, appErrors.DatabaseError("Failed to add item to cart").WithError(err)
	}

	line.ProductName = product.Name
	line.Price = product.Price
	line.DiscountPrice = product.DiscountPrice
	line.FinalPrice = product.FinalPrice()

	if len(product.Images) > 0 {
		line.ProductImage = &product.Images[0]
	}

	return line, nil
}

func (s *cartService) UpdateItem(ctx context.Context, userID, lineID uuid.UUID, req *models.UpdateCartItemRequest) error {
	if err := s.cartRepo.UpdateQuantity(ctx, userID, lineID, req.Quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFoundError("Cart item not found")
		}

		return appErrors.DatabaseError("Failed to update cart item").WithError(err)
	}

	return nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, lineID uuid.UUID) error {
	if err := s.cartRepo.RemoveItem(ctx, userID, lineID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFoundError("Cart item not found")
		}

		return appErrors.DatabaseError("Failed to remove cart item").WithError(err)
	}

	return nil
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.CartResponse, error) {
	lines, err := s.cartRepo.ListWithProducts(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	// Deactivated products stay visible in the cart but contribute nothing to
	// the subtotal; checkout drops them entirely.
	var subtotal float64

	for _, line := range lines {
		if line.IsActive {
			subtotal += line.FinalPrice * float64(line.Quantity)
		}
	}

	return &models.CartResponse{
		Items:    lines,
		Subtotal: subtotal,
	}, nil
}

func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartRepo.DeleteAllForUser(ctx, userID); err != nil {
		return appErrors.DatabaseError("Failed to clear cart").WithError(err)
	}

	return nil
}
