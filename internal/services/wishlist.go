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

type WishlistService interface {
	Toggle(ctx context.Context, userID uuid.UUID, req *models.ToggleWishlistRequest) (*models.ToggleWishlistResponse, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error)
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

type wishlistService struct {
	wishlistRepo *repository.WishlistRepository
	productRepo  *repository.ProductRepository
}

func NewWishlistService(wishlistRepo *repository.WishlistRepository, productRepo *repository.ProductRepository) WishlistService {
	return &wishlistService{wishlistRepo: wishlistRepo, productRepo: productRepo}
}

// Toggle removes the product from the wishlist when present, adds it when not.
func (s *wishlistService) Toggle(ctx context.Context, userID uuid.UUID, req *models.ToggleWishlistRequest) (*models.ToggleWishlistResponse, error) {
	removed, err := s.wishlistRepo.Remove(ctx, userID, req.ProductID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to update wishlist").WithError(err)
	}

	if removed {
		count, err := s.wishlistRepo.Count(ctx, userID)
		if err != nil {
			return nil, appErrors.DatabaseError("Failed to update wishlist").WithError(err)
		}

		return &models.ToggleWishlistResponse{Added: false, Count: count}, nil
	}

	if _, err := s.productRepo.GetProductByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	item := &models.WishlistItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: req.ProductID,
	}

	if err := s.wishlistRepo.Add(ctx, item); err != nil {
		return nil, appErrors.DatabaseError("Failed to update wishlist").WithError(err)
	}

	count, err := s.wishlistRepo.Count(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to update wishlist").WithError(err)
	}

	return &models.ToggleWishlistResponse{Added: true, Count: count}, nil
}

// Remove deletes one entry by its wishlist id. Unlike Toggle it addresses the
// entry directly, so a miss is an error rather than an add.
func (s *wishlistService) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	removed, err := s.wishlistRepo.RemoveByID(ctx, userID, itemID)
	if err != nil {
		return appErrors.DatabaseError("Failed to update wishlist").WithError(err)
	}

	if !removed {
		return appErrors.NotFoundError("Wishlist item not found")
	}

	return nil
}

func (s *wishlistService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.wishlistRepo.Count(ctx, userID)
	if err != nil {
		return 0, appErrors.DatabaseError("Failed to count wishlist").WithError(err)
	}

	return count, nil
}

func (s *wishlistService) List(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	items, err := s.wishlistRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch wishlist").WithError(err)
	}

	return items, nil
}
