package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sareemart/storefront/internal/api/middleware"
	"github.com/sareemart/storefront/internal/cache"
	appErrors "github.com/sareemart/storefront/internal/errors"
	"github.com/sareemart/storefront/internal/models"
	repository "github.com/sareemart/storefront/internal/repositories"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (bool, error)
	ListProducts(ctx context.Context, filter *models.ProductFilter) (*models.PaginatedResponse, error)
	ListNewArrivals(ctx context.Context, limit int) ([]models.Product, error)
}

type productService struct {
	repo      *repository.ProductRepository
	cache     cache.Cache
	sanitizer *bluemonday.Policy
}

func NewProductService(repo *repository.ProductRepository, cacheClient cache.Cache) ProductService {
	return &productService{
		repo:  repo,
		cache: cacheClient,
		// Admin-entered text is rendered on the storefront, so strip any
		// markup before it ever reaches the database.
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	if req.DiscountPrice != nil && *req.DiscountPrice >= req.Price {
		return nil, appErrors.ValidationError("Discount price must be lower than the list price")
	}

	product := &models.Product{
		ID:            uuid.New(),
		Name:          s.sanitizer.Sanitize(req.Name),
		Description:   s.sanitizer.Sanitize(req.Description),
		Category:      s.sanitizer.Sanitize(req.Category),
		Fabric:        s.sanitizer.Sanitize(req.Fabric),
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Images:        req.Images,
		Stock:         req.Stock,
		IsActive:      true,
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, appErrors.DatabaseError("Failed to create product").WithError(err)
	}

	s.invalidateListings(ctx)

	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	cacheKey := cache.Key(cache.ProductKeyPrefix, id.String())

	if s.cache != nil {
		var cached models.Product

		found, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			middleware.LoggerFromContext(ctx).Warn("Product cache lookup failed",
				slog.String("key", cacheKey), slog.String("error", err.Error()))
		} else if found {
			return &cached, nil
		}
	}

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, product, 0); err != nil {
			middleware.LoggerFromContext(ctx).Warn("Product cache write failed",
				slog.String("key", cacheKey), slog.String("error", err.Error()))
		}
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if req.Name != nil {
		product.Name = s.sanitizer.Sanitize(*req.Name)
	}

	if req.Description != nil {
		product.Description = s.sanitizer.Sanitize(*req.Description)
	}

	if req.Category != nil {
		product.Category = s.sanitizer.Sanitize(*req.Category)
	}

	if req.Fabric != nil {
		product.Fabric = s.sanitizer.Sanitize(*req.Fabric)
	}

	if req.Price != nil {
		product.Price = *req.Price
	}

	if req.DiscountPrice != nil {
		product.DiscountPrice = req.DiscountPrice
	}

	if req.Images != nil {
		product.Images = req.Images
	}

	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	if product.DiscountPrice != nil && *product.DiscountPrice >= product.Price {
		return nil, appErrors.ValidationError("Discount price must be lower than the list price")
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, appErrors.DatabaseError("Failed to update product").WithError(err)
	}

	s.invalidateProduct(ctx, id)

	return product, nil
}

func (s *productService) ToggleActive(ctx context.Context, id uuid.UUID) (bool, error) {
	active, err := s.repo.ToggleActive(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.NotFoundError("Product not found")
		}

		return false, appErrors.DatabaseError("Failed to toggle product status").WithError(err)
	}

	s.invalidateProduct(ctx, id)

	return active, nil
}

func (s *productService) ListProducts(ctx context.Context, filter *models.ProductFilter) (*models.PaginatedResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}

	if filter.PageSize < 1 || filter.PageSize > 50 {
		filter.PageSize = 12
	}

	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list products").WithError(err)
	}

	return &models.PaginatedResponse{
		Data:     products,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (s *productService) ListNewArrivals(ctx context.Context, limit int) ([]models.Product, error) {
	if limit < 1 || limit > 24 {
		limit = 8
	}

	products, err := s.repo.ListNewArrivals(ctx, limit)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list new arrivals").WithError(err)
	}

	return products, nil
}

func (s *productService) invalidateProduct(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, cache.Key(cache.ProductKeyPrefix, id.String())); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Product cache invalidation failed",
			slog.String("productId", id.String()), slog.String("error", err.Error()))
	}

	s.invalidateListings(ctx)
}

func (s *productService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, cache.NewArrivalsKey); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Listing cache invalidation failed",
			slog.String("error", err.Error()))
	}
}
