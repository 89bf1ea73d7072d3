package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	appErrors "github.com/sareemart/storefront/internal/errors"
	"github.com/sareemart/storefront/internal/models"
	repository "github.com/sareemart/storefront/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

type AdminService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.AdminLoginResponse, error)
	ListOrders(ctx context.Context, page, size int) (*models.PaginatedResponse, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error)
	ListUsers(ctx context.Context, page, size int) (*models.PaginatedResponse, error)
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

type adminService struct {
	adminRepo         *repository.AdminRepository
	orderRepo         *repository.OrderRepository
	userRepo          *repository.UserRepository
	productRepo       *repository.ProductRepository
	jwtKey            []byte
	jwtExpiryHours    int
	lowStockThreshold int
}

func NewAdminService(
	adminRepo *repository.AdminRepository,
	orderRepo *repository.OrderRepository,
	userRepo *repository.UserRepository,
	productRepo *repository.ProductRepository,
	jwtKey []byte,
	jwtExpiryHours int,
	lowStockThreshold int,
) AdminService {
	return &adminService{
		adminRepo:         adminRepo,
		orderRepo:         orderRepo,
		userRepo:          userRepo,
		productRepo:       productRepo,
		jwtKey:            jwtKey,
		jwtExpiryHours:    jwtExpiryHours,
		lowStockThreshold: lowStockThreshold,
	}
}

func (s *adminService) Login(ctx context.Context, req *models.LoginRequest) (*models.AdminLoginResponse, error) {
	admin, err := s.adminRepo.GetAdminByEmail(ctx, req.Email)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)) != nil {
		return nil, appErrors.UnauthorizedError("Invalid email or password")
	}

	claims := &models.Claims{
		UserID: admin.ID,
		Email:  admin.Email,
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(s.jwtExpiryHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.jwtKey)
	if err != nil {
		return nil, appErrors.InternalError("Failed to generate authentication token").WithError(err)
	}

	return &models.AdminLoginResponse{
		Token: tokenString,
		Admin: admin,
	}, nil
}

func (s *adminService) ListOrders(ctx context.Context, page, size int) (*models.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}

	if size < 1 || size > 50 {
		size = 20
	}

	orders, total, err := s.orderRepo.ListAllOrders(ctx, page, size)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return &models.PaginatedResponse{
		Data:     orders,
		Total:    total,
		Page:     page,
		PageSize: size,
	}, nil
}

func (s *adminService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch order").WithError(err)
	}

	return order, nil
}

func (s *adminService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found")
		}

		return nil, appErrors.DatabaseError("Failed to update order status").WithError(err)
	}

	return s.orderRepo.GetOrderByID(ctx, orderID)
}

func (s *adminService) ListUsers(ctx context.Context, page, size int) (*models.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}

	if size < 1 || size > 100 {
		size = 20
	}

	users, total, err := s.userRepo.ListUsers(ctx, page, size)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch users").WithError(err)
	}

	return &models.PaginatedResponse{
		Data:     users,
		Total:    total,
		Page:     page,
		PageSize: size,
	}, nil
}

func (s *adminService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	totalOrders, err := s.orderRepo.CountOrders(ctx)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to compute dashboard stats").WithError(err)
	}

	totalUsers, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to compute dashboard stats").WithError(err)
	}

	totalProducts, err := s.productRepo.CountProducts(ctx)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to compute dashboard stats").WithError(err)
	}

	revenue, err := s.orderRepo.TotalRevenue(ctx)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to compute dashboard stats").WithError(err)
	}

	recent, err := s.orderRepo.ListRecentOrders(ctx, 5)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to compute dashboard stats").WithError(err)
	}

	lowStock, err := s.productRepo.ListLowStock(ctx, s.lowStockThreshold, 10)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to compute dashboard stats").WithError(err)
	}

	return &models.DashboardStats{
		TotalOrders:   totalOrders,
		TotalUsers:    totalUsers,
		TotalProducts: totalProducts,
		TotalRevenue:  revenue,
		RecentOrders:  recent,
		LowStock:      lowStock,
	}, nil
}
