package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sareemart/storefront/internal/api/middleware"
	appErrors "github.com/sareemart/storefront/internal/errors"
	"github.com/sareemart/storefront/internal/metrics"
	"github.com/sareemart/storefront/internal/models"
	"github.com/sareemart/storefront/internal/pricing"
	repository "github.com/sareemart/storefront/internal/repositories"
	"github.com/sareemart/storefront/pkg/email"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error)
	ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	GetMyOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
}

type orderService struct {
	txManager      *repository.TxManager
	orderRepo      *repository.OrderRepository
	calculator     *pricing.Calculator
	emailSender    email.Sender
	defaultCountry string
}

func NewOrderService(txManager *repository.TxManager, orderRepo *repository.OrderRepository, calculator *pricing.Calculator, emailSender email.Sender, defaultCountry string) OrderService {
	return &orderService{
		txManager:      txManager,
		orderRepo:      orderRepo,
		calculator:     calculator,
		emailSender:    emailSender,
		defaultCountry: defaultCountry,
	}
}

// PlaceOrder turns the caller's cart into an order. Everything runs inside
// one transaction: load the purchasable cart, price it, write the header and
// the line snapshots, decrement stock per line, clear the cart. Any failure
// rolls the whole thing back, so stock and cart are untouched on error.
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error) {
	order, err := s.placeOrderOnce(ctx, userID, req)
	if errors.Is(err, repository.ErrOrderNumberConflict) {
		// Timestamp-based numbers can collide when two checkouts land on the
		// same millisecond. One retry with a fresh number settles it.
		order, err = s.placeOrderOnce(ctx, userID, req)
	}

	if err != nil {
		if appErr, ok := appErrors.IsAppError(err); ok {
			metrics.CheckoutFailures.WithLabelValues(appErr.Code).Inc()

			return nil, err
		}

		metrics.CheckoutFailures.WithLabelValues(appErrors.ErrCodeOrderCreationFailed).Inc()

		return nil, appErrors.OrderCreationFailedError(err)
	}

	metrics.OrdersCreated.Inc()

	s.sendConfirmation(ctx, order)

	return order, nil
}

func (s *orderService) placeOrderOnce(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error) {
	var orderID uuid.UUID

	err := s.txManager.WithinTx(ctx, func(r *repository.TxRepositories) error {
		lines, err := r.Cart.ListForCheckout(ctx, userID)
		if err != nil {
			return err
		}

		if len(lines) == 0 {
			return appErrors.EmptyCartError()
		}

		priceLines := make([]pricing.Line, 0, len(lines))
		for _, line := range lines {
			priceLines = append(priceLines, pricing.Line{
				FinalUnitPrice: line.FinalPrice,
				Quantity:       line.Quantity,
			})
		}

		quote := s.calculator.Compute(priceLines)

		country := req.Country
		if country == "" {
			country = s.defaultCountry
		}

		order := &models.Order{
			ID:            uuid.New(),
			UserID:        userID,
			OrderNumber:   generateOrderNumber(userID),
			Status:        models.OrderStatusPending,
			Subtotal:      quote.Subtotal,
			ShippingFee:   quote.ShippingFee,
			TotalAmount:   quote.TotalAmount,
			FirstName:     req.FirstName,
			LastName:      req.LastName,
			Email:         req.Email,
			Phone:         req.Phone,
			AddressLine1:  req.AddressLine1,
			AddressLine2:  req.AddressLine2,
			City:          req.City,
			State:         req.State,
			PostalCode:    req.PostalCode,
			Country:       country,
			PaymentMethod: req.PaymentMethod,
		}

		if err := r.Order.InsertOrder(ctx, order); err != nil {
			return err
		}

		for _, line := range lines {
			stock, err := r.Product.GetStockForUpdate(ctx, line.ProductID)
			if err != nil {
				return fmt.Errorf("failed to check stock for %s: %w", line.ProductName, err)
			}

			if stock < line.Quantity {
				return appErrors.InsufficientStockError(line.ProductName)
			}

			item := &models.OrderItem{
				ID:           uuid.New(),
				OrderID:      order.ID,
				ProductID:    line.ProductID,
				ProductName:  line.ProductName,
				ProductImage: line.ProductImage,
				UnitPrice:    line.FinalPrice,
				Quantity:     line.Quantity,
				Size:         line.Size,
				Color:        line.Color,
				Subtotal:     line.FinalPrice * float64(line.Quantity),
			}

			if err := r.Order.InsertOrderItem(ctx, item); err != nil {
				return err
			}

			if err := r.Product.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				if errors.Is(err, repository.ErrStockConflict) {
					return appErrors.InsufficientStockError(line.ProductName)
				}

				return err
			}
		}

		if err := r.Cart.DeleteAllForUser(ctx, userID); err != nil {
			return err
		}

		orderID = order.ID

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Read back after commit so the response carries DB-assigned timestamps.
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *orderService) sendConfirmation(ctx context.Context, order *models.Order) {
	if s.emailSender == nil {
		return
	}

	logger := middleware.LoggerFromContext(ctx)

	// Best effort: the order is committed, a failed email must not undo it.
	if err := s.emailSender.SendOrderConfirmation(ctx, order); err != nil {
		logger.Warn("Failed to send order confirmation email",
			slog.String("orderNumber", order.OrderNumber),
			slog.String("error", err.Error()))
	}
}

// generateOrderNumber builds ORD-<unix millis>-<user fragment>. Uniqueness is
// enforced by the database, not by this function.
func generateOrderNumber(userID uuid.UUID) string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), userID.String()[:8])
}

func (s *orderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders, err := s.orderRepo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, nil
}

func (s *orderService) GetMyOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch order").WithError(err)
	}

	// Owner check: an order is visible only to the account that placed it.
	if order.UserID != userID {
		return nil, appErrors.NotFoundError("Order not found")
	}

	return order, nil
}
