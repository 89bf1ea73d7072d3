package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sareemart/storefront/internal/api/handlers"
	"github.com/sareemart/storefront/internal/api/middleware"
	"github.com/sareemart/storefront/internal/cache"
	"github.com/sareemart/storefront/internal/config"
	"github.com/sareemart/storefront/internal/health"
	"github.com/sareemart/storefront/internal/metrics"
	"github.com/sareemart/storefront/internal/pricing"
	repository "github.com/sareemart/storefront/internal/repositories"
	redisRepo "github.com/sareemart/storefront/internal/repositories/redis"
	service "github.com/sareemart/storefront/internal/services"
	"github.com/sareemart/storefront/internal/telemetry"
	"github.com/sareemart/storefront/pkg/email"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const migrationsDir = "./migrations"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	shutdownTracing, err := telemetry.Setup(context.Background(), &cfg.Otel)
	if err != nil {
		slog.Error("Failed to set up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}()

	if err := repos.RunMigrations(migrationsDir); err != nil {
		slog.Error("Error running migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	redisClient, err := redisRepo.NewClient(cfg)
	if err != nil {
		slog.Error("Error accessing the redis instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rateLimiter := redisRepo.NewRateLimitRepo(redisClient, cfg)
	cacheClient := cache.NewRedisCache(redisClient, &cfg.Cache)

	jwtKey := []byte(cfg.Security.JWTKey)
	txManager := repository.NewTxManager(repos.DB)
	calculator := pricing.NewCalculator(cfg.Checkout.FreeShippingThreshold, cfg.Checkout.FlatShippingFee)
	emailSender := email.NewSendGridSender(&cfg.SendGrid)

	userService := service.NewUserService(repos.User, rateLimiter, jwtKey, cfg.Security.JWTExpiryHours)
	productService := service.NewProductService(repos.Product, cacheClient)
	cartService := service.NewCartService(repos.Cart, repos.Product)
	wishlistService := service.NewWishlistService(repos.Wishlist, repos.Product)
	orderService := service.NewOrderService(txManager, repos.Order, calculator, emailSender, cfg.Checkout.DefaultCountry)
	adminService := service.NewAdminService(repos.Admin, repos.Order, repos.User, repos.Product,
		jwtKey, cfg.Security.JWTExpiryHours, cfg.Checkout.LowStockThreshold)

	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)
	orderHandler := handlers.NewOrderHandler(orderService)
	adminHandler := handlers.NewAdminHandler(adminService, productService)
	authMiddleware := middleware.NewAuthMiddleware(jwtKey)

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("Failed to create health handler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("Storage initialized", slog.String("env", cfg.Env))

	routerMux := http.NewServeMux()

	// Public storefront
	routerMux.HandleFunc("POST /api/v1/auth/register", userHandler.Register())
	routerMux.HandleFunc("POST /api/v1/auth/login", userHandler.Login())
	routerMux.HandleFunc("GET /api/v1/products", productHandler.ListProducts())
	routerMux.HandleFunc("GET /api/v1/products/new-arrivals", productHandler.NewArrivals())
	routerMux.HandleFunc("GET /api/v1/products/{id}", productHandler.GetProduct())

	// Authenticated customer routes
	routerMux.HandleFunc("GET /api/v1/users/profile", authMiddleware.Authenticate(userHandler.Profile()))
	routerMux.HandleFunc("GET /api/v1/cart", authMiddleware.Authenticate(cartHandler.GetCart()))
	routerMux.HandleFunc("POST /api/v1/cart/items", authMiddleware.Authenticate(cartHandler.AddItem()))
	routerMux.HandleFunc("PUT /api/v1/cart/items/{id}", authMiddleware.Authenticate(cartHandler.UpdateItem()))
	routerMux.HandleFunc("DELETE /api/v1/cart/items/{id}", authMiddleware.Authenticate(cartHandler.RemoveItem()))
	routerMux.HandleFunc("DELETE /api/v1/cart", authMiddleware.Authenticate(cartHandler.ClearCart()))
	routerMux.HandleFunc("POST /api/v1/wishlist/toggle", authMiddleware.Authenticate(wishlistHandler.Toggle()))
	routerMux.HandleFunc("GET /api/v1/wishlist", authMiddleware.Authenticate(wishlistHandler.List()))
	routerMux.HandleFunc("GET /api/v1/wishlist/count", authMiddleware.Authenticate(wishlistHandler.Count()))
	routerMux.HandleFunc("DELETE /api/v1/wishlist/{id}", authMiddleware.Authenticate(wishlistHandler.Remove()))
	routerMux.HandleFunc("POST /api/v1/orders", authMiddleware.Authenticate(orderHandler.PlaceOrder()))
	routerMux.HandleFunc("GET /api/v1/orders", authMiddleware.Authenticate(orderHandler.ListOrders()))
	routerMux.HandleFunc("GET /api/v1/orders/{id}", authMiddleware.Authenticate(orderHandler.GetOrder()))

	// Back-office
	routerMux.HandleFunc("POST /api/v1/admin/login", adminHandler.Login())
	routerMux.HandleFunc("GET /api/v1/admin/dashboard",
		authMiddleware.Authenticate(authMiddleware.RequireAdmin(adminHandler.Dashboard())))
	routerMux.HandleFunc("GET /api/v1/admin/orders",
		authMiddleware.Authenticate(authMiddleware.RequireAdmin(adminHandler.ListOrders())))
	routerMux.HandleFunc("GET /api/v1/admin/orders/{id}",
		authMiddleware.Authenticate(authMiddleware.RequireAdmin(adminHandler.GetOrder())))
	routerMux.HandleFunc("PATCH /api/v1/admin/orders/{id}/status",
		authMiddleware.Authenticate(authMiddleware.RequireAdmin(adminHandler.UpdateOrderStatus())))
	routerMux.HandleFunc("GET /api/v1/admin/users",
		authMiddleware.Authenticate(authMiddleware.RequireAdmin(adminHandler.ListUsers())))
	routerMux.HandleFunc("POST /api/v1/admin/products",
		authMiddleware.Authenticate(authMiddleware.RequireAdmin(adminHandler.CreateProduct())))
	routerMux.HandleFunc("PUT /api/v1/admin/products/{id}",
		authMiddleware.Authenticate(authMiddleware.RequireAdmin(adminHandler.UpdateProduct())))
	routerMux.HandleFunc("PATCH /api/v1/admin/products/{id}/toggle",
		authMiddleware.Authenticate(authMiddleware.RequireAdmin(adminHandler.ToggleProduct())))

	// Operational endpoints
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", healthHandler.Handler())

	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "storefront")

	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("Server is starting", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("Failed to start server", slog.String("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("Shutdown signal received. Preparing to stop the server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown encountered an issue", slog.String("error", err.Error()))
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("Tracer shutdown encountered an issue", slog.String("error", err.Error()))
	}

	slog.Info("Server shut down gracefully")
}
