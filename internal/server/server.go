// Package server assembles the HTTP application from the repositories,
// services and handlers.
package server

import (
	"context"
	"time"

	"jammal/internal/cache"
	"jammal/internal/config"
	"jammal/internal/handlers"
	"jammal/internal/metrics"
	"jammal/internal/middleware"
	"jammal/internal/payment"
	"jammal/internal/repositories"
	"jammal/internal/services"
	"jammal/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// BodyLimit bounds request bodies, including multipart product images.
const BodyLimit = 20 * 1024 * 1024

// Options carries the optional collaborators. Nil Cache, Images, Gateway or
// Events fall back to no caching, inline images, demo checkout and no events.
type Options struct {
	Config    *config.Config
	Cache     cache.Cache
	Images    storage.ImageStore
	Gateway   services.ProcessorGateway
	Events    services.EventPublisher
	Logger    zerolog.Logger
	AccessLog bool
}

// New builds the Fiber application on db.
func New(db *gorm.DB, opts Options) *fiber.App {
	cfg := opts.Config
	log := opts.Logger

	// --- Repositories ---
	orderRepo := repositories.NewGORMOrderRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)

	// --- Services ---
	identity := services.NewIdentityService(cfg.Auth.JWTSecret, log)
	guard := services.NewAdminGuard(userRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, userRepo, opts.Gateway, opts.Events, services.OrderPolicy{
		EnforceTransitions: cfg.Orders.EnforceTransitions,
		VerifyTotal:        cfg.Orders.VerifyTotal,
	}, log)
	paymentService := services.NewPaymentService(payment.NewVerifier(cfg.Payment.KeySecret), orderRepo, opts.Events, log)
	productService := services.NewProductService(productRepo, categoryRepo, opts.Images, opts.Cache, log)
	categoryService := services.NewCategoryService(categoryRepo, opts.Cache, log)
	customerService := services.NewCustomerService(userRepo, productRepo, log)
	accountService := services.NewAccountService(userRepo, productRepo, cfg.Auth.AdminExternalIDs, log)
	reviewService := services.NewReviewService(reviewRepo, userRepo, productRepo, log)
	exportService := services.NewExportService(productRepo, categoryRepo, orderRepo, userRepo, reviewRepo, log)

	// --- Fiber app ---
	app := fiber.New(fiber.Config{
		AppName:   "jammal",
		BodyLimit: BodyLimit,
	})
	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(metrics.Middleware())

	app.Get("/health", healthHandler(db))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	guards := handlers.Guards{
		Required: middleware.AuthRequired(identity, log),
		Optional: middleware.OptionalAuth(identity, log),
		Admin:    middleware.RequireAdmin(guard),
	}

	// Group routes under /api/v1
	apiV1 := app.Group("/api/v1")
	handlers.NewOrderHandler(orderService, log).RegisterRoutes(apiV1, guards)
	handlers.NewPaymentHandler(paymentService, log).RegisterRoutes(apiV1)
	handlers.NewCatalogHandler(productService, categoryService, log).RegisterRoutes(apiV1)
	handlers.NewAccountHandler(accountService, reviewService, log).RegisterRoutes(apiV1, guards)
	handlers.NewAdminHandler(handlers.AdminServices{
		Orders:     orderService,
		Products:   productService,
		Categories: categoryService,
		Customers:  customerService,
		Export:     exportService,
	}, log).RegisterRoutes(apiV1, guards)

	return app
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, database := "healthy", "up"

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status, database = "degraded", "down"
		}

		code := fiber.StatusOK
		if database != "up" {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": database,
		})
	}
}
