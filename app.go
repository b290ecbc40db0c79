package main

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"farmdirect/internal/config"
	"farmdirect/internal/handlers"
	"farmdirect/internal/middleware"
	"farmdirect/internal/pricing"
	"farmdirect/internal/repositories"
	"farmdirect/internal/services"
	"farmdirect/internal/validation"
	"farmdirect/pkg/rabbitmq"
)

type application struct {
	app    *fiber.App
	store  *repositories.Store
	mq     *rabbitmq.Client
	logger *zap.Logger
}

// openStore opens the backend selected by cfg.StorageDriver.
func openStore(cfg *config.Config, logger *zap.Logger) (*repositories.Store, error) {
	var dialector gorm.Dialector
	switch cfg.StorageDriver {
	case config.DriverJSON:
		logger.Info("using json storage", zap.String("dir", cfg.DataDir))
		return repositories.NewJSONStore(afero.NewOsFs(), cfg.DataDir)
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", cfg.StorageDriver)
	}
	if err := repositories.Migrate(db); err != nil {
		return nil, err
	}
	logger.Info("using relational storage", zap.String("driver", cfg.StorageDriver))
	return repositories.NewGORMStore(db), nil
}

func newApplication(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*application, error) {
	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &application{store: store, logger: logger}

	policy, err := pricing.NewPolicy(cfg.DiscountTiers)
	if err != nil {
		return nil, multierr.Append(err, a.close())
	}
	calc, err := pricing.NewCalculator(policy, cfg.DeliveryFee, logger)
	if err != nil {
		return nil, multierr.Append(err, a.close())
	}

	// A typed nil *rabbitmq.Client must never reach the service.
	var publisher services.Publisher
	if cfg.RabbitMQEnabled {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.RabbitMQExchange,
			Queue:    cfg.RabbitMQQueue,
		}, logger)
		if err != nil {
			return nil, multierr.Append(err, a.close())
		}
		a.mq = mq
		publisher = mq
		if err := mq.ConsumeOrderEvents(rabbitmq.LoggingHandler(logger.Named("order-events"))); err != nil {
			logger.Warn("order event consumer not started", zap.Error(err))
		}
	}

	validate := validation.New()
	productService := services.NewProductService(store.Products, logger)
	if cfg.SeedProducts {
		n, err := productService.SeedProducts(ctx, defaultProducts())
		if err != nil {
			return nil, multierr.Append(err, a.close())
		}
		if n > 0 {
			logger.Info("seeded product catalog", zap.Int("products", n))
		}
	}

	orderService := services.NewOrderService(store.Orders, store.Products, calc, publisher, logger,
		services.WithCatalogVerification(cfg.VerifyPrices),
		services.WithValidator(validate))

	a.app = newFiberApp(logger,
		handlers.NewAuthHandler(services.NewAuthService(store.Users, validate, logger), logger),
		handlers.NewProductHandler(productService, logger),
		handlers.NewOrderHandler(orderService, logger),
		handlers.NewContactHandler(services.NewContactService(store.Contacts, validate, logger), logger),
		handlers.NewHealthHandler(store, logger),
	)
	return a, nil
}

type routeRegistrar interface {
	RegisterRoutes(router fiber.Router)
}

func newFiberApp(logger *zap.Logger, routes ...routeRegistrar) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Organic Farm Direct API",
		ErrorHandler: errorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(logger))
	app.Use(cors.New())

	app.Get("/", handleIndex)

	api := app.Group("/api")
	for _, r := range routes {
		r.RegisterRoutes(api)
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "API endpoint not found",
		})
	})
	return app
}

func handleIndex(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Organic Farm Direct API",
		"endpoints": fiber.Map{
			"signup":       "POST /api/signup",
			"login":        "POST /api/login",
			"products":     "GET /api/products",
			"orders":       "POST /api/orders (with address)",
			"orderHistory": "GET /api/orders/:phone",
			"orderStatus":  "PATCH /api/orders/:orderId/status",
			"contact":      "POST /api/contact",
			"contactsList": "GET /api/contacts",
			"health":       "GET /api/health",
		},
	})
}

// errorHandler renders errors that escape the handlers, including recovered
// panics, in the API's JSON shape.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Something went wrong, please try again"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}

// shutdown stops the HTTP server then releases the broker and the store.
func (a *application) shutdown(timeout time.Duration) error {
	var err error
	if a.app != nil {
		err = multierr.Append(err, a.app.ShutdownWithTimeout(timeout))
	}
	return multierr.Append(err, a.close())
}

func (a *application) close() error {
	var err error
	if a.mq != nil {
		err = multierr.Append(err, a.mq.Close())
	}
	if a.store != nil {
		err = multierr.Append(err, a.store.Close())
	}
	return err
}
