package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/dining-concierge/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/dining-concierge/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/dining-concierge/internal/adapter/nlu"
	"github.com/seu-repo/dining-concierge/internal/adapter/queue"
	wsAdapter "github.com/seu-repo/dining-concierge/internal/adapter/websocket"
	"github.com/seu-repo/dining-concierge/internal/domain"
	"github.com/seu-repo/dining-concierge/internal/observability/telemetry"
	"github.com/seu-repo/dining-concierge/internal/service/chat"
	"github.com/seu-repo/dining-concierge/internal/service/dialog"
	"github.com/seu-repo/dining-concierge/internal/service/health"
	"github.com/seu-repo/dining-concierge/internal/service/order"
	"github.com/seu-repo/dining-concierge/pkg/config"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// 2. Initialize Logger
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	logger.Info("Starting Dining Concierge",
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("queue_driver", cfg.Queue.Driver),
	)

	// 3. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(
			cfg.OpenTelemetry.ServiceName,
			cfg.App.Version,
			cfg.OpenTelemetry.Jaeger.Endpoint,
			cfg.OpenTelemetry.Jaeger.SamplerParam,
		)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		if tracerProvider != nil {
			defer func() {
				if err := tracerProvider.Shutdown(context.Background()); err != nil {
					logger.Error("Error shutting down tracer provider", zap.Error(err))
				}
			}()
		}
	}

	// 4. Initialize Message Queue
	messageQueue, err := queue.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to message queue",
			zap.String("driver", cfg.Queue.Driver),
			zap.Error(err),
		)
	}
	defer messageQueue.Close()

	// 5. Initialize Services (Business Logic Layer)
	location, err := cfg.Region.Location()
	if err != nil {
		logger.Fatal("Invalid region", zap.Error(err))
	}

	submitter := order.NewSubmitter(messageQueue, cfg.Queue.OrdersQueue, logger)
	dialogManager := dialog.NewManager(submitter, location, logger)
	if cfg.Dialog.IntentName != dialog.DiningSuggestionsIntent {
		dialogManager.Register(cfg.Dialog.IntentName, dialogManager.DiningSuggestions)
	}

	nluClient := nlu.NewClient(cfg.NLU, cfg.CircuitBreaker, logger)
	chatService := chat.NewService(nluClient, cfg.NLU.BotName, cfg.NLU.BotAlias, logger)

	healthService := health.NewService(cfg.App.Version, logger)
	healthService.RegisterPinger("queue", messageQueue)

	// 6. Initialize WebSocket Hub (live order feed)
	orderFeed := wsAdapter.NewHub(logger)
	go orderFeed.Run()
	defer orderFeed.Stop()

	// 7. Start Background Workers
	if cfg.Queue.ConsumeOrders {
		consumer := order.NewConsumer(messageQueue, cfg.Queue.OrdersQueue, func(o domain.OrderRecord) error {
			return orderFeed.PublishOrder(o)
		}, logger)
		if err := consumer.Start(); err != nil {
			logger.Fatal("Failed to start order consumer", zap.Error(err))
		}
	}

	// 8. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ServerHeader:          cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.NewCORS(cfg.CORS))

	// Health Check Endpoints
	health.NewFiberHandler(healthService).RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	if cfg.Prometheus.Enabled {
		metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			metricsHandler(c.Context())
			return nil
		})
	}

	// API v1 Routes
	v1 := app.Group("/api/v1",
		middleware.RateLimit(cfg.RateLimiting),
		middleware.CircuitBreaker(cfg.CircuitBreaker, logger),
	)

	dialogHandler := handlers.NewDialogHandler(dialogManager, logger)
	v1.Post("/dialog/hook", dialogHandler.Hook)

	chatHandler := handlers.NewChatHandler(chatService, logger)
	v1.Post("/chat", chatHandler.Send)

	// WebSocket routes
	wsAdapter.SetupChatRoutes(app, wsAdapter.NewChatStreamHandler(chatService, logger))
	wsAdapter.SetupOrderFeedRoutes(app, orderFeed)

	// 9. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 10. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid logging.level %q: %w", cfg.Level, err)
		}
		zcfg.Level = level
	}

	return zcfg.Build()
}
