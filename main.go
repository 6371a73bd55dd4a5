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
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"securemail/internal/config"
	"securemail/internal/database"
	"securemail/internal/handlers"
	"securemail/internal/middleware"
	"securemail/internal/repositories"
	"securemail/internal/security"
	"securemail/internal/services"
	"securemail/internal/sessions"
	"securemail/pkg/rabbitmq"
)

// application is the wired service with the resources it must release on shutdown.
type application struct {
	fiber       *fiber.App
	authService *services.AuthService
	mqClient    *rabbitmq.Client
	closers     []func() error
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer app.close(zapLogger)

	// --- Message event consumer ---
	if app.mqClient != nil {
		if err := app.mqClient.ConsumeMessageEvents(logMessageEvent(zapLogger)); err != nil {
			zapLogger.Error("failed to start RabbitMQ consumer", zap.Error(err))
		}
	}

	// --- Start HTTP Server ---
	zapLogger.Info("starting server", zap.String("addr", cfg.AppPort), zap.String("authMode", cfg.AuthMode))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.fiber.Listen(cfg.AppPort); err != nil {
			zapLogger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("shutting down server")

	if err := app.fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
		zapLogger.Error("error during Fiber shutdown", zap.Error(err))
	}
	zapLogger.Info("server gracefully stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = atomicLevel
	return zapConfig.Build()
}

// newApplication wires repositories, sessions, services and routes according to cfg.
func newApplication(ctx context.Context, cfg config.Config, zapLogger *zap.Logger) (*application, error) {
	app := &application{}

	userRepo, messageRepo, err := app.openRepositories(ctx, cfg, zapLogger)
	if err != nil {
		app.close(zapLogger)
		return nil, err
	}

	registry, err := app.openRegistry(ctx, cfg)
	if err != nil {
		app.close(zapLogger)
		return nil, err
	}

	// An untyped nil keeps publication disabled without a broker.
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, zapLogger)
		if err != nil {
			app.close(zapLogger)
			return nil, err
		}
		app.mqClient = mqClient
		app.closers = append(app.closers, mqClient.Close)
		publisher = mqClient
	}

	// --- Services ---
	authenticator := security.NewProviderManager(security.NewDirectoryProvider(userRepo))
	app.authService = services.NewAuthService(userRepo, authenticator, registry, services.AuthOptions{
		JWTSecret:        cfg.JWTSecret,
		TokenTTL:         cfg.TokenTTL,
		PasswordEncoding: cfg.PasswordEncoding,
	}, zapLogger)
	messageService := services.NewMessageService(userRepo, messageRepo, publisher, zapLogger)
	sessionService := services.NewSessionService(registry, zapLogger)

	// --- Authentication mode ---
	userContext := security.UserContextFunc(security.LiveUserContext)
	authMiddleware := middleware.AuthRequired(app.authService, zapLogger)
	if cfg.AuthMode == config.AuthModeStub {
		userContext = security.StubUserContextFunc
		authMiddleware = middleware.StubAuth()
	}

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(app.authService, zapLogger)
	messageHandler := handlers.NewMessageHandler(messageService, userContext, zapLogger)
	sessionHandler := handlers.NewSessionHandler(sessionService, zapLogger)
	defaultHandler := handlers.NewDefaultHandler(userContext)

	app.fiber = fiber.New(fiber.Config{
		AppName:               "securemail",
		DisableStartupMessage: true,
	})
	app.fiber.Use(logger.New())

	apiV1 := app.fiber.Group(handlers.APIPrefix)
	authHandler.RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", authMiddleware)
	authHandler.RegisterProtectedRoutes(protectedRoutes)
	defaultHandler.RegisterRoutes(protectedRoutes)
	messageHandler.RegisterRoutes(protectedRoutes)
	sessionHandler.RegisterRoutes(protectedRoutes, middleware.AdminRequired(userContext))

	// --- Health Check Endpoint ---
	app.fiber.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": cfg.DatabaseDriver,
			"sessions": cfg.SessionStore,
			"events":   app.mqClient != nil,
		})
	})

	return app, nil
}

func (a *application) openRepositories(ctx context.Context, cfg config.Config, zapLogger *zap.Logger) (repositories.UserRepository, repositories.MessageRepository, error) {
	if cfg.DatabaseDriver == config.DriverMemory {
		userRepo := repositories.NewMemoryUserRepository()
		messageRepo := repositories.NewMemoryMessageRepository(userRepo)
		if err := repositories.Seed(ctx, userRepo, messageRepo); err != nil {
			return nil, nil, err
		}
		return userRepo, messageRepo, nil
	}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	a.closers = append(a.closers, sqlDB.Close)

	if err := database.Migrate(ctx, db, cfg.DatabaseDriver, zapLogger); err != nil {
		return nil, nil, err
	}
	return repositories.NewGORMUserRepository(db), repositories.NewGORMMessageRepository(db), nil
}

func (a *application) openRegistry(ctx context.Context, cfg config.Config) (sessions.Registry, error) {
	if cfg.SessionStore != config.SessionStoreRedis {
		return sessions.NewMemoryRegistry(), nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	a.closers = append(a.closers, client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return sessions.NewRedisRegistry(client, cfg.TokenTTL), nil
}

// close releases resources in reverse order of acquisition.
func (a *application) close(zapLogger *zap.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			zapLogger.Warn("failed to release resource", zap.Error(err))
		}
	}
	a.closers = nil
}

// logMessageEvent logs every message.created delivery. Undecodable bodies are dropped.
func logMessageEvent(zapLogger *zap.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		event, err := rabbitmq.DecodeMessageCreated(msg.Body)
		if err != nil {
			zapLogger.Warn("dropping malformed message event", zap.Uint64("deliveryTag", msg.DeliveryTag), zap.Error(err))
			return nil
		}
		zapLogger.Info("message created",
			zap.Int64("messageID", event.MessageID),
			zap.Int64("senderID", event.SenderID),
			zap.Int64("recipientID", event.RecipientID),
		)
		return nil
	}
}
