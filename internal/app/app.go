package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"estate_backend/database"
	"estate_backend/internal/auth"
	"estate_backend/internal/config"
	"estate_backend/internal/email"
	"estate_backend/internal/handlers"
	"estate_backend/internal/imageprocessor"
	"estate_backend/internal/logger"
	"estate_backend/internal/middleware"
	"estate_backend/internal/push"
	"estate_backend/internal/routes"
	"estate_backend/internal/services"
	"estate_backend/internal/storage"
	"estate_backend/internal/workers"
	"estate_backend/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Components - собранные зависимости приложения поверх одной БД
type Components struct {
	Services  *services.ServiceContainer
	WSManager *ws.WebSocketManager
	Auth      *middleware.AuthMiddleware

	closers []io.Closer
}

// Close освобождает внешние подключения (redis, mongo)
func (c *Components) Close() {
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			logger.Warn("Failed to close component", "error", err)
		}
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func Run() {
	cfg := config.LoadConfig()
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, !cfg.IsProduction())
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(gormDB); err != nil {
			logger.Fatal("Failed to migrate database", "error", err)
		}
	}

	components, err := NewComponents(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize components", "error", err)
	}
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedFirstAdmin(ctx, gormDB, cfg, components.Services.UserService); err != nil {
		// без администратора модерация невозможна
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	go components.WSManager.Run(ctx)

	worker := workers.NewOutboxWorker(gormDB, components.Services.OutboxRepository, components.Services.EventDispatcher, workers.OutboxConfig{
		PollInterval: cfg.OutboxPollInterval(),
		BatchSize:    cfg.Outbox.BatchSize,
		MaxAttempts:  cfg.Outbox.MaxAttempts,
		RetryDelay:   cfg.OutboxPollInterval(),
	})
	worker.Start(ctx)

	ginRouter := SetupRouter(cfg, gormDB, components)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(fmt.Sprintf("Server starting on %s", address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}

// NewComponents собирает хранилище, почту, push, blacklist и сервисы по конфигурации
func NewComponents(cfg *config.Config) (*Components, error) {
	c := &Components{WSManager: ws.NewWebSocketManager()}

	primary, err := NewStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	switch closer := primary.(type) {
	case io.Closer:
		c.closers = append(c.closers, closer)
	case interface{ Close(context.Context) error }:
		c.closers = append(c.closers, closerFunc(func() error { return closer.Close(context.Background()) }))
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	mailer, err := email.NewProvider(email.Config{
		Provider:      cfg.Email.Provider,
		SMTPHost:      cfg.Email.SMTPHost,
		SMTPPort:      cfg.Email.SMTPPort,
		SMTPUsername:  cfg.Email.SMTPUsername,
		SMTPPassword:  cfg.Email.SMTPPassword,
		MailjetKey:    cfg.Email.MailjetKey,
		MailjetSecret: cfg.Email.MailjetSecret,
		FromEmail:     cfg.Email.FromEmail,
		FromName:      cfg.Email.FromName,
		TemplatesDir:  cfg.Email.TemplatesDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email provider: %w", err)
	}
	logger.Info("Email provider initialized", "provider", cfg.Email.Provider)

	blacklist, err := newBlacklist(cfg)
	if err != nil {
		return nil, err
	}
	if closer, ok := blacklist.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}

	sender, err := newPushSender(cfg)
	if err != nil {
		return nil, err
	}

	c.Services = services.NewServiceContainer(services.Dependencies{
		Resolver:       storage.NewResolver(primary, cfg.Storage.PublicDir, cfg.Storage.PublicURL),
		Processor:      imageprocessor.NewProcessor(cfg.Upload.ImageQuality, cfg.Upload.MaxSize, cfg.Upload.AllowedTypes),
		Thumbnails:     cfg.Upload.Thumbnails,
		Tokens:         auth.NewTokenManager(cfg.JWT.Secret, cfg.TokenTTL()),
		Blacklist:      blacklist,
		Mailer:         mailer,
		PushSender:     sender,
		VAPIDPublicKey: cfg.Push.VAPIDPublicKey,
		Realtime:       c.WSManager,
		FrontendURL:    cfg.Email.FrontendURL,
	})
	c.Auth = middleware.NewAuthMiddleware(c.Services.AuthService, cfg.Auth.CookieName)
	return c, nil
}

// NewStorage создает основное хранилище файлов
func NewStorage(cfg *config.Config) (storage.Storage, error) {
	return storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		UseSSL:     cfg.Storage.UseSSL,
		PublicRead: cfg.Storage.PublicRead,
		CloudName:  cfg.Storage.CloudName,
		MongoURI:   cfg.Storage.MongoURI,
		MongoDB:    cfg.Storage.MongoDatabase,
	})
}

func newBlacklist(cfg *config.Config) (auth.Blacklist, error) {
	switch cfg.Auth.BlacklistStore {
	case "", "memory":
		return auth.NewMemoryBlacklist(), nil
	case "redis":
		blacklist, err := auth.NewRedisBlacklist(cfg.Auth.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect token blacklist to redis: %w", err)
		}
		return blacklist, nil
	default:
		return nil, fmt.Errorf("unsupported blacklist store: %s", cfg.Auth.BlacklistStore)
	}
}

// newPushSender возвращает nil, если не настроен ни web push, ни Expo
func newPushSender(cfg *config.Config) (push.Sender, error) {
	var web, mobile push.Sender

	if cfg.Push.VAPIDPublicKey != "" && cfg.Push.VAPIDPrivateKey != "" {
		sender, err := push.NewWebPushSender(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey, cfg.Push.Subscriber, cfg.Push.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize web push: %w", err)
		}
		web = sender
	} else {
		logger.Warn("VAPID keys are not configured, web push disabled")
	}

	if cfg.Push.ExpoEnabled {
		mobile = push.NewExpoSender(nil)
	}

	if web == nil && mobile == nil {
		return nil, nil
	}
	return push.NewKindRouter(web, mobile), nil
}

// SetupRouter собирает gin с middleware и всеми маршрутами
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, c *Components) *gin.Engine {
	appHandlers := handlers.NewAppHandlers(c.Services, c.Auth, handlers.Options{
		MaxUploadSize: cfg.Upload.MaxSize,
		Cookie: handlers.CookieSettings{
			Name:   cfg.Auth.CookieName,
			Domain: cfg.Auth.CookieDomain,
			Secure: cfg.Auth.CookieSecure,
		},
		AuthLimiter: middleware.NewRateLimiter(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst),
	})

	wsHandler := ws.NewWebSocketHandler(c.WSManager, cfg.Server.CORSOrigins)

	ginRouter := initializeGinRouter(cfg, gormDB)

	storageRoute := routes.StorageRoute{Prefix: cfg.Storage.BaseURL}
	if cfg.Storage.Type == "" || cfg.Storage.Type == "local" {
		storageRoute.LocalDir = cfg.Storage.BasePath
	}
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler, c.Auth, storageRoute)

	return ginRouter
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = cfg.Upload.MaxSize * 4
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	router.Use(middleware.DBMiddleware(db))
	return router
}

func seedFirstAdmin(ctx context.Context, db *gorm.DB, cfg *config.Config, userService services.UserService) error {
	if cfg.FirstAdminEmail == "" || cfg.FirstAdminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	created, err := userService.SeedAdmin(ctx, db, cfg.FirstAdminEmail, cfg.FirstAdminPassword)
	if err != nil {
		return err
	}
	if created {
		logger.Info("Successfully created first admin user", "email", cfg.FirstAdminEmail)
	} else {
		logger.Info("Admin user already exists. Skipping creation.", "email", cfg.FirstAdminEmail)
	}
	return nil
}
