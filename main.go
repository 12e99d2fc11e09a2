package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princinho/storefront/config"
	"github.com/princinho/storefront/controllers"
	"github.com/princinho/storefront/database"
	"github.com/princinho/storefront/middleware"
	"github.com/princinho/storefront/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	users, closeStore, err := openUserStore(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("open user store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	//seeding admin user
	if err := utils.SeedAdminUser(ctx, users, cfg.Admin, cfg.BcryptCost, logger); err != nil {
		logger.Error("seed admin", slog.Any("error", err))
		os.Exit(1)
	}

	objects, err := utils.NewObjectStore(ctx, cfg.Storage)
	if err != nil {
		logger.Error("open object storage", slog.Any("error", err))
		os.Exit(1)
	}
	if objects == nil {
		logger.Warn("STORAGE_DRIVER not set, avatar uploads disabled")
	}

	issuer := utils.NewTokenIssuer(cfg.Tokens)
	app := &controllers.App{
		Users:        users,
		Tokens:       issuer,
		Auth:         middleware.NewAuthenticator(users, issuer, logger),
		Cookies:      utils.NewCookiePolicy(cfg.Cookies),
		Resets:       utils.NewResetTokenManager(users, cfg.Reset, cfg.BcryptCost),
		Mailer:       utils.NewMailer(cfg.SMTP, logger),
		Avatars:      utils.NewAvatarUploader(objects, utils.NewImageValidator(cfg.Storage), logger),
		ResetURLBase: cfg.Reset.URLBase,
		BcryptCost:   cfg.BcryptCost,
		Logger:       logger,
	}

	if cfg.Cookies.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           controllers.NewRouter(app, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runServer(ctx, server, logger)
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelDebug
	if cfg.Cookies.Production {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func openUserStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (database.UserStore, func(), error) {
	switch cfg.Driver {
	case "mongo":
		client, err := database.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		store := database.NewMongoUserStore(database.OpenCollection(client, cfg.DatabaseName, database.UsersCollection))
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		logger.Info("connected to MongoDB", slog.String("database", cfg.DatabaseName))
		return store, func() { _ = client.Disconnect(context.Background()) }, nil

	case "postgres":
		db, err := database.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigratePostgres(db.DB); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("connected to PostgreSQL")
		return database.NewPostgresUserStore(db), func() { _ = db.Close() }, nil

	case "memory":
		logger.Warn("using in-memory user store, data is lost on restart")
		return database.NewMemoryUserStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Driver)
	}
}

func runServer(ctx context.Context, server *http.Server, logger *slog.Logger) {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
		}
		return
	case sig := <-signalChannel:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
	} else {
		logger.Info("server stopped")
	}
}
