package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/mventory-backend/config"
	"github.com/ikkim/mventory-backend/internal/app/controller"
	"github.com/ikkim/mventory-backend/internal/app/repository"
	"github.com/ikkim/mventory-backend/internal/app/service"
	"github.com/ikkim/mventory-backend/internal/db"
	"github.com/ikkim/mventory-backend/internal/middleware"
	"github.com/ikkim/mventory-backend/internal/router"
	"github.com/ikkim/mventory-backend/internal/scheduler"
	"github.com/ikkim/mventory-backend/internal/storage"
	"github.com/ikkim/mventory-backend/pkg/logger"
	"github.com/ikkim/mventory-backend/pkg/mail"
	appredis "github.com/ikkim/mventory-backend/pkg/redis"
	"github.com/ikkim/mventory-backend/pkg/util"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting M-ventory Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database; the server cannot run without it
	conn, err := db.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(conn); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(conn); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Optional session denylist
	var denylist service.SessionDenylist
	if cfg.Redis.Enabled {
		client, err := appredis.Connect(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		defer client.Close()
		denylist = appredis.NewTokenDenylist(client)
	} else {
		logger.Info("Session denylist disabled, logout only clears the cookie")
	}

	// External collaborators
	mailer := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.Mail.SMTPHost,
		Port:     cfg.Mail.SMTPPort,
		Username: cfg.Mail.SMTPUsername,
		Password: cfg.Mail.SMTPPassword,
		From:     cfg.Mail.SupportEmail,
	})
	if mailer.DevMode() {
		logger.Warn("SMTP credentials missing, emails will only be logged")
	}

	var images service.ImageStorage
	if cfg.S3.Bucket != "" {
		images = storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
	} else {
		logger.Warn("AWS_S3_BUCKET not set, product image uploads will fail")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(conn)
	resetRepo := repository.NewPasswordResetRepository(conn)
	productRepo := repository.NewProductRepository(conn)

	// Initialize services
	sessionTokens := util.NewSessionTokens(cfg.JWT.Secret, cfg.JWT.SessionExpiry)
	authService := service.NewAuthService(userRepo, sessionTokens, denylist)
	passwordResetService := service.NewPasswordResetService(resetRepo, userRepo, mailer, service.PasswordResetOptions{
		TokenExpiry: cfg.PasswordReset.TokenExpiry,
		FrontendURL: cfg.Server.FrontendURL,
		From:        cfg.Mail.SupportEmail,
	})
	productService := service.NewProductService(productRepo, images, cfg.S3.Folder)
	contactService := service.NewContactService(mailer, cfg.Mail.SupportEmail)

	// Initialize controllers
	authController := controller.NewAuthController(authService, passwordResetService, controller.CookieConfig{
		Secure: cfg.Cookie.Secure,
		MaxAge: cfg.JWT.SessionExpiry,
	})
	productController := controller.NewProductController(productService)
	contactController := controller.NewContactController(contactService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		contactController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start reset token housekeeping
	resetScheduler := scheduler.NewResetTokenScheduler(passwordResetService, cfg.PasswordReset.PurgeSpec)
	if err := resetScheduler.Start(); err != nil {
		logger.Fatal("Failed to start reset token scheduler", err)
	}
	defer resetScheduler.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
