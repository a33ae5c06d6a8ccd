package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookingauth/internal/config"
	"bookingauth/internal/observability/logging"
	"bookingauth/internal/observability/metrics"
	"bookingauth/internal/service"
	impl "bookingauth/internal/service/impl"
	"bookingauth/internal/store"
	httpx "bookingauth/internal/transport/http"
	"bookingauth/pkg/db"
)

const serviceName = "auth"

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("dotenv", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)

	logger.Info("starting service")

	// 1) DB
	gdb, err := db.OpenGorm(db.Config{
		Driver: cfg.DBDriver,
		DSN:    cfg.DatabaseURL,
		LogSQL: cfg.LogSQL,
	})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	if cfg.AutoMigrate {
		if err := store.AutoMigrate(gdb); err != nil {
			logger.Error("automigrate", "error", err)
			os.Exit(1)
		}
	}
	st := store.New(gdb)

	metrics.MustRegister(serviceName)

	// 2) Services
	pw := impl.NewPasswordServiceArgon2id()

	ts := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     cfg.Issuer,
		Audience:   cfg.Audience,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
		SigningKey: []byte(cfg.SigningKey),
	}, st)

	var notifier service.NotificationService
	if cfg.SMTPHost != "" {
		notifier = impl.NewSMTPNotificationService(impl.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			AppURL:   cfg.AppURL,
			Timeout:  cfg.SMTPTimeout,
		})
	} else {
		logger.Warn("SMTP_HOST not set, notifications are logged instead of sent")
		notifier = &impl.LogNotificationService{AppURL: cfg.AppURL}
	}

	tokens := impl.NewTokenGenerator(st)
	sessions := impl.NewCredentialsSessionIssuer(st, pw, ts)
	as := impl.NewAuthServiceImpl(st, tokens, notifier, sessions, pw, ts)

	// 3) HTTP
	router := httpx.NewRouter(as, ts, httpx.Options{
		TrustProxy:     cfg.TrustProxy,
		AllowedOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("auth service listening", "addr", srv.Addr, "issuer", cfg.Issuer, "db_driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("stopped")
}
