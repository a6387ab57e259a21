package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/noor-otp-service/internal/application/otp"
	"github.com/noor-otp-service/internal/config"
	"github.com/noor-otp-service/internal/infrastructure/dynamo"
	"github.com/noor-otp-service/internal/infrastructure/memstore"
	"github.com/noor-otp-service/internal/infrastructure/smtp"
	transporthttp "github.com/noor-otp-service/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()

	// OTP record store. The in-memory map is the single-instance reference
	// backend; the DynamoDB backend is for deployments with more than one
	// server process.
	var store otp.Store
	switch cfg.StoreBackend {
	case config.StoreDynamo:
		store = dynamo.NewOTPRepo(dynamo.NewClient(cfg), cfg.DynamoTableOTP)
		slog.Info("using DynamoDB OTP store", "table", cfg.DynamoTableOTP)
	default:
		store = memstore.New()
		slog.Info("using in-memory OTP store")
	}

	mailer := smtp.NewMailer(cfg)

	// Expired-record reaper; the read path also checks expiry, this only
	// bounds memory.
	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	go otp.NewReaper(store, cfg.SweepInterval).Run(reaperCtx)

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		Store:  store,
		Mailer: mailer,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("OTP service starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	stopReaper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
