package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"unlockmart/internal/config"
	"unlockmart/internal/database"
	"unlockmart/internal/handler"
	"unlockmart/internal/service"
	"unlockmart/internal/worker"
)

func main() {
	cfg := config.New()
	setupLogger(cfg)

	db, err := database.NewDB(cfg.DatabaseDriver, cfg.DatabaseURI)
	if err != nil {
		slog.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer database.CloseDB(context.Background(), db)

	if err := database.InitSchema(db, cfg.DatabaseDriver); err != nil {
		slog.Error("failed to init DB schema", "error", err)
		os.Exit(1)
	}

	gateway, err := newPaymentGateway(cfg)
	if err != nil {
		slog.Error("failed to init payment gateway", "error", err)
		os.Exit(1)
	}

	// Worker
	notifyWorker := worker.NewNotificationWorker(newMailer(cfg), worker.WithTimeout(cfg.NotifyTimeout))

	// Services
	registry := service.NewOperatorRegistry(db)
	catalogSvc := service.NewCatalogService(db)
	ledger := service.NewLedger(db)
	orderSvc := service.NewOrderService(db, registry)
	svc := handler.Services{
		Auth:      service.NewAuthService(db),
		Catalog:   catalogSvc,
		Ledger:    ledger,
		Orders:    orderSvc,
		Placement: service.NewPlacementService(db, catalogSvc, ledger, orderSvc, service.NewDispatcher(notifyWorker)),
		Funding:   service.NewFundingService(db, ledger, gateway),
		Admin:     service.NewAdminService(db, registry),
	}

	srv := &http.Server{
		Addr: cfg.RunAddress,
		Handler: handler.NewRouter(svc, handler.RouterConfig{
			JWTSecret:   cfg.JWTSecret,
			UploadDir:   cfg.UploadDir,
			ErrorDetail: !cfg.Production(),
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go notifyWorker.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress, "driver", cfg.DatabaseDriver, "env", cfg.Env)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	slog.Info("shutting down...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	cancel() // stop worker after in-flight requests have enqueued
	notifyWorker.Wait()

	slog.Info("server stopped")
}

func setupLogger(cfg *config.Config) {
	var h slog.Handler
	if cfg.Production() {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(h))
}

func newMailer(cfg *config.Config) worker.Mailer {
	if cfg.SMTPHost == "" {
		slog.Warn("SMTP_HOST not set, notifications will only be logged")
		return service.LogMailer{}
	}
	return service.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
}

func newPaymentGateway(cfg *config.Config) (service.PaymentGateway, error) {
	if cfg.PaymentProvider == service.ProviderMercadoPago {
		return service.NewMercadoPagoGateway(cfg.MercadoPagoToken)
	}
	return service.SimulatedGateway{}, nil
}
