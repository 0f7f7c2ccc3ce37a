package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/uhyunpark/venueorder/params"
	"github.com/uhyunpark/venueorder/pkg/api"
	"github.com/uhyunpark/venueorder/pkg/app/intake"
	"github.com/uhyunpark/venueorder/pkg/metrics"
	"github.com/uhyunpark/venueorder/pkg/order"
	"github.com/uhyunpark/venueorder/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("")
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Log.File != "" {
		logger, err = util.NewLoggerWithFile(cfg.Log.File, cfg.Log.Level)
	} else {
		logger, err = util.NewLogger(cfg.Log.Level)
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.Log.File, "level", cfg.Log.Level)

	if cfg.Session.SesKey1 == "" || cfg.Session.SesKey2 == "" {
		sugar.Warn("session keys not configured - payloads will carry empty seskey1/seskey2")
	}

	app := intake.NewApp(intake.Config{
		Credentials: order.Credentials{SesKey1: cfg.Session.SesKey1, SesKey2: cfg.Session.SesKey2},
		Clock:       util.RealClock{},
		Logger:      sugar,
		Metrics:     metrics.New(),
	})

	server := api.NewServer(app, sugar, cfg.API.CORSOrigins)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.API.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	case <-ctx.Done():
		sugar.Info("shutdown_requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("api_server_shutdown_failed", "err", err)
		}
	}
}
