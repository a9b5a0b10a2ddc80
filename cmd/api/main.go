package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"

	"fleetopt/internal/api"
	"fleetopt/internal/buildinfo"
	"fleetopt/internal/config"
	"fleetopt/internal/logging"
	"fleetopt/internal/metrics"
)

func main() {
	envErr := godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	logging.Setup(cfg.LogLevel)
	if envErr != nil {
		slog.Debug("no .env file found, using environment variables")
	}
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	metrics.RegisterDefault()

	srvDeps, err := api.NewServer(cfg)
	if err != nil {
		slog.Error("failed to init server", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srvDeps.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start webhook worker
	worker := srvDeps.NewWebhookWorker()
	worker.Start()

	go func() {
		slog.Info("API listening", "addr", srv.Addr, "version", buildinfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	close(worker.Stop)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("graceful shutdown", "err", err)
	}
	if c, ok := srvDeps.Store.(io.Closer); ok {
		_ = c.Close()
	}
}
