package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricewise/app"
	"pricewise/config"
	"pricewise/handlers"
	"pricewise/logging"
	"pricewise/models"
	"pricewise/scheduler"

	"github.com/rs/cors"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if _, err := a.Importer.Bootstrap(ctx, cfg.Import.CSVPath); err != nil {
		slog.Error("bootstrap import failed", "path", cfg.Import.CSVPath, "error", err)
	}

	taskManager := scheduler.NewTaskManager(
		func(ctx context.Context, query string) (*models.Comparison, error) {
			return a.Comparisons.Compare(ctx, query)
		},
		scheduler.TaskManagerOptions{
			Workers:   cfg.Server.TaskWorkers,
			Retention: cfg.Server.TaskRetention,
		},
	)

	if cfg.Forecast.RefreshCron != "" {
		refresher, err := scheduler.NewForecastRefresher(cfg.Forecast.RefreshCron, cfg.Forecast.DefaultDaysAhead, a.Forecasts.RefreshAll)
		if err != nil {
			slog.Error("failed to schedule forecast refresh", "error", err)
			os.Exit(1)
		}
		refresher.Start()
		defer refresher.Stop()
	}

	h := handlers.NewHandlers(handlers.Deps{
		Comparisons:      a.Comparisons,
		Forecasts:        a.Forecasts,
		Products:         a.Catalogue,
		TaskManager:      taskManager,
		DefaultDaysAhead: cfg.Forecast.DefaultDaysAhead,
		RequestTimeout:   cfg.Server.RequestTimeout,
	})
	defer h.Close()

	r := handlers.NewRouter(h, cfg.Server.RateLimit)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting",
			"addr", srv.Addr,
			"database", cfg.Database.Driver,
			"sites", a.Aggregator.Sites(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
