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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/spendviz/internal/config"
	spendHttp "github.com/MrJamesThe3rd/spendviz/internal/http"
	"github.com/MrJamesThe3rd/spendviz/internal/http/dashboard"
	"github.com/MrJamesThe3rd/spendviz/internal/report"
	"github.com/MrJamesThe3rd/spendviz/internal/session"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var (
		store         = session.NewCache(cfg.Dataset.TTL)
		reportService = report.NewService(cfg.Report.TopProducts)
	)

	dashboardH, err := dashboard.NewHandler(store, reportService, dashboard.Options{
		AppName:               cfg.App.Name,
		MaxUploadBytes:        cfg.Upload.MaxBytes,
		UploadRatePerMinute:   cfg.Upload.RatePerMinute,
		DownloadRatePerMinute: cfg.Upload.DownloadRatePerMinute,
	})
	if err != nil {
		slog.Error("failed to create dashboard handler", "error", err)
		os.Exit(1)
	}

	router := spendHttp.New(spendHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Production:     cfg.Production(),
	}, dashboardH)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr, "env", cfg.App.Env)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
