package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/riftslide/backend/internal/config"
	"github.com/riftslide/backend/internal/httpapi"
	"github.com/riftslide/backend/internal/hub"
	"github.com/riftslide/backend/internal/logger"
	"github.com/riftslide/backend/internal/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := logger.Init(cfg.Log.Development); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New("riftslide")
	h := hub.NewHub(ctx, m)

	api := &http.Server{
		Addr:    cfg.Server.HTTPAddress,
		Handler: httpapi.SetupRoutes(h, m),
	}
	scrape := &http.Server{
		Addr:    cfg.Server.MetricsAddress,
		Handler: metrics.Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log.Infow("listening", "addr", cfg.Server.HTTPAddress)
		if err := api.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Log.Infow("metrics listening", "addr", cfg.Server.MetricsAddress)
		if err := scrape.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		h.Send(hub.ShutdownHub{})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = scrape.Shutdown(shutdownCtx)
		return api.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Log.Fatalw("server exited", "err", err)
	}
	logger.Log.Infow("shutdown complete")
}
