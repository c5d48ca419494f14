package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"district-growth/cmd/internal/logger"
	"district-growth/cmd/web/router"
	"district-growth/cmd/web/session"
	"district-growth/config"
)

// @title           District Growth Web
// @version         1.0
// @description     Server-rendered frontend of the district professional directory
// @BasePath        /
func main() {
	if err := config.InitApp(); err != nil {
		logger.InitFromEnv("LOG_LEVEL", "info")
		logger.Log.Errorf("failed to load config: %v", err)
		os.Exit(1)
	}
	cfg := config.GetConfig()
	logger.Init(logger.Options{Level: cfg.Logging.Level, Service: cfg.Logging.Service})
	gin.SetMode(cfg.Server.Mode)

	store := session.NewStore(cfg.Session.MaxVisitors)
	defer store.Close()

	r, err := router.New(cfg, store)
	if err != nil {
		logger.Log.Errorf("failed to build router: %v", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.InfoWithFields("starting web frontend", logger.Fields{
			"addr":      cfg.Server.Addr,
			"directory": cfg.Directory.BaseURL,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Errorf("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down web frontend...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("graceful shutdown failed: %v", err)
	}
}
