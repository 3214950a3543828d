package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medication-reminders/internal/platform/config"
	"medication-reminders/internal/platform/logger"
	"medication-reminders/internal/router"
)

// @title Medication Reminders API
// @version 1.0
// @description Recordatorios de medicación: horarios diarios, timers locales y notificaciones push/email.
// @BasePath /
func main() {
	cfg, err := config.Load(".env", os.Args[1:])
	if err != nil {
		logger.NewFromEnv().Error("config error", map[string]any{"error": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := router.Build(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", map[string]any{"error": err})
		os.Exit(1)
	}

	// Recuperación: los timers no sobreviven al proceso, se rearman desde storage.
	app.Start(ctx)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      app.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", map[string]any{"error": err})
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", map[string]any{"error": err})
	}

	timers := app.Coordinator.Shutdown()
	if err := app.Close(); err != nil {
		log.Warn("close storage", map[string]any{"error": err})
	}
	log.Info("stopped", map[string]any{"timers_cancelled": timers})
}
