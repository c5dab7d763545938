// Command pinoracle runs the external PIN verification oracle as its own
// process. The main server talks to it over HTTP; in production deployments
// this endpoint is a third-party service outside our control.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/arkanhendra/pinlogin/internal/config"
	"github.com/arkanhendra/pinlogin/internal/logger"
	authmw "github.com/arkanhendra/pinlogin/internal/middleware"
	"github.com/arkanhendra/pinlogin/internal/oracle"
)

// Version is set at build time
var Version = "dev"

func main() {
	cfg := config.Load()
	appLog := logger.New(logger.DefaultConfig())

	handler := oracle.NewHandler(oracle.Config{
		ValidPIN:      cfg.Oracle.ValidPIN,
		ResponseDelay: cfg.Oracle.ResponseDelay,
		Logger:        appLog,
	})

	limiter := authmw.NewRateLimiter(cfg.Oracle.RateMax, cfg.Oracle.RateWindow).
		WithMessage("Too many requests, please try again later")

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(authmw.StructuredLogger(appLog))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	oracle.RegisterRoutes(r, handler, limiter.Limit)

	addr := cfg.Oracle.Host + ":" + cfg.Oracle.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLog.Info("starting pin oracle", "addr", addr, "version", Version,
			"response_delay", cfg.Oracle.ResponseDelay.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Oracle server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down pin oracle")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Oracle server forced to shutdown: %v", err)
	}

	appLog.Info("pin oracle exited")
}
