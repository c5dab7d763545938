package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arkanhendra/pinlogin/internal/audit"
	"github.com/arkanhendra/pinlogin/internal/auth"
	"github.com/arkanhendra/pinlogin/internal/config"
	"github.com/arkanhendra/pinlogin/internal/health"
	"github.com/arkanhendra/pinlogin/internal/logger"
	"github.com/arkanhendra/pinlogin/internal/metrics"
	authmw "github.com/arkanhendra/pinlogin/internal/middleware"
	"github.com/arkanhendra/pinlogin/internal/oracle"
	"github.com/arkanhendra/pinlogin/internal/pin"
	"github.com/arkanhendra/pinlogin/internal/repository"
	"github.com/arkanhendra/pinlogin/internal/sanitizer"
)

// Version is set at build time
var Version = "dev"

func main() {
	// Load configuration
	cfg := config.Load()

	// Validate required configuration
	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	appLog := logger.New(logger.DefaultConfig())

	// Setup database connections
	dbPool, err := setupDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	auditDB, err := sqlx.Connect("pgx", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect audit database handle: %v", err)
	}
	auditDB.SetMaxOpenConns(10)
	auditDB.SetMaxIdleConns(5)
	auditDB.SetConnMaxLifetime(5 * time.Minute)
	defer auditDB.Close()

	prometheus.MustRegister(metrics.NewDBStatsCollector(auditDB))

	// Initialize repositories
	userRepo := repository.NewUserRepository(dbPool)
	auditRepo := repository.NewAuditRepository(auditDB)

	// Initialize services
	recorder := audit.NewRecorder(auditRepo, appLog)
	hasher := auth.NewPasswordHasher(auth.DefaultBcryptCost)
	tokenService := auth.NewTokenService(auth.TokenServiceConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiry,
		Issuer: cfg.JWT.Issuer,
	})

	authService := auth.NewAuthService(
		userRepo,
		hasher,
		tokenService,
		recorder,
		sanitizer.NewNameSanitizer(),
		appLog,
	)

	verifier := pin.NewVerifier(pin.VerifierConfig{
		URL:     cfg.PinAPI.URL,
		Timeout: cfg.PinAPI.Timeout,
		Logger:  appLog,
	})
	pinService := pin.NewService(verifier, recorder, appLog)

	// Initialize handlers
	devMode := cfg.IsDevelopment()
	authHandler := auth.NewAuthHandler(authService, devMode)
	pinHandler := pin.NewHandler(pinService, devMode)
	healthHandler := health.NewHandler(health.Config{
		DBPool:    dbPool,
		OracleURL: cfg.PinAPI.HealthURL,
		Version:   Version,
	})

	// The in-process oracle lets the stack run without the standalone
	// pinoracle binary.
	oracleHandler := oracle.NewHandler(oracle.Config{
		ValidPIN:      cfg.Oracle.ValidPIN,
		ResponseDelay: cfg.Oracle.ResponseDelay,
		Logger:        appLog,
	})
	mockOracle := http.HandlerFunc(oracleHandler.VerifyPin)

	// Initialize middleware
	authMiddleware := authmw.NewAuthMiddleware(tokenService)
	loginLimiter := authmw.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(authmw.StructuredLogger(appLog))
	r.Use(metrics.Middleware)
	r.Use(chimw.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		auth.RegisterRoutes(r, authHandler, authMiddleware.Authenticate, loginLimiter.Limit)
		pin.RegisterRoutes(r, pinHandler, mockOracle, authMiddleware.Authenticate)
	})

	// Create server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info("starting server", "addr", addr, "env", cfg.Env, "version", Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	appLog.Info("server exited")
}

// setupDatabase creates and configures the database connection pool
func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Set pool configuration
	poolConfig.MaxConns = 50
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Connected to database %s on %s:%s", cfg.Database.DBName, cfg.Database.Host, cfg.Database.Port)
	return pool, nil
}
