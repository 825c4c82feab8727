package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/itemvault/internal/events"
	"github.com/yourorg/itemvault/internal/featureflags"
	"github.com/yourorg/itemvault/internal/handler"
	"github.com/yourorg/itemvault/internal/infrastructure/logger"
	"github.com/yourorg/itemvault/internal/infrastructure/redis"
	"github.com/yourorg/itemvault/internal/observability/metrics"
	"github.com/yourorg/itemvault/internal/observability/tracing"
	"github.com/yourorg/itemvault/internal/repository"
	"github.com/yourorg/itemvault/internal/security/audit"
	"github.com/yourorg/itemvault/internal/security/auth"
	"github.com/yourorg/itemvault/internal/security/middleware"
	"github.com/yourorg/itemvault/internal/security/ratelimit"
	"github.com/yourorg/itemvault/internal/service"
	"github.com/yourorg/itemvault/internal/worker"
	"github.com/yourorg/itemvault/pkg/cache"
	"github.com/yourorg/itemvault/pkg/config"
	"github.com/yourorg/itemvault/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting ItemVault server", slog.String("environment", cfg.Environment))

	if cfg.UsingDevSecret() {
		log.Warn("JWT_SECRET not set, using development placeholder key; unsafe for production")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, tracing.Config{
		ServiceName: "itemvault",
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Connect to Postgres and apply the schema
	pool, err := database.NewConnectionPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		log.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Optional Redis cache; fall back to in-memory when unconfigured
	var listCache service.Cache
	var cachePurger worker.Purger
	var redisPinger handler.Pinger
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL, log)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		listCache = redisClient
		redisPinger = redisClient
		log.Info("using redis list cache")
	} else {
		memCache := cache.New()
		listCache = memCache
		cachePurger = memCache
		log.Info("REDIS_URL not set, using in-memory list cache")
	}

	// 6. Repositories
	userRepo := repository.NewPostgresUserRepository(pool.GetDB(), log)
	itemRepo := repository.NewPostgresItemRepository(pool.GetDB(), log)

	// 7. Security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "itemvault", cfg.TokenTTL)
	hasher := auth.NewPasswordHasher()
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	auditLogger := audit.NewLogger(log)

	// 8. Services
	bus := events.NewBus()
	authService := service.NewAuthService(userRepo, hasher, tokenManager, log)
	itemService := service.NewItemService(itemRepo, listCache, cfg.CacheTTL, bus, log)

	// 9. Handlers
	authHandler := handler.NewAuthHandler(authService, auditLogger, log)
	itemHandler := handler.NewItemHandler(itemService, auditLogger, log)
	healthHandler := handler.NewHealthHandler(pool, redisPinger, log)

	// 10. Routes
	requireAuth := middleware.RequireAuth(tokenManager, log)
	limitUser := middleware.RateLimitByUser(rateLimiter, log)
	limitCredentials := middleware.RateLimitCredentials(rateLimiter, 10, time.Minute, log)
	authed := func(h http.HandlerFunc) http.Handler {
		return requireAuth(limitUser(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /db-ping", healthHandler.DBPing)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	if featureflags.Enabled("closed_registration") {
		log.Info("registration disabled by feature flag")
	} else {
		mux.Handle("POST /register", limitCredentials(http.HandlerFunc(authHandler.Register)))
	}
	mux.Handle("POST /login", limitCredentials(http.HandlerFunc(authHandler.Login)))

	mux.Handle("POST /items", authed(itemHandler.Create))
	mux.Handle("GET /items", authed(itemHandler.List))
	mux.Handle("GET /items/{id}", authed(itemHandler.Get))
	mux.Handle("PUT /items/{id}", authed(itemHandler.Update))
	mux.Handle("DELETE /items/{id}", authed(itemHandler.Delete))

	if featureflags.Enabled("live_events") {
		eventsHandler := handler.NewEventsHandler(bus, cfg.CORSAllowedOrigins, log)
		mux.Handle("GET /ws/events", requireAuth(eventsHandler))
		log.Info("live event stream enabled")
	}

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> content validation -> CORS -> mux
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.ValidateJSONContentType(log)(handlerWithCORS),
		),
		log,
	)

	// 11. Start stats worker in background
	statsWorker := worker.NewStatsWorker(itemRepo, cachePurger, log, cfg.StatsInterval)
	go statsWorker.Start(ctx)

	// 12. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "itemvault"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Duration("token_ttl", cfg.TokenTTL),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop stats worker
	rateLimiter.Stop()
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
