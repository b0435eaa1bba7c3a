package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/tripsettle/internal/auth"
	"github.com/mmynk/tripsettle/internal/cache"
	"github.com/mmynk/tripsettle/internal/config"
	"github.com/mmynk/tripsettle/internal/metrics"
	"github.com/mmynk/tripsettle/internal/middleware"
	"github.com/mmynk/tripsettle/internal/service"
	"github.com/mmynk/tripsettle/internal/storage/sqlite"
	"github.com/mmynk/tripsettle/pkg/api/apiconnect"
	"github.com/mmynk/tripsettle/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	balanceCache := connectCache(ctx, logger, cfg)
	defer balanceCache.Close()

	registry := metrics.NewRegistry()
	engineMetrics := metrics.New(registry)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	// Logging wraps auth so rejected tokens are logged too.
	common := []connect.Interceptor{
		engineMetrics.Interceptor(),
		middleware.LoggingInterceptor(logger),
	}

	mux := http.NewServeMux()

	tripSvc := service.NewTripService(store,
		service.WithCache(balanceCache),
		service.WithMetrics(engineMetrics),
		service.WithLogger(logger),
		service.WithDefaultCurrency(cfg.DefaultBaseCurrency),
	)
	mux.Handle(apiconnect.NewTripServiceHandler(tripSvc,
		connect.WithInterceptors(append(common, middleware.RequireAuth(jwtManager))...),
	))

	authSvc := service.NewAuthService(authenticator, store, jwtManager, logger)
	mux.Handle(apiconnect.NewAuthServiceHandler(authSvc,
		connect.WithInterceptors(append(common, middleware.OptionalAuth(jwtManager))...),
	))

	mux.Handle(apiconnect.NewHealthServiceHandler(service.NewHealthService(store)))
	mux.Handle("/metrics", metrics.Handler(registry))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(corsMiddleware(mux), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// connectCache returns nil, which disables caching, when Redis is not
// configured or not reachable.
func connectCache(ctx context.Context, logger *slog.Logger, cfg *config.Config) *cache.BalanceCache {
	if cfg.RedisURL == "" {
		logger.Info("Balance cache disabled", "reason", "REDIS_URL not set")
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	c, err := cache.Connect(pingCtx, cfg.RedisURL, cfg.BalanceCacheTTL)
	if err != nil {
		logger.Warn("Redis not available, running without cache", "error", err)
		return nil
	}
	logger.Info("Balance cache connected", "ttl", cfg.BalanceCacheTTL)
	return c
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
