package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/souqlane/stylesearch/internal/config"
	"github.com/souqlane/stylesearch/internal/db"
	dbRedis "github.com/souqlane/stylesearch/internal/db/redis"
	"github.com/souqlane/stylesearch/internal/domain"
	logpkg "github.com/souqlane/stylesearch/internal/logger"
	"github.com/souqlane/stylesearch/internal/metrics"
	"github.com/souqlane/stylesearch/internal/provider"
	catalogrepo "github.com/souqlane/stylesearch/internal/repository/catalog"
	jobsrepo "github.com/souqlane/stylesearch/internal/repository/jobs"
	settingsrepo "github.com/souqlane/stylesearch/internal/repository/settings"
	"github.com/souqlane/stylesearch/internal/transport/httpapi"
	healthuc "github.com/souqlane/stylesearch/internal/usecase/health"
	indexinguc "github.com/souqlane/stylesearch/internal/usecase/indexing"
	outfituc "github.com/souqlane/stylesearch/internal/usecase/outfit"
	searchuc "github.com/souqlane/stylesearch/internal/usecase/search"
	settingsuc "github.com/souqlane/stylesearch/internal/usecase/settings"
	spelluc "github.com/souqlane/stylesearch/internal/usecase/spell"
	"github.com/souqlane/stylesearch/internal/version"
)

func main() {
	// .env is optional; real deployments set variables directly
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting stylesearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	ctx := context.Background()

	// Catalog database
	pg, err := sql.Open("postgres", cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("Failed to open catalog database", zap.Error(err))
	}
	defer func() { _ = pg.Close() }()

	pg.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	pg.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	pg.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifeMin) * time.Minute)

	if err := waitForPostgres(ctx, pg, time.Duration(cfg.Postgres.ReadinessWaitSec)*time.Second); err != nil {
		logger.Fatal("Catalog database not ready", zap.Error(err))
	}
	logger.Info("Connected to catalog database")

	// Embedding cache — optional, search degrades to uncached embedding
	var store db.Store
	if len(cfg.Cache.Addrs) > 0 {
		redisStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer redisStore.Close()

		if err := redisStore.WaitForReady(ctx, time.Duration(cfg.Postgres.ReadinessWaitSec)*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		store = redisStore
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))
	} else {
		logger.Info("Embedding cache disabled")
	}

	// Register embedding metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()

	// Provider factory — resolves the runtime-configured provider per call
	factory := provider.NewFactory(cfg.Providers, logger).
		WithRetry(cfg.Indexing.MaxRetries, time.Duration(cfg.Indexing.RetryBaseMs)*time.Millisecond)
	if store != nil {
		factory.WithCache(store, time.Duration(cfg.Cache.TTLHours)*time.Hour)
	}

	// Repositories
	catalogRepo := catalogrepo.New(pg)
	jobsRepo := jobsrepo.New(pg)
	settingsRepo := settingsrepo.New(pg)

	// Use case services
	settingsSvc := settingsuc.New(settingsRepo, logger)
	if err := settingsSvc.Reload(ctx); err != nil {
		logger.Fatal("Failed to load system config", zap.Error(err))
	}

	searchSvc := searchuc.New(catalogRepo, settingsSvc, factory, logger)
	spellSvc := spelluc.New(settingsSvc)
	indexingSvc := indexinguc.New(catalogRepo, jobsRepo, settingsSvc, factory, indexinguc.Options{
		BatchSize:    cfg.Indexing.BatchSize,
		EmbedTimeout: time.Duration(cfg.Indexing.EmbedTimeoutSec) * time.Second,
	}, logger)
	outfitSvc := outfituc.New(catalogRepo, settingsSvc, func(apiKey string) (outfituc.Picker, error) {
		return factory.OutfitPicker(apiKey)
	}, logger)

	// Health service — cache pinger is nil when the cache is disabled
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(
		&sqlPinger{db: pg},
		cachePinger,
		&embeddingHealthChecker{factory: factory, settings: settingsSvc},
	)

	// HTTP server
	recorder := metrics.NewRecorder()
	defer recorder.Close()

	server := httpapi.NewServer(searchSvc, spellSvc, indexingSvc, outfitSvc, settingsSvc, healthSvc, recorder, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware(recorder))
	server.Routes(r, cfg.Auth.AdminKeys)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	// Let a running sweep finish writing its job record
	indexingSvc.Wait()

	logger.Info("Server stopped gracefully")
}

// waitForPostgres polls PingContext until the database responds or timeout
// expires.
func waitForPostgres(ctx context.Context, pg *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := pg.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for postgres: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// sqlPinger adapts *sql.DB to health.DBPinger.
type sqlPinger struct {
	db *sql.DB
}

func (p *sqlPinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// embeddingHealthChecker resolves the currently configured provider and runs
// its health check when it implements one.
type embeddingHealthChecker struct {
	factory  *provider.Factory
	settings *settingsuc.Service
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	p, err := h.factory.ResolveForConfig(h.settings.Current())
	if err != nil {
		return fmt.Errorf("resolve provider: %w", err)
	}
	if hc, ok := p.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
