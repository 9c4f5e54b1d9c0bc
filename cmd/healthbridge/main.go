package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/medwayhorizons/healthbridge/internal/config"
	dbRedis "github.com/medwayhorizons/healthbridge/internal/db/redis"
	logpkg "github.com/medwayhorizons/healthbridge/internal/logger"
	"github.com/medwayhorizons/healthbridge/internal/metrics"
	"github.com/medwayhorizons/healthbridge/internal/repository/record"
	"github.com/medwayhorizons/healthbridge/internal/sanitize"
	chiTransport "github.com/medwayhorizons/healthbridge/internal/transport/chi"
	kafkaTransport "github.com/medwayhorizons/healthbridge/internal/transport/kafka"
	adminuc "github.com/medwayhorizons/healthbridge/internal/usecase/admin"
	cataloguc "github.com/medwayhorizons/healthbridge/internal/usecase/catalog"
	healthuc "github.com/medwayhorizons/healthbridge/internal/usecase/health"
	inquiryuc "github.com/medwayhorizons/healthbridge/internal/usecase/inquiry"
	"github.com/medwayhorizons/healthbridge/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting healthbridge API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Bool("leads_enabled", cfg.Leads.Enabled()),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register catalog metrics explicitly (no init())
	metrics.RegisterCatalogMetrics()

	repo := record.New(store, cfg.Storage.KeyPrefix)

	catalogSvc := cataloguc.New(repo, logger).
		WithNotifier(cataloguc.ContextNotifier{}).
		WithPageSizes(cfg.Catalog.InitialPageSize, cfg.Catalog.PageIncrement).
		WithSnapshotTTL(time.Duration(cfg.Catalog.SnapshotTTLSec) * time.Second).
		WithSuggestLimit(cfg.Catalog.SuggestLimit)
	adminSvc := adminuc.New(repo, sanitize.NewHTML(), logger).
		WithInvalidator(catalogSvc).
		WithMaxImportRows(cfg.Catalog.MaxImportRows)
	inquirySvc := inquiryuc.New(repo, logger)

	// Pass nil interface (not typed nil pointer) when leads are not configured.
	var leadsChecker healthuc.LeadsChecker
	if cfg.Leads.Enabled() {
		publisher, err := kafkaTransport.NewPublisher(&kafkaTransport.Config{
			Brokers:      cfg.Leads.KafkaBrokers,
			Topic:        cfg.Leads.Topic,
			WriteTimeout: time.Duration(cfg.Leads.WriteTimeoutSec) * time.Second,
			Logger:       logger,
		})
		if err != nil {
			logger.Fatal("Failed to create lead publisher", zap.Error(err))
		}
		defer func() { _ = publisher.Close() }()
		inquirySvc.WithPublisher(publisher)
		leadsChecker = publisher
		logger.Info("Lead publisher created",
			zap.Strings("brokers", cfg.Leads.KafkaBrokers),
			zap.String("topic", cfg.Leads.Topic),
		)
	}

	healthSvc := healthuc.New(store, leadsChecker)

	server := chiTransport.NewServer(catalogSvc, adminSvc, inquirySvc, healthSvc, logger).
		WithAPIKeys(cfg.Auth.APIKeys).
		WithMaxBodyBytes(int64(cfg.HTTP.MaxBodyBytes))

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "bad_request", "method not allowed")
	})
	server.Mount(r)

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

	logger.Info("Server stopped gracefully")
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					writeJSONError(w, http.StatusInternalServerError, "internal_error", "internal error")
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			}
			if notice := ww.Header().Get(chiTransport.NoticeHeader); notice != "" {
				fields = append(fields, zap.String("catalog_notice", notice))
			}
			reqLogger.Info("http_request", fields...)
		})
	}
}
