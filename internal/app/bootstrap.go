package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"numgate/internal/auth"
	"numgate/internal/numbers"
	"numgate/internal/observability"
)

type Options struct {
	LoadDotEnv bool
	// EnvFile defaults to .env when LoadDotEnv is set.
	EnvFile string
}

type Runtime struct {
	Handler http.Handler
	Logger  *observability.Logger
	Config  Config
	Close   func() error
}

// Build loads configuration from the environment and wires the runtime.
func Build(options Options) (*Runtime, error) {
	if options.LoadDotEnv {
		if options.EnvFile != "" {
			_ = godotenv.Load(options.EnvFile)
		} else {
			_ = godotenv.Load()
		}
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	return New(cfg)
}

func New(cfg Config) (*Runtime, error) {
	return newRuntime(cfg, observability.NewLogger(cfg.LogLevel))
}

func newRuntime(cfg Config, logger *observability.Logger) (*Runtime, error) {
	metrics := observability.NewMetrics()

	if err := observability.InitSentry(cfg.SentryDSN, cfg.Environment); err != nil {
		logger.Error("init_sentry_failed", map[string]any{"error": err.Error()})
	}

	store, err := auth.NewStore(auth.NewBcryptHasher(cfg.BcryptCost))
	if err != nil {
		return nil, fmt.Errorf("init credential store: %w", err)
	}
	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret), auth.WithTTL(cfg.AccessTokenTTL))
	if err != nil {
		return nil, fmt.Errorf("init token service: %w", err)
	}

	authService := auth.NewService(store, tokens)
	if err := authService.BootstrapFromEnv(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}
	authLogger := logger.With(map[string]any{"component": "auth"})
	authHandler := auth.NewHandler(authService, authLogger, metrics)

	gate := auth.NewGate(tokens)
	gate.OnReject(func(r *http.Request, err error) {
		reason := "invalid_token"
		if errors.Is(err, auth.ErrMissingToken) {
			reason = "missing_token"
		}
		metrics.ObserveRejection(reason)
		authLogger.Warn("auth_rejected", map[string]any{
			"request_id": observability.RequestIDFromContext(r.Context()),
			"path":       r.URL.Path,
			"reason":     reason,
			"cause":      err.Error(),
		})
	})

	numbersHandler := numbers.NewHandler()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", authHandler.Register)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("GET /health", healthHandler)
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}
	mux.Handle("POST /bubble-sort", gate.Require(numbersHandler.Sort))
	mux.Handle("POST /sort", gate.Require(numbersHandler.Sort))
	mux.Handle("POST /filter-even", gate.Require(numbersHandler.FilterEven))
	mux.Handle("POST /sum-elements", gate.Require(numbersHandler.Sum))
	mux.Handle("POST /max-value", gate.Require(numbersHandler.Max))
	mux.Handle("POST /binary-search", gate.Require(numbersHandler.BinarySearch))

	handler := observability.RequestIDMiddleware(
		observability.RecoverMiddleware(logger,
			observability.RequestLoggingMiddleware(logger, metrics, mux)))

	return &Runtime{
		Handler: handler,
		Logger:  logger,
		Config:  cfg,
		Close: func() error {
			observability.FlushSentry()
			return nil
		},
	}, nil
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
