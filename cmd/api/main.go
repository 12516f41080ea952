// Package main is the entrypoint for the cardiopredict API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/cardiopredict/cardiopredict/internal/auth"
	"github.com/cardiopredict/cardiopredict/internal/cache"
	"github.com/cardiopredict/cardiopredict/internal/config"
	"github.com/cardiopredict/cardiopredict/internal/handler"
	"github.com/cardiopredict/cardiopredict/internal/metrics"
	"github.com/cardiopredict/cardiopredict/internal/repository"
	"github.com/cardiopredict/cardiopredict/internal/scorer"
	"github.com/cardiopredict/cardiopredict/internal/server"
	"github.com/cardiopredict/cardiopredict/internal/service"
)

// startupTimeout bounds connecting, migrating and loading the model.
const startupTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// A missing or invalid artifact is fatal.
	pipeline, err := scorer.Load(ctx, cfg.Model.URI, scorer.ObjectStoreConfig{
		Endpoint:  cfg.Model.S3Endpoint,
		AccessKey: cfg.Model.S3AccessKey,
		SecretKey: cfg.Model.S3SecretKey,
		UseSSL:    cfg.Model.S3UseSSL,
	})
	if err != nil {
		return fmt.Errorf("load model artifact %q: %s", cfg.Model.URI, sanitizeError(err, cfg.Model.S3SecretKey))
	}
	logger.Info("model loaded", "uri", cfg.Model.URI, "kind", pipeline.Kind())

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database %s: %s", redactURL(cfg.DatabaseURL), sanitizeError(err, cfg.DatabaseURL))
	}
	logger.Info("connected to database")

	if err := repo.Migrate(ctx); err != nil {
		repo.Close()
		return fmt.Errorf("migrate database: %s", sanitizeError(err, cfg.DatabaseURL))
	}
	logger.Info("database schema up to date")

	// listCache and cacheHealth stay untyped nil when Redis is disabled, so
	// the service and readiness probe see a nil interface.
	var (
		listCache   service.PredictionCache
		cacheHealth handler.HealthChecker
		cacheClient *cache.Cache
	)
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			repo.Close()
			return fmt.Errorf("connect to Redis %s: %s", redactURL(cfg.RedisURL), sanitizeError(err, cfg.RedisURL))
		}
		listCache = cacheClient
		cacheHealth = cacheClient
		logger.Info("connected to Redis")
	} else {
		logger.Info("REDIS_URL not set, prediction list cache disabled")
	}

	recorder := metrics.NewInMemory()
	hasher := auth.NewArgon2Hasher(auth.DefaultParams)
	tokens := auth.NewJWT(cfg.JWTSecret, cfg.JWTTTL)

	authService := service.NewAuthService(repo, hasher, tokens, recorder, logger)
	predictionService := service.NewPredictionService(repo, pipeline, listCache, recorder, logger)
	userService := service.NewUserService(repo, hasher)

	router := server.NewRouter(server.RouterConfig{
		Logger:             logger,
		Verifier:           tokens,
		Health:             handler.NewHealthHandler(repo, cacheHealth),
		Metrics:            handler.NewMetricsHandler(recorder),
		Auth:               handler.NewAuthHandler(authService, logger),
		Prediction:         handler.NewPredictionHandler(predictionService, logger),
		User:               handler.NewUserHandler(userService, logger),
		IsDevelopment:      cfg.IsDevelopment(),
		CORSAllowedOrigins: cfg.GetCORSAllowedOrigins(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"list_cache", cacheClient != nil,
		"token_ttl", cfg.JWTTTL.String(),
	)

	return srv.Run(context.Background())
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "cardiopredict")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// redactURL drops the password from a connection URL, keeping the user.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// sanitizeError replaces every secret in err's message with its redacted
// form and masks password=... pairs.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" || redacted == secret {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
