// Package main is the entrypoint for the Paisa API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/paisa/paisa/internal/auth"
	"github.com/paisa/paisa/internal/cache"
	"github.com/paisa/paisa/internal/config"
	"github.com/paisa/paisa/internal/events"
	"github.com/paisa/paisa/internal/handler"
	"github.com/paisa/paisa/internal/insight"
	"github.com/paisa/paisa/internal/metrics"
	"github.com/paisa/paisa/internal/middleware"
	"github.com/paisa/paisa/internal/repository"
	"github.com/paisa/paisa/internal/server"
	"github.com/paisa/paisa/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.DBAutoMigrate {
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Error(
				"failed to run migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		logger.Info("database migrations applied")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Redis is optional. Interface values stay nil without it so the
	// middleware and services see "not configured" rather than a typed nil.
	var (
		cacheClient *cache.Cache
		cacheHealth handler.HealthChecker
		revoker     service.TokenRevoker
		limiter     middleware.RateLimiter
	)
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		cacheHealth, revoker, limiter = cacheClient, cacheClient, cacheClient
		logger.Info("connected to Redis")
	} else {
		logger.Warn("REDIS_URL not set; rate limiting and token revocation are disabled")
	}

	recorder := metrics.NewInMemory()

	sink, err := newEventSink(cfg, cacheClient)
	if err != nil {
		logger.Error(
			"failed to connect event backend",
			slog.String("backend", cfg.EventsBackend),
			slog.String("error", sanitizeError(err, cfg.AMQPURL)),
		)
		os.Exit(1)
	}
	publisher := events.NewPublisher(sink, logger, recorder)

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		logger.Error("failed to create token issuer", "error", err)
		os.Exit(1)
	}

	authService := service.NewAuthService(repo, tokens, revoker, publisher, recorder, logger)
	authService.SetAdminEmails(cfg.AdminEmails)
	userService := service.NewUserService(repo)
	transactionService := service.NewTransactionService(repo, publisher, recorder)
	budgetService := service.NewBudgetService(repo, publisher, recorder)
	insightService := service.NewInsightService(repo, service.ReportOptions{
		Granularity: insight.Granularity(cfg.InsightTrendGranularity),
		Window:      cfg.InsightTrendWindow,
	}, recorder, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	router := handler.NewRouter(handler.RouterConfig{
		Logger:        logger,
		Authenticator: authService,
		RateLimit: middleware.RateLimitConfig{
			Logger:      logger,
			Limiter:     limiter,
			UserEnabled: cfg.RateLimitAPIEnabled,
			UserRPM:     cfg.RateLimitAPIRPM,
			UserBurst:   cfg.RateLimitAPIBurst,
			IPEnabled:   cfg.RateLimitAuthEnabled,
			IPRPS:       cfg.RateLimitAuthRPS,
			IPBurst:     cfg.RateLimitAuthBurst,
		},
		CORS:         corsCfg,
		Security:     middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()},
		MaxBodySize:  cfg.MaxRequestBodySize,
		Root:         handler.New(),
		Health:       handler.NewHealthHandler(repo, cacheHealth, logger),
		Metrics:      handler.NewMetricsHandler(recorder),
		Auth:         handler.NewAuthHandler(authService, logger),
		Users:        handler.NewUserHandler(userService, logger),
		Transactions: handler.NewTransactionHandler(transactionService, logger),
		Budgets:      handler.NewBudgetHandler(budgetService, logger),
		Insights:     handler.NewInsightHandler(insightService, logger),
	})

	srv := server.New(router, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Stopped in reverse: events drain first, the database closes last.
	srv.OnShutdown("database", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}
	srv.OnShutdown("events", publisher.Close)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"events_backend", cfg.EventsBackend,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newEventSink connects the configured event backend. A nil sink discards
// events.
func newEventSink(cfg *config.Config, cacheClient *cache.Cache) (events.Sink, error) {
	switch cfg.EventsBackend {
	case config.EventsRedis:
		return events.NewRedisStream(cacheClient), nil
	case config.EventsAMQP:
		sink, err := events.NewAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, nil
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

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
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
