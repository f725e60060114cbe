package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carrent/internal/api"
	"carrent/internal/auth"
	"carrent/internal/booking"
	"carrent/internal/config"
	"carrent/internal/database"
	"carrent/internal/events"
	"carrent/internal/filestore"
	"carrent/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("CARRENT_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	var blacklist auth.Blacklist
	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		blacklist = auth.NewRedisBlacklist(rdb)
	} else {
		logger.Warn().Msg("redis not configured, revoked tokens kept in memory only")
		blacklist = auth.NewMemoryBlacklist()
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.TokenTTL(), blacklist)

	files, err := filestore.NewStore(cfg.Media.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("media store error")
	}

	bus := events.NewBus()
	logEvent := func(e events.Event) {
		logger.Info().
			Str("event", e.Type).
			Int64("booking_id", e.BookingID).
			Int64("user_id", e.UserID).
			Int64("car_id", e.CarID).
			Msg("booking event")
	}
	for _, eventType := range []string{events.BookingCreated, events.BookingUpdated, events.BookingDeleted} {
		bus.Subscribe(eventType, logEvent)
	}

	svc := booking.NewService(db, bus, &logger)
	server := api.NewHTTPServer(db, svc, tokens, files, &logger, api.Options{
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go database.NewBackupService(db, cfg.Backup, &logger).Start(ctx)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}()

	logger.Info().Int("port", cfg.Server.Port).Msg("car rental API started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("server stopped")
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
