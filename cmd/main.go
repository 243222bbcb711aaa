package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketzone/backend/internal/api"
	"marketzone/backend/internal/api/handler"
	"marketzone/backend/internal/auth"
	"marketzone/backend/internal/chathub"
	"marketzone/backend/internal/config"
	"marketzone/backend/internal/localization"
	"marketzone/backend/internal/logger"
	"marketzone/backend/internal/messaging"
	"marketzone/backend/internal/ratelimit"
	"marketzone/backend/internal/storage"
	"marketzone/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func setupDatabase(cfg *config.Config) *gorm.DB {
	db, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect database")
	}
	if err := storage.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Info().Msg("Database connected, migrations complete")
	return db
}

// setupRelay connects Redis when REDIS_ADDR is set. Without it live
// delivery stays within this process.
func setupRelay(ctx context.Context, cfg *config.Config) (*chathub.RedisRelay, *redis.Client) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, live relay disabled")
		rdb.Close()
		return nil, nil
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis relay enabled")
	return chathub.NewRedisRelay(rdb, cfg.RedisChannel, cfg.PresenceTTL), rdb
}

func setupNotifier(cfg *config.Config, s *storage.Service) *telegram.Notifier {
	if cfg.TelegramBotToken == "" {
		return nil
	}
	bot, err := telegram.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Warn().Err(err).Msg("Telegram bot unavailable, offline notifications disabled")
		return nil
	}

	var l *localization.Localizer
	if cfg.LocalesDir != "" {
		l, err = localization.NewLocalizer(cfg.LocalesDir)
	} else {
		l, err = localization.Default()
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load translations")
	}
	return telegram.NewNotifier(bot, s, s, l, cfg.NotifyCooldown)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger.Init(cfg.AppEnv)
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Info().Str("env", cfg.AppEnv).Msg("Starting MarketZone backend...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := setupDatabase(cfg)
	s := storage.NewStorageService(db, cfg.StoreTimeout)

	registry := chathub.NewRegistry()
	gateway := chathub.NewGateway(registry)

	relay, rdb := setupRelay(ctx, cfg)
	if relay != nil {
		gateway.SetRelay(relay)
		go func() {
			if err := relay.Listen(ctx, gateway.DeliverLocal); err != nil {
				logger.Error().Err(err).Msg("Relay listener stopped")
			}
		}()
	}

	if notifier := setupNotifier(cfg, s); notifier != nil {
		gateway.SetOfflineNotifier(notifier)
		go notifier.Cooldown().RunCleanup(ctx.Done())
	}

	limiter := ratelimit.New(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	go limiter.RunCleanup(ctx.Done())

	tokens := auth.NewTokenService(cfg.JWTSecret)
	svc := messaging.NewService(s, s, s, gateway)
	h := handler.NewHandler(svc, gateway, tokens, cfg.IsDevelopment())
	router, err := api.NewRouter(h, api.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins(),
		TrustedProxies: cfg.TrustedProxyList(),
		Limiter:        limiter,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid TRUSTED_PROXIES")
	}

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown failed")
	}
	// закриваємо всі сокети, чекаємо фонову доставку
	gateway.Close()

	if rdb != nil {
		rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info().Msg("Server stopped")
}
