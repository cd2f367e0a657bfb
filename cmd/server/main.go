// Package main - точка входа для игрового сервера EcoKids Hub.
//
// Сервер хранит профили юных эко-героев и ведёт их прогресс: челленджи,
// мини-игры, очки, уровни и достижения. Браузерная игра общается с ним
// через REST API и получает уведомления через websocket-ленту.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries)
// - Infrastructure: хранилища (Redis, PostgreSQL), event bus
// - Interface: HTTP endpoints, websocket-лента уведомлений
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecokids/ecokids-hub/config"
	"github.com/ecokids/ecokids-hub/internal/application/command"
	"github.com/ecokids/ecokids-hub/internal/application/query"
	"github.com/ecokids/ecokids-hub/internal/domain/content"
	"github.com/ecokids/ecokids-hub/internal/domain/player"
	"github.com/ecokids/ecokids-hub/internal/domain/shared"
	"github.com/ecokids/ecokids-hub/internal/infrastructure/messaging"
	"github.com/ecokids/ecokids-hub/internal/infrastructure/persistence"
	"github.com/ecokids/ecokids-hub/internal/infrastructure/persistence/memory"
	"github.com/ecokids/ecokids-hub/internal/infrastructure/persistence/postgres"
	"github.com/ecokids/ecokids-hub/internal/infrastructure/persistence/redis"
	httpserver "github.com/ecokids/ecokids-hub/internal/interface/http"
	"github.com/ecokids/ecokids-hub/pkg/logger"
	"github.com/ecokids/ecokids-hub/pkg/random"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting EcoKids Hub",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ХРАНИЛИЩЕ ПРОФИЛЕЙ (Redis или in-memory)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		kv        player.KeyValue
		readiness func(ctx context.Context) error
	)

	if cfg.Redis.Disabled {
		log.Warn("Redis disabled, profiles are stored in process memory and will not survive a restart")
		kv = memory.NewKV()
	} else {
		log.Info("connecting to Redis...", "addr", fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port))
		redisKV, err := redis.NewKV(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer func() {
			log.Info("closing Redis connection...")
			_ = redisKV.Close()
		}()
		kv = redisKV
		readiness = redisKV.Ping
		log.Info("Redis connection established")
	}

	store := persistence.NewProfileStore(kv, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 4. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	bus := messaging.NewInMemoryEventBus(log)
	defer func() {
		log.Info("closing event bus...")
		_ = bus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. АРХИВ СНИМКОВ ПРОФИЛЕЙ (PostgreSQL, опционально)
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.URL != "" {
		log.Info("connecting to PostgreSQL snapshot archive...")
		conn, err := postgres.NewConnection(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			conn.Close()
		}()

		archive, err := postgres.NewArchive(ctx, conn, store, log)
		if err != nil {
			return fmt.Errorf("failed to initialize snapshot archive: %w", err)
		}

		// Снимки пишутся после начисления очков и после сброса профиля.
		if err := bus.Subscribe(shared.EventPointsGained, archive.EventHandler()); err != nil {
			return fmt.Errorf("failed to subscribe archive: %w", err)
		}
		if err := bus.Subscribe(shared.EventProfileReset, archive.EventHandler()); err != nil {
			return fmt.Errorf("failed to subscribe archive: %w", err)
		}
		log.Info("snapshot archive enabled")
	} else {
		log.Info("DATABASE_URL not set, snapshot archive disabled")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	registry := command.NewSessionRegistry(cfg.Game.SessionTTL)
	go registry.StartSweeper(ctx, cfg.Game.SweepInterval)

	rewards := command.NewRewardDispatcher(store, bus)

	startActivity := command.NewStartActivityHandler(registry, bus)
	recordInteraction := command.NewRecordInteractionHandler(registry, rewards)
	abandonActivity := command.NewAbandonActivityHandler(registry, bus)
	resetProfile := command.NewResetProfileHandler(store, bus)

	seed, err := random.NewSeed()
	if err != nil {
		return fmt.Errorf("failed to seed random source: %w", err)
	}
	selector := content.NewSelector(rand.New(rand.NewSource(seed)))

	getProfile := query.NewGetProfileHandler(store)
	getRandomTip := query.NewGetRandomTipHandler(selector)
	getTopic := query.NewGetTopicHandler()

	// ─────────────────────────────────────────────────────────────────────────
	// 7. WEBSOCKET-ЛЕНТА УВЕДОМЛЕНИЙ
	// ─────────────────────────────────────────────────────────────────────────
	feed := httpserver.NewNotificationHub(logger.Default())
	defer feed.Close()

	if err := bus.SubscribeAll(feed.EventHandler()); err != nil {
		return fmt.Errorf("failed to subscribe notification feed: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.MaxHeaderBytes = cfg.HTTP.MaxHeaderBytes
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpConfig.AdminPasswordHash = cfg.HTTP.AdminPasswordHash

	httpServer := httpserver.NewServer(httpConfig, httpserver.Dependencies{
		StartActivity:     startActivity,
		RecordInteraction: recordInteraction,
		AbandonActivity:   abandonActivity,
		ResetProfile:      resetProfile,
		GetProfile:        getProfile,
		GetRandomTip:      getRandomTip,
		GetTopic:          getTopic,
		Feed:              feed,
		Readiness:         readiness,
		Logger:            logger.Default(),
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ЗАПУСК И GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	errCh := httpServer.StartAsync()

	log.Info("EcoKids Hub is running", "http_address", httpConfig.Address())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			log.Error("http server error", "error", err)
			return err
		}
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		return err
	}

	// Event bus, лента и хранилища закроются через defer.
	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	switch cfg.Observability.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" || cfg.IsDevelopment() {
		// Текстовый формат для development (лучше читается)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// JSON формат для production (лучше для агрегаторов логов)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
