package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/hostel_rooms/internal/app"
	"github.com/Freeeeeet/hostel_rooms/internal/cache"
	"github.com/Freeeeeet/hostel_rooms/internal/config"
	"github.com/Freeeeeet/hostel_rooms/internal/controller/httpapi"
	"github.com/Freeeeeet/hostel_rooms/internal/controller/telegram"
	"github.com/Freeeeeet/hostel_rooms/internal/notify"
	"github.com/Freeeeeet/hostel_rooms/internal/repository"
	"github.com/Freeeeeet/hostel_rooms/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	envFile := pflag.String("env-file", ".env", "path to .env file")
	migrateOnly := pflag.Bool("migrate-only", false, "apply database migrations and exit")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	if cfg.InsecureJWTSecret {
		logger.Warn("JWT_SECRET is not set, tokens are signed with the development secret",
			zap.String("environment", cfg.Environment),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *migrateOnly, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, migrateOnly bool, logger *zap.Logger) error {
	var store repository.Store

	if cfg.UseMemoryStore() {
		if migrateOnly {
			logger.Warn("DB_DSN is empty, nothing to migrate")
			return nil
		}
		logger.Warn("DB_DSN is empty, using in-memory store: data is lost on restart")
		store = repository.NewMemoryStore()
	} else {
		pool, err := pgxpool.New(ctx, cfg.DBDSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return err
		}
		logger.Info("Connected to database")

		migrator, err := app.NewMigrator(pool, logger)
		if err != nil {
			return err
		}
		err = migrator.Run(ctx)
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("Failed to close migrator", zap.Error(closeErr))
		}
		if err != nil {
			return err
		}
		if migrateOnly {
			return nil
		}

		store = repository.NewPostgresStore(pool)
	}

	var history service.HistoryCache
	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			// История пересчитывается из хранилища, кэш не обязателен
			logger.Warn("Redis unavailable, history cache disabled", zap.Error(err))
		} else {
			history = cache.NewRedisHistoryCache(client, cfg.HistoryCacheTTL)
			logger.Info("History cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.HistoryCacheTTL))
		}
	}

	svc := httpapi.Services{
		Rooms:    service.NewRoomService(store, history, logger),
		Queries:  service.NewQueryService(store, history, logger),
		Hostels:  service.NewHostelService(store, history, logger),
		Students: service.NewStudentService(store, logger),
	}

	var notifier service.Notifier = notify.Nop{}
	var tgBot *bot.Bot
	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			logger.Warn("Telegram bot disabled", zap.Error(err))
		} else {
			tgBot = b
			tgNotifier := notify.NewTelegramNotifier(b, cfg.TelegramAdminChatID, logger)
			// Дожидаемся фоновых уведомлений при остановке
			defer tgNotifier.Wait()
			notifier = tgNotifier
		}
	}
	svc.Requests = service.NewRequestService(store, history, notifier, logger)

	if tgBot != nil {
		controller := telegram.NewBotController(tgBot, telegram.NewHandlers(
			svc.Rooms, svc.Requests, svc.Queries, svc.Students, logger,
		), logger)
		if err := controller.RegisterHandlers(ctx); err != nil {
			logger.Warn("Failed to register bot commands", zap.Error(err))
		}
		go controller.Start(ctx)
	}

	scheduler := app.NewScheduler(svc.Rooms, cfg.ReconcileInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logger.Info("Starting hostel rooms service",
		zap.String("environment", cfg.Environment),
		zap.String("addr", cfg.HTTPAddr),
		zap.Bool("memory_store", cfg.UseMemoryStore()),
	)

	server := httpapi.NewServer(cfg.HTTPAddr, cfg.JWTSecret, svc, logger)
	return server.Run(ctx, shutdownTimeout)
}
