package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr          = ":8080"
	defaultHistoryCacheTTL   = 5 * time.Minute
	defaultReconcileInterval = 10 * time.Minute
	developmentJWTSecret     = "development-secret"
)

type Config struct {
	DBDSN       string
	Environment string
	HTTPAddr    string
	JWTSecret   string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	HistoryCacheTTL time.Duration

	TelegramToken       string
	TelegramAdminChatID int64

	// 0 отключает фоновую сверку занятости
	ReconcileInterval time.Duration

	// JWT_SECRET не задан, используется общеизвестный секрет разработки
	InsecureJWTSecret bool
}

// Load читает envFile (если есть), затем переменные окружения
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}

	// Отсутствие файла не ошибка
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("No %s file found, using environment variables", envFile)
	}

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		Environment:   os.Getenv("ENV"),
		HTTPAddr:      os.Getenv("HTTP_ADDR"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}

	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.TelegramAdminChatID, err = int64Env("TELEGRAM_ADMIN_CHAT_ID", 0); err != nil {
		return nil, err
	}
	if cfg.HistoryCacheTTL, err = durationEnv("HISTORY_CACHE_TTL", defaultHistoryCacheTTL); err != nil {
		return nil, err
	}
	if cfg.ReconcileInterval, err = durationEnv("RECONCILE_INTERVAL", defaultReconcileInterval); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = developmentJWTSecret
		cfg.InsecureJWTSecret = true
		log.Printf("WARNING: JWT_SECRET is not set, using the built-in development secret: anyone with the source can sign admin tokens")
	}
	if cfg.HistoryCacheTTL <= 0 {
		return nil, fmt.Errorf("HISTORY_CACHE_TTL must be positive, got %s", cfg.HistoryCacheTTL)
	}
	if cfg.ReconcileInterval < 0 {
		return nil, fmt.Errorf("RECONCILE_INTERVAL must not be negative, got %s", cfg.ReconcileInterval)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UseMemoryStore без DB_DSN данные живут только в памяти процесса
func (c *Config) UseMemoryStore() bool {
	return c.DBDSN == ""
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func int64Env(key string, def int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}
