package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/go-redis/redis/v8"
)

const (
	historyKey    = "hostel_rooms:room_history:v1"
	generationKey = "hostel_rooms:room_history:generation"
)

// RedisHistoryCache кэш истории заявок. Сбрасывается при каждом изменении комнат или заявок.
// Каждый сброс увеличивает поколение; запись с устаревшим поколением отбрасывается.
type RedisHistoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisHistoryCache(client *redis.Client, ttl time.Duration) *RedisHistoryCache {
	return &RedisHistoryCache{client: client, ttl: ttl}
}

// NewRedisClient создаёт клиента Redis
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Get возвращает историю из кэша; ok=false если записи нет
func (c *RedisHistoryCache) Get(ctx context.Context) ([]model.StudentHistory, bool, error) {
	raw, err := c.client.Get(ctx, historyKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get history cache: %w", err)
	}

	var history []model.StudentHistory
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, false, fmt.Errorf("decode history cache: %w", err)
	}

	return history, true, nil
}

// Generation текущее поколение кэша. Читается до построения истории.
func (c *RedisHistoryCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get history generation: %w", err)
	}
	return gen, nil
}

// Set сохраняет историю, только если с момента чтения generation не было сброса.
// Возвращает false, если запись отброшена.
func (c *RedisHistoryCache) Set(ctx context.Context, generation int64, history []model.StudentHistory) (bool, error) {
	raw, err := json.Marshal(history)
	if err != nil {
		return false, fmt.Errorf("encode history cache: %w", err)
	}

	stored := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, historyKey, raw, c.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		stored = true
		return nil
	}, generationKey)

	if errors.Is(err, redis.TxFailedErr) {
		// Поколение сменилось между WATCH и EXEC
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("set history cache: %w", err)
	}

	return stored, nil
}

// Invalidate сбрасывает кэш и увеличивает поколение
func (c *RedisHistoryCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, historyKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate history cache: %w", err)
	}
	return nil
}
