package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	KeyStagesList  = "stages:list"
	KeyLeaderboard = "leaderboard"

	DefaultTTL = time.Hour
)

// ErrMiss возвращается из Get, если ключа нет в кэше.
var ErrMiss = errors.New("cache miss")

// Cache хранит сырые JSON-значения по ключу.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Observer получает результат каждого обращения к кэшу (hit, miss, error).
type Observer interface {
	CacheRequest(key, result string)
}

type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

func (NopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NopCache) Delete(context.Context, ...string) error { return nil }

// ReadThrough отдаёт значение из кэша, а при промахе вызывает load и сохраняет результат.
// Ошибки кэша не прерывают запрос: они логируются, и значение берётся из load.
func ReadThrough[T any](
	ctx context.Context,
	c Cache,
	logger *slog.Logger,
	obs Observer,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (T, error),
) (T, error) {
	var value T

	raw, err := c.Get(ctx, key)
	switch {
	case err == nil:
		jsonErr := json.Unmarshal(raw, &value)
		if jsonErr == nil {
			observe(obs, key, "hit")
			return value, nil
		}
		observe(obs, key, "error")
		logger.WarnContext(ctx, "cache entry is corrupt", slog.String("key", key), slog.Any("error", jsonErr))
	case errors.Is(err, ErrMiss):
		observe(obs, key, "miss")
	default:
		observe(obs, key, "error")
		logger.WarnContext(ctx, "cache get failed", slog.String("key", key), slog.Any("error", err))
	}

	value, err = load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return value, fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	if err := c.Set(ctx, key, encoded, ttl); err != nil {
		logger.WarnContext(ctx, "cache set failed", slog.String("key", key), slog.Any("error", err))
	}
	return value, nil
}

// Invalidate удаляет ключи, логируя ошибку вместо возврата.
func Invalidate(ctx context.Context, c Cache, logger *slog.Logger, keys ...string) {
	if err := c.Delete(ctx, keys...); err != nil {
		logger.WarnContext(ctx, "cache invalidation failed", slog.Any("keys", keys), slog.Any("error", err))
	}
}

func observe(obs Observer, key, result string) {
	if obs != nil {
		obs.CacheRequest(key, result)
	}
}
