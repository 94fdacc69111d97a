package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/observability"
	"github.com/redis/go-redis/v9"
)

// Lookup decodes the cached value at key into dest. It reports false on a
// miss, a decode failure or when Redis is unavailable.
func Lookup(ctx context.Context, key string, dest any) bool {
	if client == nil {
		return false
	}
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "get")
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = nil
		}
		observability.EndSpan(span, err)
		return false
	}
	span.End()
	if err := json.Unmarshal(raw, dest); err != nil {
		middleware.Logger.WarnContext(ctx, "dropping undecodable cache entry",
			slog.String("key", key), slog.String("error", err.Error()))
		Invalidate(ctx, key)
		return false
	}
	return true
}

// Store caches value at key for ttl. Failures are logged, never returned.
func Store(ctx context.Context, key string, value any, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "set")
	err = client.Set(ctx, key, raw, ttl).Err()
	observability.EndSpan(span, err)
}

// Aside serves dest from cache, or calls fetch to fill it and caches the
// result. fetch errors are returned and nothing is cached.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if Lookup(ctx, key, dest) {
		return nil
	}
	if err := fetch(); err != nil {
		return err
	}
	Store(ctx, key, dest, ttl)
	return nil
}
