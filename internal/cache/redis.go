// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/observability"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis initializes the Redis client with the given address.
// On failure the client stays nil and caching is skipped.
func InitRedis(addr string) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			middleware.Logger.Warn("invalid REDIS_URL, continuing without cache",
				slog.String("addr", addr), slog.String("error", err.Error()))
			client = nil
			return
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client = redis.NewClient(opts)
	client.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("redis unreachable, continuing without cache", slog.String("error", err.Error()))
		client = nil
	} else {
		middleware.Logger.Info("Redis connected successfully")
	}
}

// SetClient replaces the Redis client; tests point it at miniredis.
func SetClient(c *redis.Client) {
	if c != nil {
		c.AddHook(metricsHook{})
	}
	client = c
}

// GetClient returns the current Redis client instance.
func GetClient() *redis.Client {
	return client
}
