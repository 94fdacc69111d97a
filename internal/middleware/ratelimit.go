package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/observability"
	"github.com/redis/go-redis/v9"
)

// Quota is a named fixed-window allowance. PerKind quotas count each content
// kind separately, so searching news does not use up the property budget.
type Quota struct {
	Name    string
	Max     int64
	Window  time.Duration
	PerKind bool
}

// Portal quotas.
var (
	SignupQuota  = Quota{Name: "signup", Max: 3, Window: 10 * time.Minute}
	LoginQuota   = Quota{Name: "login", Max: 10, Window: 5 * time.Minute}
	SearchQuota  = Quota{Name: "search", Max: 30, Window: time.Minute, PerKind: true}
	CreateQuota  = Quota{Name: "create", Max: 10, Window: 10 * time.Minute, PerKind: true}
	CommentQuota = Quota{Name: "comment", Max: 5, Window: time.Minute}
	InquiryQuota = Quota{Name: "inquiry", Max: 5, Window: 10 * time.Minute}
)

var errNoRateStore = errors.New("rate limit store not configured")

// Limiter enforces quotas in Redis. It is disabled outside deployed
// environments so local and load-test runs are never throttled.
type Limiter struct {
	rdb     *redis.Client
	enabled bool
}

// NewLimiter returns a Limiter for the given APP_ENV value.
func NewLimiter(rdb *redis.Client, env string) *Limiter {
	switch env {
	case "", "test", "development", "stress":
		return &Limiter{rdb: rdb}
	}
	return &Limiter{rdb: rdb, enabled: true}
}

// Enabled reports whether quotas are enforced.
func (l *Limiter) Enabled() bool { return l.enabled }

// Allow counts one hit against key and reports whether it fits in q. When it
// does not, retryAfter is the time left in the current window.
func (l *Limiter) Allow(ctx context.Context, q Quota, key string) (allowed bool, retryAfter time.Duration, err error) {
	if !l.enabled {
		return true, 0, nil
	}
	if l.rdb == nil {
		return false, 0, errNoRateStore
	}

	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	ttl := q.Window
	if cnt == 1 {
		err = l.rdb.Expire(ctx, key, q.Window).Err()
	} else if ttl, err = l.rdb.TTL(ctx, key).Result(); err == nil && ttl <= 0 {
		// a crash between INCR and EXPIRE leaves a counter that never resets
		ttl = q.Window
		err = l.rdb.Expire(ctx, key, q.Window).Err()
	}
	if err != nil {
		return false, 0, err
	}
	if cnt > q.Max {
		return false, ttl, nil
	}
	return true, 0, nil
}

// Key builds the counter key for the request: quota name, content kind for
// per-kind quotas, then the authenticated user or the client IP.
func (l *Limiter) Key(c *fiber.Ctx, q Quota) string {
	key := "rl:" + q.Name
	if kind := requestKind(c); q.PerKind && kind != "" {
		key += ":" + kind
	}
	if uid := c.Locals("userID"); uid != nil {
		return fmt.Sprintf("%s:user:%v", key, uid)
	}
	return key + ":ip:" + c.IP()
}

// Handle returns a middleware enforcing q. Store failures let the request
// through; readiness already reports a missing Redis.
func (l *Limiter) Handle(q Quota) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.enabled {
			return c.Next()
		}
		ctx := c.UserContext()
		allowed, retryAfter, err := l.Allow(ctx, q, l.Key(c, q))
		if err != nil {
			Logger.WarnContext(ctx, "rate limit store unavailable",
				slog.String("quota", q.Name),
				slog.String("path", c.Path()),
				slog.String("error", err.Error()),
			)
			return c.Next()
		}
		if allowed {
			return c.Next()
		}

		kind := requestKind(c)
		if kind == "" {
			kind = "none"
		}
		observability.RateLimitRejections.WithLabelValues(q.Name, kind).Inc()
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		return models.RespondWithError(c, fiber.StatusTooManyRequests, &models.AppError{
			Code:    models.CodeRateLimited,
			Message: "rate limit exceeded",
		})
	}
}

func requestKind(c *fiber.Ctx) string {
	if kind, ok := c.Locals(LocalContentKind).(models.ContentKind); ok {
		return string(kind)
	}
	return ""
}
