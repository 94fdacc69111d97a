package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"
)

const (
	UserKeyPrefix       = "user:%d"
	ListingKeyPrefix    = "listing:%s:%d"
	ListingGenKeyPrefix = "listings:%s:gen"
	SearchKeyPrefix     = "search:%s:g%d:%s"
	UnreadKeyPrefix     = "notifications:unread:%d"
)

// UserTTL bounds how long a cached user profile may be served.
const UserTTL = 5 * time.Minute

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// ListingKey is the cache key of a single approved listing.
func ListingKey(kind string, id uint) string {
	return fmt.Sprintf(ListingKeyPrefix, kind, id)
}

func listingGenKey(kind string) string {
	return fmt.Sprintf(ListingGenKeyPrefix, kind)
}

// UnreadKey is the cache key of a user's unread notification count.
func UnreadKey(userID uint) string {
	return fmt.Sprintf(UnreadKeyPrefix, userID)
}

// Generation returns the current list generation of kind. List and search
// pages are keyed by generation so bumping it invalidates all of them.
func Generation(ctx context.Context, kind string) int64 {
	if client == nil {
		return 0
	}
	gen, err := client.Get(ctx, listingGenKey(kind)).Int64()
	if err != nil {
		return 0
	}
	return gen
}

// SearchKey is the cache key of a search page for the current generation.
func SearchKey(ctx context.Context, kind, fingerprint string) string {
	return fmt.Sprintf(SearchKeyPrefix, kind, Generation(ctx, kind), fingerprint)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateLists bumps the list generation of kind.
func InvalidateLists(ctx context.Context, kind string) {
	if client == nil {
		return
	}
	if err := client.Incr(ctx, listingGenKey(kind)).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to bump list generation",
			slog.String("kind", kind), slog.String("error", err.Error()))
	}
}

// InvalidateListing drops the cached listing and every list page of its kind.
func InvalidateListing(ctx context.Context, kind string, id uint) {
	Invalidate(ctx, ListingKey(kind, id))
	InvalidateLists(ctx, kind)
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
