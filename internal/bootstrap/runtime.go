// Package bootstrap wires the process-wide collaborators the API and the
// cleanup scheduler share.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/cache"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/config"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/database"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/repository"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedBuiltIns upserts the demo newsroom accounts.
	SeedBuiltIns bool
}

// InitRuntime connects to the database and Redis, makes sure a development
// moderator exists, and logs the moderation backlog the instance starts with.
// The Redis client is nil when Redis is unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	ctx := context.Background()
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if _, err := EnsureRootModerator(ctx, cfg, repository.NewUserRepository(db)); err != nil {
		return nil, nil, fmt.Errorf("bootstrap development moderator: %w", err)
	}

	if opts.SeedBuiltIns {
		if err := seed.Accounts(db, seed.DefaultPassword); err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in accounts: %w", err)
		}
	}

	if backlog, err := ModerationBacklog(ctx, db); err != nil {
		middleware.Logger.Warn("moderation backlog unavailable", slog.String("error", err.Error()))
	} else {
		attrs := make([]any, 0, len(backlog))
		for table, pending := range backlog {
			attrs = append(attrs, slog.Int64(table, pending))
		}
		middleware.Logger.Info("moderation backlog", attrs...)
	}

	return db, r, nil
}

// EnsureRootModerator gives local development an ADMIN account so listings
// can be approved without a seeded database. It only acts when APP_ENV is
// development and DEV_BOOTSTRAP_ROOT is set. An existing account with the
// configured email is promoted; its credentials change only when
// DEV_ROOT_FORCE_CREDENTIALS is set.
func EnsureRootModerator(ctx context.Context, cfg *config.Config, users repository.UserRepository) (*models.User, error) {
	if cfg == nil || !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil, nil
	}
	if cfg.DevRootPassword == "" {
		return nil, models.NewValidationError("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	username := strings.TrimSpace(cfg.DevRootUsername)
	if username == "" {
		username = "portal_root"
	}
	email := strings.ToLower(strings.TrimSpace(cfg.DevRootEmail))
	if email == "" {
		email = "root@portal.local"
	}

	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if existing == nil || cfg.DevRootForceCredentials {
		hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.DevRootPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash root password: %w", err)
		}
		if existing == nil {
			root := &models.User{Username: username, Email: email, Password: string(hashed), Role: models.RoleAdmin}
			if err := users.Create(ctx, root); err != nil {
				return nil, err
			}
			middleware.Logger.Info("development moderator created",
				slog.Uint64("user_id", uint64(root.ID)), slog.String("email", email))
			return root, nil
		}
		existing.Username = username
		if err := users.Update(ctx, existing); err != nil {
			return nil, err
		}
		if err := users.UpdatePassword(ctx, existing.ID, string(hashed)); err != nil {
			return nil, err
		}
	}

	if existing.Role != models.RoleAdmin {
		if err := users.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
			return nil, err
		}
		existing.Role = models.RoleAdmin
	}
	middleware.Logger.Info("development moderator ensured",
		slog.Uint64("user_id", uint64(existing.ID)), slog.String("email", email))
	return existing, nil
}

// ModerationBacklog returns the PENDING count of every existing listing table.
func ModerationBacklog(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	tables, err := database.TableStatuses(ctx, db)
	if err != nil {
		return nil, err
	}
	backlog := make(map[string]int64)
	for _, t := range tables {
		if t.Listing && t.Exists {
			backlog[t.Table] = t.ByStatus[models.StatusPending]
		}
	}
	return backlog, nil
}
