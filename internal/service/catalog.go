package service

import (
	"context"
	"time"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/repository"

	"gorm.io/gorm"
)

// Catalog holds the lifecycle of every listing kind.
type Catalog struct {
	News           *Lifecycle[*models.News]
	Jobs           *Lifecycle[*models.Job]
	Events         *Lifecycle[*models.Event]
	CommunityPosts *Lifecycle[*models.CommunityPost]
	Properties     *PropertyService
}

// NewCatalog builds the lifecycles of all kinds over db.
func NewCatalog(db *gorm.DB, deps LifecycleDeps) *Catalog {
	return &Catalog{
		News:           NewLifecycle(repository.NewNewsRepository(db), deps),
		Jobs:           NewLifecycle(repository.NewJobRepository(db), deps),
		Events:         NewLifecycle(repository.NewEventRepository(db), deps),
		CommunityPosts: NewLifecycle(repository.NewCommunityPostRepository(db), deps),
		Properties:     NewPropertyService(repository.NewPropertyRepository(db), deps),
	}
}

type visibleChecker interface {
	Visible(ctx context.Context, viewer models.Actor, id uint) error
}

func (c *Catalog) checker(kind models.ContentKind) visibleChecker {
	switch kind {
	case models.KindNews:
		return c.News
	case models.KindJob:
		return c.Jobs
	case models.KindEvent:
		return c.Events
	case models.KindCommunityPost:
		return c.CommunityPosts
	case models.KindProperty:
		return c.Properties
	}
	return nil
}

// Visible reports NotFound unless viewer may see listing (kind, id).
func (c *Catalog) Visible(ctx context.Context, kind models.ContentKind, viewer models.Actor, id uint) error {
	checker := c.checker(kind)
	if checker == nil {
		return models.NewValidationError("unknown content kind " + string(kind))
	}
	return checker.Visible(ctx, viewer, id)
}

// RejectedPurger removes stale rejected listings of one kind.
type RejectedPurger interface {
	Kind() models.ContentKind
	PurgeRejected(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// Purgers returns every lifecycle as a RejectedPurger.
func (c *Catalog) Purgers() []RejectedPurger {
	return []RejectedPurger{c.News, c.Jobs, c.Events, c.CommunityPosts, c.Properties}
}
