package service

import (
	"context"
	"log/slog"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/cache"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/observability"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/repository"
)

// PropertyService adds the sale/rental status and view counting to the
// property lifecycle.
type PropertyService struct {
	*Lifecycle[*models.Property]
	repo repository.ListingRepository[*models.Property]
}

func NewPropertyService(repo repository.ListingRepository[*models.Property], deps LifecycleDeps) *PropertyService {
	return &PropertyService{
		Lifecycle: NewLifecycle(repo, deps),
		repo:      repo,
	}
}

// UpdateStatus marks a property sold or rented. Only the author may do
// this, admins included, and only FOR_SALE -> SOLD or FOR_RENT -> RENTED.
func (s *PropertyService) UpdateStatus(ctx context.Context, actor models.Actor, id uint, next models.PropertyStatus) (*models.Property, error) {
	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(property.AuthorID) {
		return nil, models.NewForbiddenError("Only the author can change the property status")
	}
	if !next.Valid() {
		return nil, models.NewValidationError("unknown property_status " + string(next))
	}
	if !property.PropertyStatus.CanBecome(next) {
		return nil, models.NewValidationError("cannot change property status from " +
			string(property.PropertyStatus) + " to " + string(next))
	}

	if err := s.repo.UpdateFields(ctx, id, map[string]interface{}{"property_status": next}); err != nil {
		return nil, err
	}
	from := property.PropertyStatus
	property.PropertyStatus = next
	cache.InvalidateListing(ctx, string(models.KindProperty), id)
	observability.LogTransition(ctx, string(models.KindProperty), id, "status", actor.ID,
		map[string]interface{}{"from": string(from), "to": string(next)})
	return property, nil
}

// RecordView counts one view of a published property. Failures are
// logged and never surface to the reader.
func (s *PropertyService) RecordView(ctx context.Context, id uint) {
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to record property view",
			slog.Uint64("property_id", uint64(id)), slog.String("error", err.Error()))
		return
	}
	cache.Invalidate(ctx, cache.ListingKey(string(models.KindProperty), id))
}

