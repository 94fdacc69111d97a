// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/filter"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListingRepository defines persistence operations shared by every listing kind.
type ListingRepository[T models.Listing] interface {
	Kind() models.ContentKind
	Schema() filter.Schema
	FindByID(ctx context.Context, id uint) (T, error)
	Create(ctx context.Context, item T) error
	Save(ctx context.Context, item T) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	FindAll(ctx context.Context, q filter.Query) ([]T, int64, error)
	IncrementViews(ctx context.Context, id uint) error
	FindRejectedBefore(ctx context.Context, cutoff time.Time, limit int) ([]T, error)
}

type listingRepository[T models.Listing] struct {
	db      *gorm.DB
	schema  filter.Schema
	newItem func() T
	log     *observability.RepoLogger
}

// NewListingRepository returns a ListingRepository for the collection
// described by schema. newItem allocates an empty listing of the kind.
func NewListingRepository[T models.Listing](db *gorm.DB, schema filter.Schema, newItem func() T) ListingRepository[T] {
	return &listingRepository[T]{
		db:      db,
		schema:  schema,
		newItem: newItem,
		log:     observability.NewRepoLogger(schema.Table),
	}
}

// NewNewsRepository returns the news store.
func NewNewsRepository(db *gorm.DB) ListingRepository[*models.News] {
	return NewListingRepository(db, filter.NewsSchema, func() *models.News { return new(models.News) })
}

// NewJobRepository returns the job posting store.
func NewJobRepository(db *gorm.DB) ListingRepository[*models.Job] {
	return NewListingRepository(db, filter.JobSchema, func() *models.Job { return new(models.Job) })
}

// NewEventRepository returns the event store.
func NewEventRepository(db *gorm.DB) ListingRepository[*models.Event] {
	return NewListingRepository(db, filter.EventSchema, func() *models.Event { return new(models.Event) })
}

// NewCommunityPostRepository returns the community post store.
func NewCommunityPostRepository(db *gorm.DB) ListingRepository[*models.CommunityPost] {
	return NewListingRepository(db, filter.CommunityPostSchema, func() *models.CommunityPost { return new(models.CommunityPost) })
}

// NewPropertyRepository returns the property store.
func NewPropertyRepository(db *gorm.DB) ListingRepository[*models.Property] {
	return NewListingRepository(db, filter.PropertySchema, func() *models.Property { return new(models.Property) })
}

func (r *listingRepository[T]) Kind() models.ContentKind { return r.schema.Kind }

func (r *listingRepository[T]) Schema() filter.Schema { return r.schema }

func (r *listingRepository[T]) withDetails(db *gorm.DB) *gorm.DB {
	db = db.Preload("Media", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC").Order("id ASC")
	})
	if r.schema.Membership != nil {
		db = db.Preload("AmenityRows", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		})
	}
	return db
}

func (r *listingRepository[T]) FindByID(ctx context.Context, id uint) (T, error) {
	defer observability.TrackQuery("select", r.schema.Table)()
	item := r.newItem()
	if err := r.withDetails(r.db.WithContext(ctx)).First(item, id).Error; err != nil {
		var zero T
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, models.NewNotFoundError(string(r.schema.Kind), id)
		}
		return zero, models.NewInternalError(err)
	}
	return item, nil
}

// Create inserts item together with its media and amenity rows.
func (r *listingRepository[T]) Create(ctx context.Context, item T) error {
	defer observability.TrackQuery("insert", r.schema.Table)()
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"id": item.GetID()})
	return nil
}

// Save writes the listing's own columns. Media rows are left untouched; a
// property's amenity set is replaced.
func (r *listingRepository[T]) Save(ctx context.Context, item T) error {
	defer observability.TrackQuery("update", r.schema.Table)()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(item).Error; err != nil {
			return err
		}
		if p, ok := any(item).(*models.Property); ok {
			return replaceAmenities(tx, p)
		}
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "save")
		return models.NewInternalError(err)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"id": item.GetID()})
	return nil
}

func replaceAmenities(tx *gorm.DB, p *models.Property) error {
	if err := tx.Where("property_id = ?", p.ID).Delete(&models.PropertyAmenity{}).Error; err != nil {
		return err
	}
	if len(p.Amenities) == 0 {
		p.AmenityRows = nil
		return nil
	}
	rows := make([]models.PropertyAmenity, 0, len(p.Amenities))
	for _, name := range p.Amenities {
		rows = append(rows, models.PropertyAmenity{PropertyID: p.ID, Name: name})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return err
	}
	p.AmenityRows = rows
	return nil
}

// UpdateFields applies a column update to one listing. A missing row is
// reported as NotFound.
func (r *listingRepository[T]) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	defer observability.TrackQuery("update", r.schema.Table)()
	res := r.db.WithContext(ctx).Model(r.newItem()).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update_fields")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(string(r.schema.Kind), id)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"id": id, "fields": len(fields)})
	return nil
}

// Delete removes the listing with its comments, media rows, amenities and
// inquiries in one transaction.
func (r *listingRepository[T]) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", r.schema.Table)()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteCommentsFor(tx, r.schema.Kind, id); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := tx.Where("owner_type = ? AND owner_id = ?", r.schema.Table, id).Delete(&models.MediaAsset{}).Error; err != nil {
			return fmt.Errorf("delete media rows: %w", err)
		}
		if r.schema.Kind == models.KindProperty {
			if err := tx.Where("property_id = ?", id).Delete(&models.PropertyAmenity{}).Error; err != nil {
				return fmt.Errorf("delete amenities: %w", err)
			}
			if err := tx.Where("property_id = ?", id).Delete(&models.PropertyInquiry{}).Error; err != nil {
				return fmt.Errorf("delete inquiries: %w", err)
			}
		}
		res := tx.Delete(r.newItem(), id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError(string(r.schema.Kind), id)
		}
		return nil
	})
	if err != nil {
		if models.IsNotFound(err) {
			return err
		}
		r.log.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}

// FindAll returns one page of listings matching q and the total match count.
func (r *listingRepository[T]) FindAll(ctx context.Context, q filter.Query) ([]T, int64, error) {
	defer observability.TrackQuery("select", r.schema.Table)()
	scope := filter.Apply(r.db.WithContext(ctx).Model(r.newItem()), q, r.schema)

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	if offset := q.Offset(); total == 0 || offset < 0 || int64(offset) >= total {
		return []T{}, total, nil
	}

	var items []T
	query := filter.Apply(r.withDetails(r.db.WithContext(ctx)), q, r.schema)
	if err := filter.Paginate(query, q, r.schema).Find(&items).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return items, total, nil
}

// IncrementViews bumps the view counter of a property without a read.
func (r *listingRepository[T]) IncrementViews(ctx context.Context, id uint) error {
	if r.schema.Kind != models.KindProperty {
		return nil
	}
	defer observability.TrackQuery("update", r.schema.Table)()
	res := r.db.WithContext(ctx).Model(r.newItem()).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(string(r.schema.Kind), id)
	}
	return nil
}

// FindRejectedBefore returns up to limit REJECTED listings last moderated
// before cutoff. Author edits after the rejection do not move the cutoff.
func (r *listingRepository[T]) FindRejectedBefore(ctx context.Context, cutoff time.Time, limit int) ([]T, error) {
	defer observability.TrackQuery("select", r.schema.Table)()
	var items []T
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("status = ? AND COALESCE(moderated_at, created_at) < ?", models.StatusRejected, cutoff).
		Order("id ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}
