package repository

import (
	"context"
	"errors"
	"time"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InquiryRepository persists property inquiries.
type InquiryRepository interface {
	GetByID(ctx context.Context, id uint) (*models.PropertyInquiry, error)
	FindByUserAndProperty(ctx context.Context, userID, propertyID uint) (*models.PropertyInquiry, error)
	CreateIfAbsent(ctx context.Context, inquiry *models.PropertyInquiry) (bool, error)
	Save(ctx context.Context, inquiry *models.PropertyInquiry) error
	ListByProperty(ctx context.Context, propertyID uint, limit, offset int) ([]*models.PropertyInquiry, int64, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.PropertyInquiry, int64, error)
	DeleteClickedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type inquiryRepository struct {
	db *gorm.DB
}

// NewInquiryRepository returns a new InquiryRepository implementation.
func NewInquiryRepository(db *gorm.DB) InquiryRepository {
	return &inquiryRepository{db: db}
}

func (r *inquiryRepository) GetByID(ctx context.Context, id uint) (*models.PropertyInquiry, error) {
	var inquiry models.PropertyInquiry
	if err := r.db.WithContext(ctx).First(&inquiry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Inquiry", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &inquiry, nil
}

// FindByUserAndProperty returns nil, nil when the user has no inquiry on the property.
func (r *inquiryRepository) FindByUserAndProperty(ctx context.Context, userID, propertyID uint) (*models.PropertyInquiry, error) {
	var inquiry models.PropertyInquiry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		First(&inquiry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &inquiry, nil
}

// CreateIfAbsent inserts inquiry unless the (user, property) pair already
// exists, in which case inquiry is filled with the stored record.
func (r *inquiryRepository) CreateIfAbsent(ctx context.Context, inquiry *models.PropertyInquiry) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "property_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(inquiry)
	if res.Error != nil && !isUniqueConstraintError(res.Error) {
		return false, models.NewInternalError(res.Error)
	}
	if res.Error == nil && res.RowsAffected == 1 {
		return true, nil
	}

	existing, err := r.FindByUserAndProperty(ctx, inquiry.UserID, inquiry.PropertyID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, models.NewInternalError(errors.New("inquiry conflict without stored record"))
	}
	*inquiry = *existing
	return false, nil
}

func (r *inquiryRepository) Save(ctx context.Context, inquiry *models.PropertyInquiry) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(inquiry).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *inquiryRepository) list(ctx context.Context, where string, arg uint, limit, offset int) ([]*models.PropertyInquiry, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.PropertyInquiry{}).Where(where, arg).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	var inquiries []*models.PropertyInquiry
	err := r.db.WithContext(ctx).Preload("User").
		Where(where, arg).
		Order("updated_at desc").Order("id desc").
		Limit(limit).Offset(offset).
		Find(&inquiries).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return inquiries, total, nil
}

func (r *inquiryRepository) ListByProperty(ctx context.Context, propertyID uint, limit, offset int) ([]*models.PropertyInquiry, int64, error) {
	return r.list(ctx, "property_id = ?", propertyID, limit, offset)
}

func (r *inquiryRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.PropertyInquiry, int64, error) {
	return r.list(ctx, "user_id = ?", userID, limit, offset)
}

// DeleteClickedBefore removes click-only inquiries older than cutoff.
func (r *inquiryRepository) DeleteClickedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND clicked_at < ?", models.InquiryClicked, cutoff).
		Delete(&models.PropertyInquiry{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
