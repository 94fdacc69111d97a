package repository

import (
	"context"
	"errors"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByListing(ctx context.Context, kind models.ContentKind, listingID uint, limit, offset int) ([]*models.Comment, int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	DeleteByListing(ctx context.Context, kind models.ContentKind, listingID uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		if errors.Is(err, models.ErrCommentTarget) {
			return models.NewValidationError(err.Error())
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByListing(
	ctx context.Context,
	kind models.ContentKind,
	listingID uint,
	limit, offset int,
) ([]*models.Comment, int64, error) {
	col, ok := models.CommentColumn(kind)
	if !ok {
		return nil, 0, models.NewValidationError("unknown content kind " + string(kind))
	}
	scope := r.db.WithContext(ctx).Model(&models.Comment{}).Where(col+" = ?", listingID)

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var comments []*models.Comment
	err := r.db.WithContext(ctx).Preload("User").
		Where(col+" = ?", listingID).
		Order("created_at desc").Order("id desc").
		Limit(limit).Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return comments, total, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Model(comment).Update("content", comment.Content).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) DeleteByListing(ctx context.Context, kind models.ContentKind, listingID uint) error {
	if err := deleteCommentsFor(r.db.WithContext(ctx), kind, listingID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func deleteCommentsFor(tx *gorm.DB, kind models.ContentKind, listingID uint) error {
	col, ok := models.CommentColumn(kind)
	if !ok {
		return models.ErrCommentTarget
	}
	return tx.Where(col+" = ?", listingID).Delete(&models.Comment{}).Error
}
