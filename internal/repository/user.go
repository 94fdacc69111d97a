package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/cache"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id uint, role models.Role) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	UpdateFCMToken(ctx context.Context, id uint, token string) error
	FCMToken(ctx context.Context, id uint) (string, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Update writes the profile columns of user. Credentials, role and push
// token have dedicated writers because cached users do not carry them.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Model(user).Select("Username", "Email", "Phone", "District").Updates(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) updateColumn(ctx context.Context, id uint, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id uint, role models.Role) error {
	return r.updateColumn(ctx, id, "role", role)
}

// UpdatePassword stores an already hashed password.
func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.updateColumn(ctx, id, "password", hash)
}

func (r *userRepository) UpdateFCMToken(ctx context.Context, id uint, token string) error {
	return r.updateColumn(ctx, id, "fcm_token", token)
}

// FCMToken reads the push token straight from the store; it is never cached.
func (r *userRepository) FCMToken(ctx context.Context, id uint) (string, error) {
	var tokens []string
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Limit(1).Pluck("fcm_token", &tokens).Error; err != nil {
		return "", models.NewInternalError(err)
	}
	if len(tokens) == 0 {
		return "", models.NewNotFoundError("User", id)
	}
	return tokens[0], nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).Order("id ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
