package service

import (
	"context"
	"strings"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/repository"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

type SignupInput struct {
	Username string
	Email    string
	Password string
	Phone    string
	District string
}

type UpdateProfileInput struct {
	Phone    string
	District string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, bcryptCost: bcrypt.DefaultCost}
}

// Signup validates and registers a new USER account.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Username, email, and password are required")
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.Phone != "" {
		in.Phone = validation.NormalizePhone(in.Phone)
		if err := validation.ValidatePhone(in.Phone); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
		Role:     models.RoleUser,
		Phone:    in.Phone,
		District: strings.TrimSpace(in.District),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user with email when password matches.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Actor resolves the authorization context of user id.
func (s *UserService) Actor(ctx context.Context, id uint) (models.Actor, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return models.Actor{}, err
	}
	return user.Actor(), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, actor models.Actor, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if in.Phone != "" {
		phone := validation.NormalizePhone(in.Phone)
		if err := validation.ValidatePhone(phone); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Phone = phone
	}
	if district := strings.TrimSpace(in.District); district != "" {
		user.District = district
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RegisterDevice stores the push token of actor's device. An empty token
// unregisters it.
func (s *UserService) RegisterDevice(ctx context.Context, actor models.Actor, token string) error {
	return s.userRepo.UpdateFCMToken(ctx, actor.ID, strings.TrimSpace(token))
}

// SetRole changes the role of a user. Admin only; admins cannot demote
// themselves.
func (s *UserService) SetRole(ctx context.Context, actor models.Actor, targetID uint, role models.Role) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, models.NewForbiddenError("Only admins can change roles")
	}
	if !role.Valid() {
		return nil, models.NewValidationError("unknown role " + string(role))
	}
	if targetID == actor.ID && role != models.RoleAdmin {
		return nil, models.NewValidationError("admins cannot demote themselves")
	}
	if err := s.userRepo.UpdateRole(ctx, targetID, role); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, targetID)
}

func (s *UserService) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return s.userRepo.ListByRole(ctx, role)
}
