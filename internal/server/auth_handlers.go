package server

import (
	"log/slog"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignupRequest represents the signup request body
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	District string `json:"district"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Signup handles user registration
func (s *Server) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.users.Signup(c.UserContext(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		District: req.District,
	})
	if err != nil {
		return respond(c, err)
	}

	token, _, err := middleware.IssueToken(s.config.JWTSecret, user.ID, s.config.JWTTTL())
	if err != nil {
		return respond(c, models.NewInternalError(err))
	}
	middleware.Logger.InfoContext(c.UserContext(), "user signed up", slog.Uint64("user_id", uint64(user.ID)))
	return c.Status(fiber.StatusCreated).JSON(AuthResponse{Token: token, User: user})
}

// Login handles user login
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.users.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respond(c, err)
	}

	token, _, err := middleware.IssueToken(s.config.JWTSecret, user.ID, s.config.JWTTTL())
	if err != nil {
		return respond(c, models.NewInternalError(err))
	}
	return c.JSON(AuthResponse{Token: token, User: user})
}

// Logout revokes the current access token until it expires.
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, _ := c.Locals("claims").(*middleware.TokenClaims)
	if err := middleware.RevokeToken(c.UserContext(), s.redis, claims); err != nil {
		return respond(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// GetMyProfile returns the authenticated user.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	user, err := s.users.GetUserByID(c.UserContext(), actor.ID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile changes the phone number and district of the caller.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	var req struct {
		Phone    string `json:"phone"`
		District string `json:"district"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respond(c, models.NewValidationError("Invalid request body"))
	}
	user, err := s.users.UpdateProfile(c.UserContext(), actor, service.UpdateProfileInput{
		Phone:    req.Phone,
		District: req.District,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}

// RegisterDevice stores the push token of the caller's device.
func (s *Server) RegisterDevice(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respond(c, models.NewValidationError("Invalid request body"))
	}
	if err := s.users.RegisterDevice(c.UserContext(), actor, req.Token); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
