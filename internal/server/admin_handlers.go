package server

import (
	"log/slog"
	"strings"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns the raw flag values and what they resolve to for
// the calling admin.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{
		"flags":    s.featureFlags.Raw(),
		"resolved": s.featureFlags.Snapshot(actor.ID),
	})
}

// SetFeatureFlag changes one flag at runtime. Values are on, off, or a
// rollout percentage.
func (s *Server) SetFeatureFlag(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Params("name"))
	var req struct {
		Value string `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respond(c, models.NewValidationError("Invalid request body"))
	}
	if err := s.featureFlags.Set(name, req.Value); err != nil {
		return respond(c, models.NewValidationError(err.Error()))
	}
	middleware.Logger.InfoContext(c.UserContext(), "feature flag changed",
		slog.String("flag", name), slog.String("value", req.Value))
	return c.JSON(fiber.Map{"flags": s.featureFlags.Raw()})
}

// SetUserRole promotes or demotes an account.
func (s *Server) SetUserRole(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	var req struct {
		Role models.Role `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respond(c, models.NewValidationError("Invalid request body"))
	}
	user, err := s.users.SetRole(c.UserContext(), actor, id, models.Role(strings.ToUpper(string(req.Role))))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}

// GetUsersByRole lists accounts holding ?role= (default ADMIN).
func (s *Server) GetUsersByRole(c *fiber.Ctx) error {
	role := models.Role(strings.ToUpper(c.Query("role", string(models.RoleAdmin))))
	if !role.Valid() {
		return respond(c, models.NewValidationError("unknown role "+string(role)))
	}
	users, err := s.users.ListByRole(c.UserContext(), role)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(users)
}
