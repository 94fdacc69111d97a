package server

import (
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UpdateComment edits a comment. Authors only.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respond(c, models.NewValidationError("Invalid request body"))
	}
	comment, err := s.comments.UpdateComment(c.UserContext(), actor, id, req.Content)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment removes a comment. Authors and admins only.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	if _, err := s.comments.DeleteComment(c.UserContext(), actor, id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
