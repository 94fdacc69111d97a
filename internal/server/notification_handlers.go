package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetNotifications returns the caller's inbox. ?unread=true limits it to
// unread entries.
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	page, size := pageParams(c)
	result, err := s.inbox.List(c.UserContext(), actor, c.QueryBool("unread", false), page, size)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	count, err := s.inbox.UnreadCount(c.UserContext(), actor)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"unread": count})
}

func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	if err := s.inbox.MarkRead(c.UserContext(), actor, id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllNotificationsRead clears the caller's unread count.
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	n, err := s.inbox.MarkAllRead(c.UserContext(), actor)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}
