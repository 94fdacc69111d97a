package server

import (
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdatePropertyStatus marks a property as sold or rented. Only the author
// may do so.
func (s *Server) UpdatePropertyStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	var req struct {
		Status models.PropertyStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respond(c, models.NewValidationError("Invalid request body"))
	}
	property, err := s.catalog.Properties.UpdateStatus(c.UserContext(), actor, id, req.Status)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(property)
}

// ClickInquiry records that the caller opened the contact form of a property.
func (s *Server) ClickInquiry(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	inquiry, err := s.inquiries.Click(c.UserContext(), actor, id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(inquiry)
}

// SubmitInquiry sends the caller's phone number and message to the owner.
func (s *Server) SubmitInquiry(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	var req struct {
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respond(c, models.NewValidationError("Invalid request body"))
	}
	inquiry, err := s.inquiries.Submit(c.UserContext(), actor, id, service.SubmitInquiryInput{
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inquiry)
}

// GetPropertyInquiries lists the inquiries on a property for its owner.
func (s *Server) GetPropertyInquiries(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	page, size := pageParams(c)
	result, err := s.inquiries.ListForProperty(c.UserContext(), actor, id, page, size)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

func (s *Server) GetMyInquiries(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	page, size := pageParams(c)
	result, err := s.inquiries.ListMine(c.UserContext(), actor, page, size)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

// UpdateInquiryStatus records the owner's follow-up on an inquiry.
func (s *Server) UpdateInquiryStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	var req struct {
		Status models.InquiryStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respond(c, models.NewValidationError("Invalid request body"))
	}
	inquiry, err := s.inquiries.UpdateStatus(c.UserContext(), actor, id, req.Status)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(inquiry)
}
