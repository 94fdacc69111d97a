package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/filter"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/observability"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/repository"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/validation"
)

// PropertyFinder loads a property by id.
type PropertyFinder interface {
	FindByID(ctx context.Context, id uint) (*models.Property, error)
}

// InquiryService captures buyer interest in two phases: a click on the
// contact button, then an optional form submission with a phone number.
type InquiryService struct {
	inquiryRepo repository.InquiryRepository
	properties  PropertyFinder
	notifier    Notifier
	now         func() time.Time
}

type SubmitInquiryInput struct {
	Phone   string
	Message string
}

func NewInquiryService(inquiryRepo repository.InquiryRepository, properties PropertyFinder, notifier Notifier) *InquiryService {
	return &InquiryService{
		inquiryRepo: inquiryRepo,
		properties:  properties,
		notifier:    notifier,
		now:         time.Now,
	}
}

// inquirable loads a published property the actor may inquire about.
func (s *InquiryService) inquirable(ctx context.Context, actor models.Actor, propertyID uint) (*models.Property, error) {
	if actor.ID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	property, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !property.IsApproved() {
		return nil, models.NewNotFoundError(string(models.KindProperty), propertyID)
	}
	if actor.Owns(property.AuthorID) {
		return nil, models.NewValidationError("You cannot inquire about your own property")
	}
	return property, nil
}

// Click records that actor opened the contact details of a property. A
// repeated click returns the existing inquiry.
func (s *InquiryService) Click(ctx context.Context, actor models.Actor, propertyID uint) (*models.PropertyInquiry, error) {
	if _, err := s.inquirable(ctx, actor, propertyID); err != nil {
		return nil, err
	}
	inquiry := &models.PropertyInquiry{
		PropertyID: propertyID,
		UserID:     actor.ID,
		Status:     models.InquiryClicked,
		ClickedAt:  s.now(),
	}
	if _, err := s.inquiryRepo.CreateIfAbsent(ctx, inquiry); err != nil {
		return nil, err
	}
	return inquiry, nil
}

// Submit records the contact form. An earlier click is upgraded to NEW
// rather than duplicated, and the owner is notified of first submissions.
func (s *InquiryService) Submit(ctx context.Context, actor models.Actor, propertyID uint, in SubmitInquiryInput) (*models.PropertyInquiry, error) {
	phone := validation.NormalizePhone(in.Phone)
	if err := validation.ValidatePhone(phone); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	const maxMessageLen = 2000
	message := strings.TrimSpace(in.Message)
	if len(message) > maxMessageLen {
		return nil, models.NewValidationError("Message too long (max 2000 characters)")
	}

	property, err := s.inquirable(ctx, actor, propertyID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	inquiry := &models.PropertyInquiry{
		PropertyID:  propertyID,
		UserID:      actor.ID,
		Status:      models.InquiryNew,
		Phone:       phone,
		Message:     message,
		ClickedAt:   now,
		SubmittedAt: &now,
	}
	created, err := s.inquiryRepo.CreateIfAbsent(ctx, inquiry)
	if err != nil {
		return nil, err
	}

	firstSubmission := created
	if !created {
		// inquiry now holds the stored row.
		if inquiry.Status == models.InquiryClicked {
			inquiry.Status = models.InquiryNew
			inquiry.SubmittedAt = &now
			firstSubmission = true
		}
		inquiry.Phone = phone
		inquiry.Message = message
		if err := s.inquiryRepo.Save(ctx, inquiry); err != nil {
			return nil, err
		}
	}

	observability.LogTransition(ctx, "property_inquiry", inquiry.ID, "submit", actor.ID,
		map[string]interface{}{"property_id": propertyID, "status": string(inquiry.Status)})
	if firstSubmission && s.notifier != nil {
		ref := property.ID
		s.notifier.Notify(ctx, models.NotificationMessage{
			UserID:        property.AuthorID,
			Title:         "New inquiry",
			Message:       fmt.Sprintf("Someone is interested in your property %q.", property.Title),
			ReferenceID:   &ref,
			ReferenceType: string(models.KindProperty),
		})
	}
	return inquiry, nil
}

// UpdateStatus moves a submitted inquiry through the owner's follow-up
// states. The property owner and admins may do this.
func (s *InquiryService) UpdateStatus(ctx context.Context, actor models.Actor, inquiryID uint, status models.InquiryStatus) (*models.PropertyInquiry, error) {
	inquiry, err := s.inquiryRepo.GetByID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	property, err := s.properties.FindByID(ctx, inquiry.PropertyID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.Owns(property.AuthorID) {
		return nil, models.NewForbiddenError("Only the property owner can update inquiries")
	}
	if !status.Followup() {
		return nil, models.NewValidationError("invalid inquiry status " + string(status))
	}
	if inquiry.Status == models.InquiryClicked {
		return nil, models.NewValidationError("inquiry has not been submitted yet")
	}

	inquiry.Status = status
	if err := s.inquiryRepo.Save(ctx, inquiry); err != nil {
		return nil, err
	}
	return inquiry, nil
}

// ListForProperty returns the inquiries on a property to its owner or an admin.
func (s *InquiryService) ListForProperty(ctx context.Context, actor models.Actor, propertyID uint, page, size int) (filter.Page[*models.PropertyInquiry], error) {
	property, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		return filter.Page[*models.PropertyInquiry]{}, err
	}
	if !actor.IsAdmin() && !actor.Owns(property.AuthorID) {
		return filter.Page[*models.PropertyInquiry]{}, models.NewForbiddenError("Only the property owner can view inquiries")
	}
	q := filter.NewQuery(page, size)
	items, total, err := s.inquiryRepo.ListByProperty(ctx, propertyID, q.Size, q.Offset())
	if err != nil {
		return filter.Page[*models.PropertyInquiry]{}, err
	}
	return filter.NewPage(items, total, q), nil
}

// ListMine returns the inquiries actor has made.
func (s *InquiryService) ListMine(ctx context.Context, actor models.Actor, page, size int) (filter.Page[*models.PropertyInquiry], error) {
	q := filter.NewQuery(page, size)
	items, total, err := s.inquiryRepo.ListByUser(ctx, actor.ID, q.Size, q.Offset())
	if err != nil {
		return filter.Page[*models.PropertyInquiry]{}, err
	}
	return filter.NewPage(items, total, q), nil
}

// ExpireClicks deletes click-only inquiries older than cutoff.
func (s *InquiryService) ExpireClicks(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.inquiryRepo.DeleteClickedBefore(ctx, cutoff)
}
