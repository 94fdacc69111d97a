package service

import (
	"context"
	"testing"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inquiryFixture struct {
	svc      *InquiryService
	notifier *recordingNotifier
	property *models.Property
	owner    models.Actor
	buyer    models.Actor
	admin    models.Actor
}

func setupInquiries(t *testing.T) *inquiryFixture {
	t.Helper()
	db := setupDB(t)
	f := &inquiryFixture{
		notifier: &recordingNotifier{},
		owner:    seedUser(t, db, "owner", models.RoleUser),
		buyer:    seedUser(t, db, "buyer", models.RoleUser),
		admin:    seedUser(t, db, "admin", models.RoleAdmin),
	}
	props := repository.NewPropertyRepository(db)
	p := newRental("Flat in Bistupur", 800)
	p.AuthorID = f.owner.ID
	p.Status = models.StatusApproved
	require.NoError(t, props.Create(context.Background(), p))
	f.property = p
	f.svc = NewInquiryService(repository.NewInquiryRepository(db), props, f.notifier)
	return f
}

func TestInquiryService_ClickThenSubmitUpgrades(t *testing.T) {
	f := setupInquiries(t)
	ctx := context.Background()

	clicked, err := f.svc.Click(ctx, f.buyer, f.property.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InquiryClicked, clicked.Status)

	again, err := f.svc.Click(ctx, f.buyer, f.property.ID)
	require.NoError(t, err)
	assert.Equal(t, clicked.ID, again.ID)
	assert.Empty(t, f.notifier.sent())

	submitted, err := f.svc.Submit(ctx, f.buyer, f.property.ID, SubmitInquiryInput{Phone: "+91 98765 43210", Message: "Is it available?"})
	require.NoError(t, err)
	assert.Equal(t, clicked.ID, submitted.ID)
	assert.Equal(t, models.InquiryNew, submitted.Status)
	assert.Equal(t, "+919876543210", submitted.Phone)
	require.NotNil(t, submitted.SubmittedAt)

	sent := f.notifier.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, f.owner.ID, sent[0].UserID)

	// Resubmitting updates contact details without a second notification.
	resubmitted, err := f.svc.Submit(ctx, f.buyer, f.property.ID, SubmitInquiryInput{Phone: "9123456789"})
	require.NoError(t, err)
	assert.Equal(t, clicked.ID, resubmitted.ID)
	assert.Equal(t, "9123456789", resubmitted.Phone)
	assert.Len(t, f.notifier.sent(), 1)

	mine, err := f.svc.ListMine(ctx, f.buyer, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.TotalElements)
}

func TestInquiryService_SubmitWithoutClick(t *testing.T) {
	f := setupInquiries(t)
	inquiry, err := f.svc.Submit(context.Background(), f.buyer, f.property.ID, SubmitInquiryInput{Phone: "9876543210"})
	require.NoError(t, err)
	assert.Equal(t, models.InquiryNew, inquiry.Status)
	assert.Len(t, f.notifier.sent(), 1)
}

func TestInquiryService_Rules(t *testing.T) {
	f := setupInquiries(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.buyer, f.property.ID, SubmitInquiryInput{Phone: "12345"})
	assertValidationError(t, err)

	_, err = f.svc.Click(ctx, f.owner, f.property.ID)
	assertValidationError(t, err)

	_, err = f.svc.Click(ctx, models.Actor{}, f.property.ID)
	assertCode(t, err, models.CodeUnauthorized)

	_, err = f.svc.Click(ctx, f.buyer, 999)
	assertCode(t, err, models.CodeNotFound)
}

func TestInquiryService_UpdateStatus(t *testing.T) {
	f := setupInquiries(t)
	ctx := context.Background()

	clicked, err := f.svc.Click(ctx, f.buyer, f.property.ID)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, f.owner, clicked.ID, models.InquiryContacted)
	assertValidationError(t, err)

	_, err = f.svc.Submit(ctx, f.buyer, f.property.ID, SubmitInquiryInput{Phone: "9876543210"})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.buyer, clicked.ID, models.InquiryContacted)
	assertCode(t, err, models.CodeForbidden)
	_, err = f.svc.UpdateStatus(ctx, f.owner, clicked.ID, models.InquiryClicked)
	assertValidationError(t, err)

	contacted, err := f.svc.UpdateStatus(ctx, f.owner, clicked.ID, models.InquiryContacted)
	require.NoError(t, err)
	assert.Equal(t, models.InquiryContacted, contacted.Status)

	spam, err := f.svc.UpdateStatus(ctx, f.admin, clicked.ID, models.InquirySpam)
	require.NoError(t, err)
	assert.Equal(t, models.InquirySpam, spam.Status)

	_, err = f.svc.ListForProperty(ctx, f.buyer, f.property.ID, 0, 10)
	assertCode(t, err, models.CodeForbidden)
	page, err := f.svc.ListForProperty(ctx, f.owner, f.property.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, models.InquirySpam, page.Items[0].Status)
}
