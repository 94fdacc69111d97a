package service

import (
	"context"
	"strings"
	"testing"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// visibilityStub hides every listing except the ones it lists.
type visibilityStub map[models.ContentKind]uint

func (s visibilityStub) Visible(_ context.Context, kind models.ContentKind, _ models.Actor, id uint) error {
	if s[kind] == id {
		return nil
	}
	return models.NewNotFoundError(string(kind), id)
}

func TestCommentService_CreateComment_Validation(t *testing.T) {
	db := setupDB(t)
	reader := seedUser(t, db, "reader", models.RoleUser)
	svc := NewCommentService(repository.NewCommentRepository(db), visibilityStub{models.KindEvent: 7})
	ctx := context.Background()

	tests := []struct {
		name  string
		actor models.Actor
		in    CreateCommentInput
		code  string
	}{
		{"anonymous", models.Actor{}, CreateCommentInput{Kind: models.KindEvent, ListingID: 7, Content: "hi"}, models.CodeUnauthorized},
		{"empty", reader, CreateCommentInput{Kind: models.KindEvent, ListingID: 7, Content: "   "}, models.CodeValidation},
		{"too long", reader, CreateCommentInput{Kind: models.KindEvent, ListingID: 7, Content: strings.Repeat("x", 10001)}, models.CodeValidation},
		{"hidden listing", reader, CreateCommentInput{Kind: models.KindEvent, ListingID: 8, Content: "hi"}, models.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateComment(ctx, tt.actor, tt.in)
			assertCode(t, err, tt.code)
		})
	}
}

func TestCommentService_Lifecycle(t *testing.T) {
	db := setupDB(t)
	author := seedUser(t, db, "author", models.RoleUser)
	other := seedUser(t, db, "other", models.RoleUser)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	svc := NewCommentService(repository.NewCommentRepository(db), visibilityStub{models.KindProperty: 3})
	ctx := context.Background()

	created, err := svc.CreateComment(ctx, author, CreateCommentInput{Kind: models.KindProperty, ListingID: 3, Content: " Is parking included? "})
	require.NoError(t, err)
	assert.Equal(t, "Is parking included?", created.Content)
	require.NotNil(t, created.PropertyID)
	assert.Equal(t, uint(3), *created.PropertyID)
	assert.Nil(t, created.NewsID)

	page, err := svc.ListComments(ctx, other, models.KindProperty, 3, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalElements)

	_, err = svc.UpdateComment(ctx, other, created.ID, "hijack")
	assertCode(t, err, models.CodeForbidden)
	_, err = svc.UpdateComment(ctx, admin, created.ID, "moderated")
	assertCode(t, err, models.CodeForbidden)

	updated, err := svc.UpdateComment(ctx, author, created.ID, "Is covered parking included?")
	require.NoError(t, err)
	assert.Equal(t, "Is covered parking included?", updated.Content)

	_, err = svc.DeleteComment(ctx, other, created.ID)
	assertCode(t, err, models.CodeForbidden)
	_, err = svc.DeleteComment(ctx, admin, created.ID)
	require.NoError(t, err)

	_, err = svc.DeleteComment(ctx, admin, created.ID)
	assertCode(t, err, models.CodeNotFound)
}
