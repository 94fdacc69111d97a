package service

import (
	"context"
	"strings"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/filter"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/repository"
)

// ListingVisibility reports NotFound unless viewer may see a listing.
type ListingVisibility interface {
	Visible(ctx context.Context, kind models.ContentKind, viewer models.Actor, id uint) error
}

type CommentService struct {
	commentRepo repository.CommentRepository
	listings    ListingVisibility
}

type CreateCommentInput struct {
	Kind      models.ContentKind
	ListingID uint
	Content   string
}

const maxCommentLen = 10000

func NewCommentService(commentRepo repository.CommentRepository, listings ListingVisibility) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		listings:    listings,
	}
}

func validateCommentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return "", models.NewValidationError("Comment too long (max 10000 characters)")
	}
	return content, nil
}

// CreateComment adds a comment to a listing the actor can see.
func (s *CommentService) CreateComment(ctx context.Context, actor models.Actor, in CreateCommentInput) (*models.Comment, error) {
	if actor.ID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	content, err := validateCommentContent(in.Content)
	if err != nil {
		return nil, err
	}
	if err := s.listings.Visible(ctx, in.Kind, actor, in.ListingID); err != nil {
		return nil, err
	}

	comment := &models.Comment{Content: content, UserID: actor.ID}
	if err := comment.SetTarget(in.Kind, in.ListingID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns a page of comments on a listing, newest first.
func (s *CommentService) ListComments(ctx context.Context, viewer models.Actor, kind models.ContentKind, listingID uint, page, size int) (filter.Page[*models.Comment], error) {
	if err := s.listings.Visible(ctx, kind, viewer, listingID); err != nil {
		return filter.Page[*models.Comment]{}, err
	}
	q := filter.NewQuery(page, size)
	items, total, err := s.commentRepo.ListByListing(ctx, kind, listingID, q.Size, q.Offset())
	if err != nil {
		return filter.Page[*models.Comment]{}, err
	}
	return filter.NewPage(items, total, q), nil
}

func (s *CommentService) UpdateComment(ctx context.Context, actor models.Actor, commentID uint, content string) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if !actor.Owns(comment.UserID) {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}
	if comment.Content, err = validateCommentContent(content); err != nil {
		return nil, err
	}

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) DeleteComment(ctx context.Context, actor models.Actor, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if !actor.Owns(comment.UserID) && !actor.IsAdmin() {
		return nil, models.NewForbiddenError("You can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return nil, err
	}
	return comment, nil
}
