package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrCommentTarget is returned when a comment does not reference exactly one listing.
var ErrCommentTarget = errors.New("comment must reference exactly one listing")

// Comment is a reader comment on a single listing. Exactly one of the
// per-kind reference columns is set.
type Comment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	User            *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	NewsID          *uint     `gorm:"index" json:"news_id,omitempty"`
	JobID           *uint     `gorm:"index" json:"job_id,omitempty"`
	EventID         *uint     `gorm:"index" json:"event_id,omitempty"`
	CommunityPostID *uint     `gorm:"index" json:"community_post_id,omitempty"`
	PropertyID      *uint     `gorm:"index" json:"property_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CommentColumn returns the reference column used for comments on kind.
func CommentColumn(kind ContentKind) (string, bool) {
	switch kind {
	case KindNews:
		return "news_id", true
	case KindJob:
		return "job_id", true
	case KindEvent:
		return "event_id", true
	case KindCommunityPost:
		return "community_post_id", true
	case KindProperty:
		return "property_id", true
	}
	return "", false
}

// SetTarget points the comment at the listing (kind, id), clearing any other reference.
func (c *Comment) SetTarget(kind ContentKind, id uint) error {
	c.NewsID, c.JobID, c.EventID, c.CommunityPostID, c.PropertyID = nil, nil, nil, nil, nil
	ref := id
	switch kind {
	case KindNews:
		c.NewsID = &ref
	case KindJob:
		c.JobID = &ref
	case KindEvent:
		c.EventID = &ref
	case KindCommunityPost:
		c.CommunityPostID = &ref
	case KindProperty:
		c.PropertyID = &ref
	default:
		return ErrCommentTarget
	}
	return nil
}

// Target returns the listing the comment belongs to.
func (c *Comment) Target() (ContentKind, uint, bool) {
	refs := []struct {
		kind ContentKind
		id   *uint
	}{
		{KindNews, c.NewsID},
		{KindJob, c.JobID},
		{KindEvent, c.EventID},
		{KindCommunityPost, c.CommunityPostID},
		{KindProperty, c.PropertyID},
	}
	var (
		kind  ContentKind
		id    uint
		found int
	)
	for _, r := range refs {
		if r.id != nil {
			kind, id = r.kind, *r.id
			found++
		}
	}
	return kind, id, found == 1
}

func (c *Comment) BeforeSave(_ *gorm.DB) error {
	if _, _, ok := c.Target(); !ok {
		return ErrCommentTarget
	}
	return nil
}
