package models

import (
	"strings"
	"time"
)

// ContentKind names one of the moderated content collections.
type ContentKind string

const (
	KindNews          ContentKind = "news"
	KindJob           ContentKind = "job"
	KindEvent         ContentKind = "event"
	KindCommunityPost ContentKind = "community_post"
	KindProperty      ContentKind = "property"
)

// AllKinds lists every moderated content kind.
var AllKinds = []ContentKind{KindNews, KindJob, KindEvent, KindCommunityPost, KindProperty}

// ModerationStatus gates public visibility of a listing.
type ModerationStatus string

const (
	StatusPending  ModerationStatus = "PENDING"
	StatusApproved ModerationStatus = "APPROVED"
	StatusRejected ModerationStatus = "REJECTED"
)

// Media roles.
const (
	MediaRoleImage     = "image"
	MediaRoleFloorPlan = "floor_plan"
)

// MediaAsset is an uploaded file attached to a listing. PublicID is the media
// store deletion handle and may be empty.
type MediaAsset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"not null;index:idx_media_owner" json:"-"`
	OwnerType string    `gorm:"type:varchar(32);not null;index:idx_media_owner" json:"-"`
	Role      string    `gorm:"type:varchar(16);not null;default:image" json:"role"`
	URL       string    `gorm:"not null" json:"url"`
	PublicID  string    `json:"-"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

func (MediaAsset) TableName() string { return "media_assets" }

// ListingBase carries the fields every moderated listing shares.
type ListingBase struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	Title           string           `gorm:"not null" json:"title"`
	Slug            string           `gorm:"index" json:"slug"`
	AuthorID        uint             `gorm:"not null;index" json:"author_id"`
	Status          ModerationStatus `gorm:"type:varchar(16);not null;default:PENDING;index" json:"status"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	ModeratedBy     *uint            `json:"moderated_by,omitempty"`
	ModeratedAt     *time.Time       `json:"moderated_at,omitempty"`
	State           string           `gorm:"index" json:"state,omitempty"`
	District        string           `gorm:"index" json:"district,omitempty"`
	City            string           `gorm:"index" json:"city,omitempty"`
	CreatedAt       time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Base exposes the shared fields of the embedding listing.
func (b *ListingBase) Base() *ListingBase { return b }

func (b *ListingBase) GetID() uint { return b.ID }

// IsApproved reports whether the listing is publicly visible.
func (b *ListingBase) IsApproved() bool { return b.Status == StatusApproved }

// Listing is implemented by every moderated content type.
type Listing interface {
	GetID() uint
	Base() *ListingBase
	Kind() ContentKind
	Body() string
	GetMedia() []MediaAsset
	SetMedia(media []MediaAsset)
	Validate() error
}

// MediaRequirer is implemented by listings that need a minimum number of images.
type MediaRequirer interface {
	MinImages() int
}

func validateBase(b *ListingBase, body, bodyField string) error {
	if strings.TrimSpace(b.Title) == "" {
		return NewValidationError("title is required")
	}
	if strings.TrimSpace(body) == "" {
		return NewValidationError(bodyField + " is required")
	}
	return nil
}
