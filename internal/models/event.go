package models

import "time"

// Event is a scheduled local event.
type Event struct {
	ListingBase
	Description string       `gorm:"type:text;not null" json:"description"`
	Venue       string       `json:"venue,omitempty"`
	StartsAt    *time.Time   `gorm:"index" json:"starts_at,omitempty"`
	EndsAt      *time.Time   `json:"ends_at,omitempty"`
	Media       []MediaAsset `gorm:"polymorphic:Owner;polymorphicValue:events" json:"media"`
}

func (Event) TableName() string { return "events" }

func (e *Event) Kind() ContentKind           { return KindEvent }
func (e *Event) Body() string                { return e.Description }
func (e *Event) GetMedia() []MediaAsset      { return e.Media }
func (e *Event) SetMedia(media []MediaAsset) { e.Media = media }

func (e *Event) Validate() error {
	if err := validateBase(&e.ListingBase, e.Description, "description"); err != nil {
		return err
	}
	if e.StartsAt != nil && e.EndsAt != nil && e.EndsAt.Before(*e.StartsAt) {
		return NewValidationError("ends_at must not be before starts_at")
	}
	return nil
}
