package models

import "time"

// InquiryStatus tracks a user's interest in a property.
type InquiryStatus string

const (
	InquiryClicked       InquiryStatus = "CLICKED"
	InquiryNew           InquiryStatus = "NEW"
	InquiryContacted     InquiryStatus = "CONTACTED"
	InquiryInterested    InquiryStatus = "INTERESTED"
	InquiryNotInterested InquiryStatus = "NOT_INTERESTED"
	InquiryClosed        InquiryStatus = "CLOSED"
	InquirySpam          InquiryStatus = "SPAM"
)

// Valid reports whether s is a known inquiry status.
func (s InquiryStatus) Valid() bool {
	switch s {
	case InquiryClicked, InquiryNew, InquiryContacted, InquiryInterested,
		InquiryNotInterested, InquiryClosed, InquirySpam:
		return true
	}
	return false
}

// Followup reports whether s may be set by the property owner on a
// submitted inquiry.
func (s InquiryStatus) Followup() bool {
	switch s {
	case InquiryContacted, InquiryInterested, InquiryNotInterested, InquiryClosed, InquirySpam:
		return true
	}
	return false
}

// PropertyInquiry records one user's interest in one property.
type PropertyInquiry struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	PropertyID  uint          `gorm:"not null;uniqueIndex:idx_inquiry_user_property" json:"property_id"`
	UserID      uint          `gorm:"not null;uniqueIndex:idx_inquiry_user_property;index" json:"user_id"`
	User        *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status      InquiryStatus `gorm:"type:varchar(16);not null;default:CLICKED;index" json:"status"`
	Phone       string        `json:"phone,omitempty"`
	Message     string        `gorm:"type:text" json:"message,omitempty"`
	ClickedAt   time.Time     `json:"clicked_at"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (PropertyInquiry) TableName() string { return "property_inquiries" }
