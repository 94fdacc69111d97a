package models

import "time"

// Notification is a persisted in-app notification.
type Notification struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;index:idx_notifications_user_read" json:"user_id"`
	Title         string     `json:"title,omitempty"`
	Message       string     `gorm:"type:text;not null" json:"message"`
	ReferenceID   *uint      `json:"reference_id,omitempty"`
	ReferenceType string     `gorm:"type:varchar(32)" json:"reference_type,omitempty"`
	IsRead        bool       `gorm:"not null;default:false;index:idx_notifications_user_read" json:"is_read"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NotificationMessage is the payload handed to the notifier.
type NotificationMessage struct {
	UserID        uint   `json:"user_id"`
	Title         string `json:"title,omitempty"`
	Message       string `json:"message"`
	ReferenceID   *uint  `json:"reference_id,omitempty"`
	ReferenceType string `json:"reference_type,omitempty"`
}

// Record converts the message into a storable notification.
func (m NotificationMessage) Record() *Notification {
	return &Notification{
		UserID:        m.UserID,
		Title:         m.Title,
		Message:       m.Message,
		ReferenceID:   m.ReferenceID,
		ReferenceType: m.ReferenceType,
	}
}
