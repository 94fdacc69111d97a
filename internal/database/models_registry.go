package database

import "github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.News{},
		&models.Job{},
		&models.Event{},
		&models.CommunityPost{},
		&models.Property{},
		&models.PropertyAmenity{},
		&models.MediaAsset{},
		&models.Comment{},
		&models.PropertyInquiry{},
		&models.Notification{},
	}
}
