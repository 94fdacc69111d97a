package repository

import (
	"testing"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/database"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x", Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func newProperty(authorID uint, title string) *models.Property {
	p := &models.Property{
		ListingBase: models.ListingBase{
			Title:    title,
			AuthorID: authorID,
			Status:   models.StatusApproved,
			District: "Ranchi",
		},
		Description:    "Two bedroom flat near Morabadi",
		PropertyType:   models.PropertyTypeApartment,
		PropertyStatus: models.PropertyForRent,
		Price:          12000,
		Area:           850,
	}
	return p
}
