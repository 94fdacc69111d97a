package filter

import (
	"testing"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Property{}, &models.PropertyAmenity{}, &models.MediaAsset{}, &models.News{}))
	return db
}

func seedProperty(t *testing.T, db *gorm.DB, p models.Property, amenities ...string) *models.Property {
	t.Helper()
	if p.Title == "" {
		p.Title = "Listing"
	}
	if p.Description == "" {
		p.Description = "A well kept home"
	}
	if p.PropertyType == "" {
		p.PropertyType = models.PropertyTypeApartment
	}
	if p.PropertyStatus == "" {
		p.PropertyStatus = models.PropertyForSale
	}
	if p.Status == "" {
		p.Status = models.StatusApproved
	}
	p.AuthorID = 1
	p.SetAmenities(amenities)
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func run(t *testing.T, db *gorm.DB, req Request) ([]models.Property, int64) {
	t.Helper()
	q, err := Compile(req, PropertySchema)
	require.NoError(t, err)

	var total int64
	require.NoError(t, Apply(db.Model(&models.Property{}), q, PropertySchema).Count(&total).Error)

	var items []models.Property
	require.NoError(t, Paginate(Apply(db.Model(&models.Property{}), q, PropertySchema), q, PropertySchema).Find(&items).Error)
	return items, total
}

func TestApplyScenarioRanchiRentals(t *testing.T) {
	db := setupDB(t)
	seedProperty(t, db, models.Property{ListingBase: models.ListingBase{District: "Ranchi"}, PropertyStatus: models.PropertyForRent, Area: 400})
	seedProperty(t, db, models.Property{ListingBase: models.ListingBase{District: "Ranchi"}, PropertyStatus: models.PropertyForRent, Area: 600})
	seedProperty(t, db, models.Property{ListingBase: models.ListingBase{District: "Ranchi"}, PropertyStatus: models.PropertyForRent, Area: 900})
	seedProperty(t, db, models.Property{ListingBase: models.ListingBase{District: "Ranchi", Status: models.StatusPending}, PropertyStatus: models.PropertyForRent, Area: 700})

	items, total := run(t, db, Request{
		PropertyStatus: ptr("FOR_RENT"),
		District:       ptr("Ranchi"),
		MinArea:        ptr(500.0),
		SortBy:         "area",
		SortDir:        "asc",
	})

	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, 600.0, items[0].Area)
	assert.Equal(t, 900.0, items[1].Area)
}

func TestApplyEmptyRequestReturnsAllApprovedPaginated(t *testing.T) {
	db := setupDB(t)
	for i := 0; i < 5; i++ {
		seedProperty(t, db, models.Property{Price: float64(i)})
	}
	seedProperty(t, db, models.Property{ListingBase: models.ListingBase{Status: models.StatusRejected}})

	items, total := run(t, db, Request{Size: ptr(2), Page: ptr(2)})
	assert.Equal(t, int64(5), total)
	assert.Len(t, items, 1)
}

func TestApplyPriceRange(t *testing.T) {
	db := setupDB(t)
	for _, price := range []float64{500, 1500, 2500, 3500} {
		seedProperty(t, db, models.Property{Price: price})
	}

	items, _ := run(t, db, Request{MinPrice: ptr(1000.0), MaxPrice: ptr(3000.0)})
	require.Len(t, items, 2)
	for _, it := range items {
		assert.GreaterOrEqual(t, it.Price, 1000.0)
		assert.LessOrEqual(t, it.Price, 3000.0)
	}

	items, total := run(t, db, Request{MinPrice: ptr(3501.0)})
	assert.Empty(t, items)
	assert.Equal(t, int64(0), total)
}

func TestApplyAmenitiesRequiresAll(t *testing.T) {
	db := setupDB(t)
	both := seedProperty(t, db, models.Property{}, "lift", "gym", "pool")
	seedProperty(t, db, models.Property{}, "lift")
	seedProperty(t, db, models.Property{}, "gym")

	items, total := run(t, db, Request{Amenities: []string{"Lift", "GYM"}})
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, both.ID, items[0].ID)
}

func TestApplyTextMatchesTitleOrDescription(t *testing.T) {
	db := setupDB(t)
	seedProperty(t, db, models.Property{ListingBase: models.ListingBase{Title: "Lake View Villa"}})
	seedProperty(t, db, models.Property{Description: "Walking distance to the LAKE"})
	seedProperty(t, db, models.Property{ListingBase: models.ListingBase{Title: "100% sunny"}})
	seedProperty(t, db, models.Property{ListingBase: models.ListingBase{Title: "City centre"}})

	_, total := run(t, db, Request{Query: ptr("lake")})
	assert.Equal(t, int64(2), total)

	_, total = run(t, db, Request{Query: ptr("100%")})
	assert.Equal(t, int64(1), total)
}

func TestApplyNewsCategory(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Create(&models.News{ListingBase: models.ListingBase{Title: "Budget", AuthorID: 1, Status: models.StatusApproved}, Content: "x", Category: "politics"}).Error)
	require.NoError(t, db.Create(&models.News{ListingBase: models.ListingBase{Title: "Derby", AuthorID: 1, Status: models.StatusApproved}, Content: "x", Category: "sports"}).Error)

	q, err := Compile(Request{Category: ptr("sports")}, NewsSchema)
	require.NoError(t, err)
	var items []models.News
	require.NoError(t, Paginate(Apply(db.Model(&models.News{}), q, NewsSchema), q, NewsSchema).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, "Derby", items[0].Title)
}
