package models

import (
	"strings"

	"gorm.io/gorm"
)

// PropertyStatus is the sale/rental sub-status of a property, orthogonal to
// moderation.
type PropertyStatus string

const (
	PropertyForSale PropertyStatus = "FOR_SALE"
	PropertyForRent PropertyStatus = "FOR_RENT"
	PropertySold    PropertyStatus = "SOLD"
	PropertyRented  PropertyStatus = "RENTED"
)

// Valid reports whether s is a known property status.
func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyForSale, PropertyForRent, PropertySold, PropertyRented:
		return true
	}
	return false
}

// CanBecome reports whether a property in status s may move to next.
// Only FOR_SALE -> SOLD and FOR_RENT -> RENTED are allowed.
func (s PropertyStatus) CanBecome(next PropertyStatus) bool {
	switch s {
	case PropertyForSale:
		return next == PropertySold
	case PropertyForRent:
		return next == PropertyRented
	}
	return false
}

// Property types, furnishing levels and poster types accepted on listings.
const (
	PropertyTypeApartment  = "APARTMENT"
	PropertyTypeHouse      = "HOUSE"
	PropertyTypeVilla      = "VILLA"
	PropertyTypePlot       = "PLOT"
	PropertyTypeCommercial = "COMMERCIAL"
	PropertyTypePG         = "PG"

	FurnishingFull  = "FURNISHED"
	FurnishingSemi  = "SEMI_FURNISHED"
	FurnishingNone  = "UNFURNISHED"
	PostedByOwner   = "OWNER"
	PostedByAgent   = "AGENT"
	PostedByBuilder = "BUILDER"
)

// PropertyAmenity is one amenity attached to a property.
type PropertyAmenity struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	PropertyID uint   `gorm:"not null;uniqueIndex:idx_property_amenity" json:"-"`
	Name       string `gorm:"type:varchar(64);not null;uniqueIndex:idx_property_amenity;index" json:"name"`
}

func (PropertyAmenity) TableName() string { return "property_amenities" }

// NormalizeAmenity folds an amenity name to its stored form.
func NormalizeAmenity(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Property is a real-estate listing for sale or rent.
type Property struct {
	ListingBase
	Description      string            `gorm:"type:text;not null" json:"description"`
	PropertyType     string            `gorm:"type:varchar(32);not null;index" json:"property_type"`
	PropertyStatus   PropertyStatus    `gorm:"type:varchar(16);not null;default:FOR_SALE;index" json:"property_status"`
	Price            float64           `gorm:"index" json:"price"`
	Area             float64           `json:"area"`
	Bedrooms         int               `json:"bedrooms"`
	Bathrooms        int               `json:"bathrooms"`
	Furnishing       string            `gorm:"type:varchar(32)" json:"furnishing,omitempty"`
	PostedByType     string            `gorm:"type:varchar(16)" json:"posted_by_type,omitempty"`
	Availability     string            `gorm:"type:varchar(32)" json:"availability,omitempty"`
	ParkingAvailable bool              `json:"parking_available"`
	Locality         string            `gorm:"index" json:"locality,omitempty"`
	ContactPhone     string            `json:"contact_phone,omitempty"`
	ViewCount        int64             `gorm:"not null;default:0" json:"view_count"`
	AmenityRows      []PropertyAmenity `gorm:"foreignKey:PropertyID" json:"-"`
	Amenities        []string          `gorm:"-" json:"amenities"`
	Media            []MediaAsset      `gorm:"polymorphic:Owner;polymorphicValue:properties" json:"media"`
}

func (Property) TableName() string { return "properties" }

func (p *Property) Kind() ContentKind           { return KindProperty }
func (p *Property) Body() string                { return p.Description }
func (p *Property) GetMedia() []MediaAsset      { return p.Media }
func (p *Property) SetMedia(media []MediaAsset) { p.Media = media }

func (p *Property) Validate() error {
	if err := validateBase(&p.ListingBase, p.Description, "description"); err != nil {
		return err
	}
	if strings.TrimSpace(p.PropertyType) == "" {
		return NewValidationError("property_type is required")
	}
	if p.PropertyStatus == "" {
		p.PropertyStatus = PropertyForSale
	}
	if !p.PropertyStatus.Valid() {
		return NewValidationError("unknown property_status " + string(p.PropertyStatus))
	}
	if p.Price < 0 || p.Area < 0 || p.Bedrooms < 0 || p.Bathrooms < 0 {
		return NewValidationError("price, area, bedrooms and bathrooms must not be negative")
	}
	return nil
}

// SetAmenities replaces the amenity set, dropping blanks and duplicates.
func (p *Property) SetAmenities(names []string) {
	seen := make(map[string]struct{}, len(names))
	p.Amenities = make([]string, 0, len(names))
	p.AmenityRows = nil
	for _, n := range names {
		n = NormalizeAmenity(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		p.Amenities = append(p.Amenities, n)
		p.AmenityRows = append(p.AmenityRows, PropertyAmenity{Name: n})
	}
}

// Images returns the gallery images in upload order.
func (p *Property) Images() []MediaAsset { return mediaByRole(p.Media, MediaRoleImage) }

// FloorPlans returns the floor plan images in upload order.
func (p *Property) FloorPlans() []MediaAsset { return mediaByRole(p.Media, MediaRoleFloorPlan) }

// AfterFind fills Amenities from the loaded amenity rows.
func (p *Property) AfterFind(_ *gorm.DB) error {
	if len(p.AmenityRows) > 0 {
		p.Amenities = make([]string, 0, len(p.AmenityRows))
		for _, a := range p.AmenityRows {
			p.Amenities = append(p.Amenities, a.Name)
		}
	}
	return nil
}

func mediaByRole(media []MediaAsset, role string) []MediaAsset {
	out := make([]MediaAsset, 0, len(media))
	for _, m := range media {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}
