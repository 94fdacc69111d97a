package filter

import "github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

// Dimension is one optional filter axis of a Request.
type Dimension string

const (
	DimState            Dimension = "state"
	DimDistrict         Dimension = "district"
	DimCity             Dimension = "city"
	DimLocality         Dimension = "locality"
	DimCategory         Dimension = "category"
	DimJobType          Dimension = "job_type"
	DimPropertyType     Dimension = "property_type"
	DimPropertyStatus   Dimension = "property_status"
	DimFurnishing       Dimension = "furnishing"
	DimPostedByType     Dimension = "posted_by_type"
	DimAvailability     Dimension = "availability"
	DimPrice            Dimension = "price"
	DimArea             Dimension = "area"
	DimBedrooms         Dimension = "bedrooms"
	DimBathrooms        Dimension = "bathrooms"
	DimParkingAvailable Dimension = "parking_available"
	DimAmenities        Dimension = "amenities"
)

// Membership describes a one-to-many set column, e.g. property amenities.
type Membership struct {
	Table      string
	ForeignKey string
	Column     string
}

// Schema describes how a listing collection is searched. Every column name
// used in generated SQL comes from a Schema, never from the request.
type Schema struct {
	Kind        models.ContentKind
	Table       string
	TextColumns []string
	Columns     map[Dimension]string
	SortFields  map[string]string
	Membership  *Membership
}

// Supports reports whether the schema can filter on d.
func (s Schema) Supports(d Dimension) bool {
	if d == DimAmenities {
		return s.Membership != nil
	}
	_, ok := s.Columns[d]
	return ok
}

func (s Schema) column(d Dimension) string {
	return s.Columns[d]
}

func baseColumns(extra map[Dimension]string) map[Dimension]string {
	cols := map[Dimension]string{
		DimState:    "state",
		DimDistrict: "district",
		DimCity:     "city",
	}
	for k, v := range extra {
		cols[k] = v
	}
	return cols
}

func baseSorts(extra map[string]string) map[string]string {
	sorts := map[string]string{
		"createdat": "created_at",
		"updatedat": "updated_at",
		"title":     "title",
		"id":        "id",
	}
	for k, v := range extra {
		sorts[k] = v
	}
	return sorts
}

var (
	NewsSchema = Schema{
		Kind:        models.KindNews,
		Table:       "news",
		TextColumns: []string{"title", "content"},
		Columns:     baseColumns(map[Dimension]string{DimCategory: "category"}),
		SortFields:  baseSorts(nil),
	}

	JobSchema = Schema{
		Kind:        models.KindJob,
		Table:       "jobs",
		TextColumns: []string{"title", "description"},
		Columns:     baseColumns(map[Dimension]string{DimJobType: "job_type"}),
		SortFields:  baseSorts(map[string]string{"deadline": "deadline"}),
	}

	EventSchema = Schema{
		Kind:        models.KindEvent,
		Table:       "events",
		TextColumns: []string{"title", "description"},
		Columns:     baseColumns(nil),
		SortFields:  baseSorts(map[string]string{"startsat": "starts_at"}),
	}

	CommunityPostSchema = Schema{
		Kind:        models.KindCommunityPost,
		Table:       "community_posts",
		TextColumns: []string{"title", "content"},
		Columns:     baseColumns(nil),
		SortFields:  baseSorts(nil),
	}

	PropertySchema = Schema{
		Kind:        models.KindProperty,
		Table:       "properties",
		TextColumns: []string{"title", "description"},
		Columns: baseColumns(map[Dimension]string{
			DimLocality:         "locality",
			DimPropertyType:     "property_type",
			DimPropertyStatus:   "property_status",
			DimFurnishing:       "furnishing",
			DimPostedByType:     "posted_by_type",
			DimAvailability:     "availability",
			DimPrice:            "price",
			DimArea:             "area",
			DimBedrooms:         "bedrooms",
			DimBathrooms:        "bathrooms",
			DimParkingAvailable: "parking_available",
		}),
		SortFields: baseSorts(map[string]string{
			"price":     "price",
			"area":      "area",
			"bedrooms":  "bedrooms",
			"viewcount": "view_count",
		}),
		Membership: &Membership{
			Table:      "property_amenities",
			ForeignKey: "property_id",
			Column:     "name",
		},
	}
)

// SchemaFor returns the search schema of kind.
func SchemaFor(kind models.ContentKind) (Schema, bool) {
	switch kind {
	case models.KindNews:
		return NewsSchema, true
	case models.KindJob:
		return JobSchema, true
	case models.KindEvent:
		return EventSchema, true
	case models.KindCommunityPost:
		return CommunityPostSchema, true
	case models.KindProperty:
		return PropertySchema, true
	}
	return Schema{}, false
}
