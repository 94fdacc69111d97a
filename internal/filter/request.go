// Package filter compiles sparse search requests into conjunctive store
// predicates and executes them with store-side sorting and pagination.
package filter

import (
	"strconv"
	"strings"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
)

// Pagination defaults.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Request is a sparse search request. Nil fields impose no constraint.
type Request struct {
	Query            *string  `json:"query,omitempty"`
	State            *string  `json:"state,omitempty"`
	District         *string  `json:"district,omitempty"`
	City             *string  `json:"city,omitempty"`
	Locality         *string  `json:"locality,omitempty"`
	Category         *string  `json:"category,omitempty"`
	JobType          *string  `json:"job_type,omitempty"`
	PropertyType     *string  `json:"property_type,omitempty"`
	PropertyStatus   *string  `json:"property_status,omitempty"`
	Furnishing       *string  `json:"furnishing,omitempty"`
	PostedByType     *string  `json:"posted_by_type,omitempty"`
	Availability     *string  `json:"availability,omitempty"`
	MinPrice         *float64 `json:"min_price,omitempty"`
	MaxPrice         *float64 `json:"max_price,omitempty"`
	MinArea          *float64 `json:"min_area,omitempty"`
	MaxArea          *float64 `json:"max_area,omitempty"`
	Bedrooms         *int     `json:"bedrooms,omitempty"`
	Bathrooms        *int     `json:"bathrooms,omitempty"`
	ParkingAvailable *bool    `json:"parking_available,omitempty"`
	Amenities        []string `json:"amenities,omitempty"`
	SortBy           string   `json:"sort_by,omitempty"`
	SortDir          string   `json:"sort_dir,omitempty"`
	Page             *int     `json:"page,omitempty"`
	Size             *int     `json:"size,omitempty"`
}

// FromQueryArgs builds a Request from URL query parameters. get returns ""
// for absent keys. Malformed numbers are validation errors.
func FromQueryArgs(get func(key string) string) (Request, error) {
	var req Request
	str := func(key string) *string {
		v := strings.TrimSpace(get(key))
		if v == "" {
			return nil
		}
		return &v
	}
	req.Query = str("q")
	if req.Query == nil {
		req.Query = str("query")
	}
	req.State = str("state")
	req.District = str("district")
	req.City = str("city")
	req.Locality = str("locality")
	req.Category = str("category")
	req.JobType = str("job_type")
	req.PropertyType = str("property_type")
	req.PropertyStatus = str("property_status")
	req.Furnishing = str("furnishing")
	req.PostedByType = str("posted_by_type")
	req.Availability = str("availability")

	var err error
	if req.MinPrice, err = parseFloat(get, "min_price"); err != nil {
		return req, err
	}
	if req.MaxPrice, err = parseFloat(get, "max_price"); err != nil {
		return req, err
	}
	if req.MinArea, err = parseFloat(get, "min_area"); err != nil {
		return req, err
	}
	if req.MaxArea, err = parseFloat(get, "max_area"); err != nil {
		return req, err
	}
	if req.Bedrooms, err = parseInt(get, "bedrooms"); err != nil {
		return req, err
	}
	if req.Bathrooms, err = parseInt(get, "bathrooms"); err != nil {
		return req, err
	}
	if req.Page, err = parseInt(get, "page"); err != nil {
		return req, err
	}
	if req.Size, err = parseInt(get, "size"); err != nil {
		return req, err
	}
	if v := strings.TrimSpace(get("parking_available")); v != "" {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			return req, models.NewValidationError("parking_available must be true or false")
		}
		req.ParkingAvailable = &b
	}
	if v := get("amenities"); v != "" {
		req.Amenities = strings.Split(v, ",")
	}
	req.SortBy = strings.TrimSpace(get("sort_by"))
	req.SortDir = strings.TrimSpace(get("sort_dir"))
	return req, nil
}

func parseFloat(get func(string) string, key string) (*float64, error) {
	v := strings.TrimSpace(get(key))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, models.NewValidationError(key + " must be a number")
	}
	return &f, nil
}

func parseInt(get func(string) string, key string) (*int, error) {
	v := strings.TrimSpace(get(key))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, models.NewValidationError(key + " must be an integer")
	}
	return &n, nil
}
