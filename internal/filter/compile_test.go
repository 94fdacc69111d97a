package filter

import (
	"math"
	"testing"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestCompileEmptyRequestIsApprovedOnly(t *testing.T) {
	q, err := Compile(Request{}, PropertySchema)
	require.NoError(t, err)

	require.Len(t, q.Predicates, 1)
	assert.Equal(t, Predicate{Field: FieldStatus, Op: OpEq, Value: "APPROVED"}, q.Predicates[0])
	assert.Equal(t, Sort{Column: "created_at", Desc: true}, q.Sort)
	assert.Equal(t, 0, q.Page)
	assert.Equal(t, DefaultPageSize, q.Size)
}

func TestCompileStatusCannotBeOverridden(t *testing.T) {
	q, err := Compile(Request{PropertyStatus: ptr("FOR_RENT")}, PropertySchema)
	require.NoError(t, err)

	assert.Equal(t, FieldStatus, q.Predicates[0].Field)
	assert.Equal(t, "APPROVED", q.Predicates[0].Value)
	for _, p := range q.Predicates[1:] {
		assert.NotEqual(t, FieldStatus, p.Field)
	}
}

func TestCompileEachDimensionOnePredicate(t *testing.T) {
	req := Request{
		Query:            ptr("  Lake View "),
		District:         ptr("Ranchi"),
		Locality:         ptr("Morabadi"),
		PropertyType:     ptr("apartment"),
		PropertyStatus:   ptr("for_rent"),
		MinPrice:         ptr(1000.0),
		MaxPrice:         ptr(5000.0),
		MinArea:          ptr(500.0),
		Bedrooms:         ptr(2),
		ParkingAvailable: ptr(true),
		Amenities:        []string{"Lift", "gym", "lift", "  "},
	}
	q, err := Compile(req, PropertySchema)
	require.NoError(t, err)

	assert.Equal(t, []Predicate{
		{Field: FieldStatus, Op: OpEq, Value: "APPROVED"},
		{Field: FieldText, Op: OpContainsFold, Value: "lake view"},
		{Field: "district", Op: OpEq, Value: "Ranchi"},
		{Field: "locality", Op: OpEq, Value: "Morabadi"},
		{Field: "property_type", Op: OpEq, Value: "APARTMENT"},
		{Field: "property_status", Op: OpEq, Value: "FOR_RENT"},
		{Field: "price", Op: OpGte, Value: 1000.0},
		{Field: "price", Op: OpLte, Value: 5000.0},
		{Field: "area", Op: OpGte, Value: 500.0},
		{Field: "bedrooms", Op: OpEq, Value: 2},
		{Field: "parking_available", Op: OpEq, Value: true},
		{Field: FieldMembers, Op: OpHasMember, Value: "lift"},
		{Field: FieldMembers, Op: OpHasMember, Value: "gym"},
	}, q.Predicates)
}

func TestCompileBlankTextIsIgnored(t *testing.T) {
	q, err := Compile(Request{Query: ptr("   "), City: ptr("")}, NewsSchema)
	require.NoError(t, err)
	assert.Len(t, q.Predicates, 1)
}

func TestCompileRejectsUnsupportedDimension(t *testing.T) {
	_, err := Compile(Request{MinPrice: ptr(10.0)}, NewsSchema)
	assertValidationError(t, err)

	_, err = Compile(Request{Amenities: []string{"lift"}}, JobSchema)
	assertValidationError(t, err)

	_, err = Compile(Request{Category: ptr("politics")}, NewsSchema)
	assert.NoError(t, err)
}

func TestCompileRejectsInvertedRange(t *testing.T) {
	_, err := Compile(Request{MinPrice: ptr(500.0), MaxPrice: ptr(100.0)}, PropertySchema)
	assertValidationError(t, err)
}

func TestCompileSort(t *testing.T) {
	q, err := Compile(Request{SortBy: "price", SortDir: "ASC"}, PropertySchema)
	require.NoError(t, err)
	assert.Equal(t, Sort{Column: "price", Desc: false}, q.Sort)

	q, err = Compile(Request{SortBy: "view_count"}, PropertySchema)
	require.NoError(t, err)
	assert.Equal(t, Sort{Column: "view_count", Desc: true}, q.Sort)

	q, err = Compile(Request{SortBy: "createdAt"}, EventSchema)
	require.NoError(t, err)
	assert.Equal(t, "created_at", q.Sort.Column)

	_, err = Compile(Request{SortBy: "password"}, PropertySchema)
	assertValidationError(t, err)

	_, err = Compile(Request{SortBy: "price"}, NewsSchema)
	assertValidationError(t, err)

	_, err = Compile(Request{SortDir: "sideways"}, PropertySchema)
	assertValidationError(t, err)
}

func TestCompilePagination(t *testing.T) {
	q, err := Compile(Request{Page: ptr(3), Size: ptr(500)}, PropertySchema)
	require.NoError(t, err)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, MaxPageSize, q.Size)
	assert.Equal(t, 300, q.Offset())

	q, err = Compile(Request{Size: ptr(0)}, PropertySchema)
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, q.Size)

	_, err = Compile(Request{Page: ptr(-1)}, PropertySchema)
	assertValidationError(t, err)
}

func TestCompileRejectsPageBeyondAddressableOffset(t *testing.T) {
	_, err := Compile(Request{Page: ptr(math.MaxInt / 10), Size: ptr(20)}, PropertySchema)
	assertValidationError(t, err)

	last := math.MaxInt / 20
	q, err := Compile(Request{Page: ptr(last), Size: ptr(20)}, PropertySchema)
	require.NoError(t, err)
	assert.Positive(t, q.Offset())
}

func TestNewQueryClampsHugePage(t *testing.T) {
	q := NewQuery(math.MaxInt/10, 20)
	assert.Equal(t, math.MaxInt/20, q.Page)
	assert.GreaterOrEqual(t, q.Offset(), 0)

	q = NewQuery(-4, 0)
	assert.Equal(t, 0, q.Page)
	assert.Equal(t, DefaultPageSize, q.Size)
}

func TestFingerprintDiffersByPredicate(t *testing.T) {
	a, err := Compile(Request{District: ptr("Ranchi")}, PropertySchema)
	require.NoError(t, err)
	b, err := Compile(Request{District: ptr("Dhanbad")}, PropertySchema)
	require.NoError(t, err)
	again, err := Compile(Request{District: ptr("Ranchi")}, PropertySchema)
	require.NoError(t, err)

	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, a.Fingerprint(), again.Fingerprint())
}

func TestFromQueryArgs(t *testing.T) {
	args := map[string]string{
		"q":                 "flat",
		"district":          "Ranchi",
		"min_price":         "1000",
		"bedrooms":          "2",
		"parking_available": "true",
		"amenities":         "lift,gym",
		"sort_by":           "price",
		"page":              "1",
	}
	req, err := FromQueryArgs(func(k string) string { return args[k] })
	require.NoError(t, err)

	assert.Equal(t, "flat", *req.Query)
	assert.Equal(t, "Ranchi", *req.District)
	assert.Equal(t, 1000.0, *req.MinPrice)
	assert.Nil(t, req.MaxPrice)
	assert.Equal(t, 2, *req.Bedrooms)
	assert.True(t, *req.ParkingAvailable)
	assert.Equal(t, []string{"lift", "gym"}, req.Amenities)
	assert.Equal(t, "price", req.SortBy)
	assert.Equal(t, 1, *req.Page)

	_, err = FromQueryArgs(func(k string) string {
		if k == "min_area" {
			return "big"
		}
		return ""
	})
	assertValidationError(t, err)
}

func TestNewPageMetadata(t *testing.T) {
	q := NewQuery(1, 10)
	p := NewPage([]int{1, 2, 3}, 23, q)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(23), p.TotalElements)
	assert.Equal(t, 1, p.Page)

	empty := NewPage[int](nil, 0, q)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}
