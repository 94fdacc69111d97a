package filter

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
)

// Op is a predicate operator.
type Op string

const (
	OpEq           Op = "eq"
	OpGte          Op = "gte"
	OpLte          Op = "lte"
	OpContainsFold Op = "contains_fold"
	OpHasMember    Op = "has_member"
)

// Pseudo-fields that expand through the schema rather than naming a column.
const (
	FieldText    = "$text"
	FieldMembers = "$members"
	FieldStatus  = "status"
	FieldAuthor  = "author_id"
)

// Predicate is one (field, op, value) constraint. All predicates of a Query
// are ANDed.
type Predicate struct {
	Field string `json:"field"`
	Op    Op     `json:"op"`
	Value any    `json:"value"`
}

// Sort orders a page by a schema column.
type Sort struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc"`
}

// Query is a compiled, store-independent search.
type Query struct {
	Predicates []Predicate `json:"predicates"`
	Sort       Sort        `json:"sort"`
	Page       int         `json:"page"`
	Size       int         `json:"size"`
}

// Offset returns the row offset of the requested page.
func (q Query) Offset() int {
	return q.Page * q.Size
}

// Fingerprint returns a stable hash of the query, used as a cache key.
func (q Query) Fingerprint() string {
	raw, _ := json.Marshal(q)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// NewQuery returns a query over preds sorted newest first, with page and
// size normalized. Pages past the last addressable offset are clamped so
// they read as empty rather than wrapping around.
func NewQuery(page, size int, preds ...Predicate) Query {
	size = normalizeSize(size)
	if page < 0 {
		page = 0
	}
	if page > maxPage(size) {
		page = maxPage(size)
	}
	return Query{
		Predicates: preds,
		Sort:       Sort{Column: "created_at", Desc: true},
		Page:       page,
		Size:       size,
	}
}

// maxPage is the largest page whose offset fits in an int.
func maxPage(size int) int {
	return math.MaxInt / size
}

// Approved returns the plain approved listing query.
func Approved(page, size int) Query {
	return NewQuery(page, size, Predicate{Field: FieldStatus, Op: OpEq, Value: string(models.StatusApproved)})
}

func normalizeSize(size int) int {
	switch {
	case size <= 0:
		return DefaultPageSize
	case size > MaxPageSize:
		return MaxPageSize
	}
	return size
}

type compiler struct {
	schema Schema
	preds  []Predicate
	err    error
}

func (c *compiler) add(d Dimension, op Op, value any) {
	if c.err != nil {
		return
	}
	if !c.schema.Supports(d) {
		c.err = models.NewValidationError(fmt.Sprintf("filter %q is not supported for %s", d, c.schema.Kind))
		return
	}
	c.preds = append(c.preds, Predicate{Field: c.schema.column(d), Op: op, Value: value})
}

func (c *compiler) text(d Dimension, v *string) {
	if v == nil {
		return
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return
	}
	c.add(d, OpEq, s)
}

func (c *compiler) floatRange(d Dimension, minV, maxV *float64) {
	if minV != nil && maxV != nil && *minV > *maxV {
		if c.err == nil {
			c.err = models.NewValidationError(fmt.Sprintf("min_%s must not exceed max_%s", d, d))
		}
		return
	}
	if minV != nil {
		c.add(d, OpGte, *minV)
	}
	if maxV != nil {
		c.add(d, OpLte, *maxV)
	}
}

// Compile turns req into a Query against schema. The first predicate is
// always status == APPROVED; no request field can lift it.
func Compile(req Request, schema Schema) (Query, error) {
	c := &compiler{schema: schema}
	c.preds = append(c.preds, Predicate{Field: FieldStatus, Op: OpEq, Value: string(models.StatusApproved)})

	if req.Query != nil {
		if q := strings.TrimSpace(*req.Query); q != "" {
			c.preds = append(c.preds, Predicate{Field: FieldText, Op: OpContainsFold, Value: strings.ToLower(q)})
		}
	}

	c.text(DimState, req.State)
	c.text(DimDistrict, req.District)
	c.text(DimCity, req.City)
	c.text(DimLocality, req.Locality)
	c.text(DimCategory, req.Category)
	c.text(DimJobType, req.JobType)
	c.text(DimPropertyType, upper(req.PropertyType))
	c.text(DimPropertyStatus, upper(req.PropertyStatus))
	c.text(DimFurnishing, upper(req.Furnishing))
	c.text(DimPostedByType, upper(req.PostedByType))
	c.text(DimAvailability, upper(req.Availability))
	c.floatRange(DimPrice, req.MinPrice, req.MaxPrice)
	c.floatRange(DimArea, req.MinArea, req.MaxArea)
	if req.Bedrooms != nil {
		c.add(DimBedrooms, OpEq, *req.Bedrooms)
	}
	if req.Bathrooms != nil {
		c.add(DimBathrooms, OpEq, *req.Bathrooms)
	}
	if req.ParkingAvailable != nil {
		c.add(DimParkingAvailable, OpEq, *req.ParkingAvailable)
	}
	c.amenities(req.Amenities)
	if c.err != nil {
		return Query{}, c.err
	}

	sort, err := compileSort(req.SortBy, req.SortDir, schema)
	if err != nil {
		return Query{}, err
	}

	size := 0
	if req.Size != nil {
		size = *req.Size
	}
	size = normalizeSize(size)
	page := 0
	if req.Page != nil {
		if *req.Page < 0 {
			return Query{}, models.NewValidationError("page must not be negative")
		}
		if *req.Page > maxPage(size) {
			return Query{}, models.NewValidationError(fmt.Sprintf("page must not exceed %d", maxPage(size)))
		}
		page = *req.Page
	}

	return Query{
		Predicates: c.preds,
		Sort:       sort,
		Page:       page,
		Size:       size,
	}, nil
}

func (c *compiler) amenities(names []string) {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = models.NormalizeAmenity(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if c.err != nil {
			return
		}
		if !c.schema.Supports(DimAmenities) {
			c.err = models.NewValidationError(fmt.Sprintf("filter %q is not supported for %s", DimAmenities, c.schema.Kind))
			return
		}
		c.preds = append(c.preds, Predicate{Field: FieldMembers, Op: OpHasMember, Value: n})
	}
}

func compileSort(field, dir string, schema Schema) (Sort, error) {
	sort := Sort{Column: "created_at", Desc: true}
	if f := strings.TrimSpace(field); f != "" {
		col, ok := schema.SortFields[sortKey(f)]
		if !ok {
			return Sort{}, models.NewValidationError(fmt.Sprintf("cannot sort %s by %q", schema.Kind, f))
		}
		sort.Column = col
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "desc":
		sort.Desc = true
	case "asc":
		sort.Desc = false
	default:
		return Sort{}, models.NewValidationError(fmt.Sprintf("sort direction must be asc or desc, got %q", dir))
	}
	return sort, nil
}

// sortKey folds createdAt, created_at and CreatedAt to the same key.
func sortKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

func upper(v *string) *string {
	if v == nil {
		return nil
	}
	u := strings.ToUpper(strings.TrimSpace(*v))
	return &u
}
