package filter

// Page is one window of a sorted result set.
type Page[T any] struct {
	Items         []T   `json:"items"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
}

// NewPage builds page metadata for items out of total matches.
func NewPage[T any](items []T, total int64, q Query) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if q.Size > 0 {
		pages = int((total + int64(q.Size) - 1) / int64(q.Size))
	}
	return Page[T]{
		Items:         items,
		TotalElements: total,
		TotalPages:    pages,
		Page:          q.Page,
		Size:          q.Size,
	}
}

// Map converts the items of p with fn, keeping the metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Items))
	for i, it := range p.Items {
		out[i] = fn(it)
	}
	return Page[U]{Items: out, TotalElements: p.TotalElements, TotalPages: p.TotalPages, Page: p.Page, Size: p.Size}
}
