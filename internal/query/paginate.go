package query

import "github.com/gstlog-visualizer/backend/internal/models"

const (
	// DefaultPageSize is used when the caller does not specify a page size.
	DefaultPageSize = 100
	// MaxPageSize caps response size.
	MaxPageSize = 1000
)

// Page is one deterministic slice of a filtered result set.
type Page struct {
	Entries    []*models.Entry
	Number     int
	Total      int
	TotalPages int
}

// Paginate slices a filtered sequence. Page numbers are 1-based and clamped
// to a minimum of 1; a page beyond the last yields an empty entry list with
// totals still populated.
func Paginate(entries []*models.Entry, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	total := len(entries)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start >= total {
		return Page{Entries: []*models.Entry{}, Number: page, Total: total, TotalPages: totalPages}
	}

	end := start + pageSize
	if end > total {
		end = total
	}

	return Page{Entries: entries[start:end], Number: page, Total: total, TotalPages: totalPages}
}
