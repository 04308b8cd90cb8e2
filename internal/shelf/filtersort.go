package shelf

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/five82/shelf/internal/booktracker"
)

// Filter selects books by status.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterReading    Filter = "reading"
	FilterCompleted  Filter = "completed"
	FilterNotStarted Filter = "not-started"
)

var filterOrder = []Filter{FilterAll, FilterReading, FilterCompleted, FilterNotStarted}

// ParseFilter maps a filter name to a Filter. Unknown names select all books.
func ParseFilter(value string) Filter {
	normalized := Filter(strings.ToLower(strings.TrimSpace(value)))
	if slices.Contains(filterOrder, normalized) {
		return normalized
	}
	return FilterAll
}

// Filters returns every filter in display order.
func Filters() []Filter {
	return slices.Clone(filterOrder)
}

// Next cycles through the filters in display order.
func (f Filter) Next() Filter {
	for i, known := range filterOrder {
		if f == known {
			return filterOrder[(i+1)%len(filterOrder)]
		}
	}
	return FilterAll
}

// Label is the human form shown in headers.
func (f Filter) Label() string {
	switch f {
	case FilterReading:
		return "Reading"
	case FilterCompleted:
		return "Completed"
	case FilterNotStarted:
		return "Not Started"
	default:
		return "All"
	}
}

// Match reports whether b passes the filter.
func (f Filter) Match(b booktracker.Book) bool {
	switch f {
	case FilterReading:
		return b.Status == booktracker.StatusReading
	case FilterCompleted:
		return b.Status == booktracker.StatusCompleted
	case FilterNotStarted:
		return b.Status == booktracker.StatusNotStarted
	default:
		return true
	}
}

// SortKey orders the filtered books. Keys outside the known set leave the
// order unchanged.
type SortKey string

const (
	SortNone         SortKey = ""
	SortTitleAsc     SortKey = "title-asc"
	SortTitleDesc    SortKey = "title-desc"
	SortProgressAsc  SortKey = "progress-asc"
	SortProgressDesc SortKey = "progress-desc"
	SortRatingAsc    SortKey = "rating-asc"
	SortRatingDesc   SortKey = "rating-desc"
)

var sortOrder = []SortKey{
	SortTitleAsc, SortTitleDesc,
	SortProgressAsc, SortProgressDesc,
	SortRatingAsc, SortRatingDesc,
}

// ParseSortKey normalizes a sort name. Unknown names are kept as-is and
// sort as identity.
func ParseSortKey(value string) SortKey {
	return SortKey(strings.ToLower(strings.TrimSpace(value)))
}

// SortKeys returns the recognized keys in display order.
func SortKeys() []SortKey {
	return slices.Clone(sortOrder)
}

// Known reports whether k is a recognized key.
func (k SortKey) Known() bool {
	return slices.Contains(sortOrder, k)
}

// Next cycles through the recognized keys.
func (k SortKey) Next() SortKey {
	for i, known := range sortOrder {
		if k == known {
			return sortOrder[(i+1)%len(sortOrder)]
		}
	}
	return sortOrder[0]
}

// Label is the human form shown in headers.
func (k SortKey) Label() string {
	switch k {
	case SortTitleAsc:
		return "Title A-Z"
	case SortTitleDesc:
		return "Title Z-A"
	case SortProgressAsc:
		return "Progress ↑"
	case SortProgressDesc:
		return "Progress ↓"
	case SortRatingAsc:
		return "Rating ↑"
	case SortRatingDesc:
		return "Rating ↓"
	default:
		return "Unsorted"
	}
}

// FilterSort returns a new slice holding the books that pass filter,
// stably ordered by key. The input is never modified.
func FilterSort(books []booktracker.Book, filter Filter, key SortKey) []booktracker.Book {
	out := make([]booktracker.Book, 0, len(books))
	for _, b := range books {
		if filter.Match(b) {
			out = append(out, b)
		}
	}
	if cmp := comparator(key); cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

func comparator(key SortKey) func(a, b booktracker.Book) int {
	switch key {
	case SortTitleAsc, SortTitleDesc:
		// collate.Collator is not safe for concurrent use.
		col := collate.New(language.Und)
		if key == SortTitleDesc {
			return func(a, b booktracker.Book) int { return col.CompareString(b.Title, a.Title) }
		}
		return func(a, b booktracker.Book) int { return col.CompareString(a.Title, b.Title) }
	case SortProgressAsc:
		return func(a, b booktracker.Book) int { return BookProgress(a) - BookProgress(b) }
	case SortProgressDesc:
		return func(a, b booktracker.Book) int { return BookProgress(b) - BookProgress(a) }
	case SortRatingAsc:
		return func(a, b booktracker.Book) int { return a.Rating - b.Rating }
	case SortRatingDesc:
		return func(a, b booktracker.Book) int { return b.Rating - a.Rating }
	default:
		return nil
	}
}
