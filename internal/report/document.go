package report

import (
	"time"

	"github.com/five82/shelf/internal/booktracker"
	"github.com/five82/shelf/internal/shelf"
)

// document is the structured form written as YAML and JSON.
type document struct {
	Title       string           `json:"title" yaml:"title"`
	GeneratedAt time.Time        `json:"generatedAt" yaml:"generated_at"`
	FromCache   bool             `json:"fromCache" yaml:"from_cache"`
	FetchedAt   *time.Time       `json:"fetchedAt,omitempty" yaml:"fetched_at,omitempty"`
	Today       shelf.Day        `json:"today" yaml:"today"`
	Filter      shelf.Filter     `json:"filter" yaml:"filter"`
	Sort        shelf.SortKey    `json:"sort" yaml:"sort"`
	Stats       shelf.Stats      `json:"stats" yaml:"stats"`
	Pace        pace             `json:"pace" yaml:"pace"`
	Daily       []shelf.DayTotal `json:"daily" yaml:"daily"`
	Books       []bookRow        `json:"books" yaml:"books"`
}

type pace struct {
	shelf.Pace `yaml:",inline"`
	Display    string `json:"avgDisplay" yaml:"avg_display"`
}

type bookRow struct {
	booktracker.Book `yaml:",inline"`
	Progress         int `json:"progress" yaml:"progress"`
}

func newDocument(r Report) document {
	v := r.View
	doc := document{
		Title:       title(r),
		GeneratedAt: r.GeneratedAt,
		FromCache:   r.FromCache,
		Today:       v.Today,
		Filter:      v.Filter,
		Sort:        v.Sort,
		Stats:       v.Stats,
		Pace:        pace{Pace: v.Pace, Display: v.Pace.AvgDisplay()},
		Daily:       v.Daily,
		Books:       make([]bookRow, len(v.Books)),
	}
	if doc.Daily == nil {
		doc.Daily = []shelf.DayTotal{}
	}
	if r.FromCache && !r.FetchedAt.IsZero() {
		fetched := r.FetchedAt
		doc.FetchedAt = &fetched
	}
	for i, b := range v.Books {
		doc.Books[i] = bookRow{Book: b, Progress: shelf.BookProgress(b)}
	}
	return doc
}
