package shelf

import "github.com/five82/shelf/internal/booktracker"

// Options select how Derive shapes the book list and anchor the streak.
type Options struct {
	Filter Filter
	Sort   SortKey
	Today  Day
}

// View is the render model shared by the TUI, CLI, and reports.
type View struct {
	Books  []booktracker.Book `json:"books" yaml:"books"`
	Stats  Stats              `json:"stats" yaml:"stats"`
	Daily  []DayTotal         `json:"daily" yaml:"daily"`
	Pace   Pace               `json:"pace" yaml:"pace"`
	Filter Filter             `json:"filter" yaml:"filter"`
	Sort   SortKey            `json:"sort" yaml:"sort"`
	Today  Day                `json:"today" yaml:"today"`
}

// Derive runs the whole pipeline over one snapshot. Stats cover the full
// collection; Books is the filtered and sorted list.
func Derive(books []booktracker.Book, sessions []booktracker.ReadingSession, opts Options) View {
	daily := DailyTotals(sessions)
	return View{
		Books:  FilterSort(books, opts.Filter, opts.Sort),
		Stats:  Aggregate(books),
		Daily:  SortedDays(daily),
		Pace:   PaceAndStreak(daily, opts.Today),
		Filter: opts.Filter,
		Sort:   opts.Sort,
		Today:  opts.Today,
	}
}

// SessionsForBook returns the sessions recorded against one book, in
// input order.
func SessionsForBook(sessions []booktracker.ReadingSession, bookID int64) []booktracker.ReadingSession {
	var out []booktracker.ReadingSession
	for _, s := range sessions {
		if s.BookID == bookID {
			out = append(out, s)
		}
	}
	return out
}
