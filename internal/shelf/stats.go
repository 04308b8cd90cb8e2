package shelf

import (
	"github.com/shopspring/decimal"

	"github.com/five82/shelf/internal/booktracker"
)

// NoData is shown in place of an average or genre that cannot be computed.
const NoData = "—"

// Stats summarizes a book collection for the header.
type Stats struct {
	Total      int    `json:"total" yaml:"total"`
	Completed  int    `json:"completed" yaml:"completed"`
	Reading    int    `json:"reading" yaml:"reading"`
	NotStarted int    `json:"notStarted" yaml:"not_started"`
	Rated      int    `json:"rated" yaml:"rated"`
	AvgRating  string `json:"avgRating" yaml:"avg_rating"`
	TopGenre   string `json:"topGenre" yaml:"top_genre"`
}

// Aggregate counts books by status, averages positive ratings to one
// decimal, and picks the most common genre. Genre ties go to the genre
// seen first. Both derived fields fall back to NoData.
func Aggregate(books []booktracker.Book) Stats {
	stats := Stats{Total: len(books), AvgRating: NoData, TopGenre: NoData}

	var ratingSum int64
	genreCounts := make(map[string]int)
	var genreOrder []string

	for _, b := range books {
		switch b.Status {
		case booktracker.StatusCompleted:
			stats.Completed++
		case booktracker.StatusReading:
			stats.Reading++
		case booktracker.StatusNotStarted:
			stats.NotStarted++
		}
		if b.Rating > 0 {
			ratingSum += int64(b.Rating)
			stats.Rated++
		}
		if b.Genre != "" {
			if _, seen := genreCounts[b.Genre]; !seen {
				genreOrder = append(genreOrder, b.Genre)
			}
			genreCounts[b.Genre]++
		}
	}

	if stats.Rated > 0 {
		stats.AvgRating = decimal.NewFromInt(ratingSum).
			Div(decimal.NewFromInt(int64(stats.Rated))).
			StringFixed(1)
	}

	best := 0
	for _, genre := range genreOrder {
		if n := genreCounts[genre]; n > best {
			best = n
			stats.TopGenre = genre
		}
	}
	return stats
}
