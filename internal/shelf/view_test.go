package shelf

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/five82/shelf/internal/booktracker"
)

func TestDerive(t *testing.T) {
	books := sampleBooks()
	sessions := []booktracker.ReadingSession{
		{BookID: 1, StartTime: "2024-01-02T08:00:00Z", PagesRead: 30},
		{BookID: 5, StartTime: "2024-01-03T08:00:00Z", PagesRead: 10},
		{BookID: 1, StartTime: "2024-01-03T20:00:00Z", PagesRead: 20},
	}

	view := Derive(books, sessions, Options{Filter: FilterReading, Sort: SortProgressDesc, Today: "2024-01-03"})

	assert.Equal(t, []int64{4, 1, 5}, ids(view.Books))
	assert.Equal(t, 5, view.Stats.Total, "stats cover the unfiltered collection")
	assert.Equal(t, 3, view.Stats.Reading)
	assert.Equal(t, []DayTotal{{Day: "2024-01-02", Pages: 30}, {Day: "2024-01-03", Pages: 30}}, view.Daily)
	assert.Equal(t, 2, view.Pace.StreakDays)
	assert.Equal(t, "30.0", view.Pace.AvgDisplay())
	assert.Equal(t, FilterReading, view.Filter)
	assert.Equal(t, SortProgressDesc, view.Sort)
}

func TestDerive_EmptySnapshot(t *testing.T) {
	view := Derive(nil, nil, Options{Today: "2024-01-01"})

	assert.Empty(t, view.Books)
	assert.Empty(t, view.Daily)
	assert.Equal(t, NoData, view.Stats.AvgRating)
	assert.Equal(t, NoData, view.Stats.TopGenre)
	assert.Equal(t, Pace{}, view.Pace)
}

func TestSessionsForBook(t *testing.T) {
	sessions := []booktracker.ReadingSession{{ID: "a", BookID: 1}, {ID: "b", BookID: 2}, {ID: "c", BookID: 1}}
	got := SessionsForBook(sessions, 1)
	assert.Len(t, got, 2)
	assert.Equal(t, booktracker.SessionID("a"), got[0].ID)
	assert.Equal(t, booktracker.SessionID("c"), got[1].ID)
	assert.Nil(t, SessionsForBook(sessions, 9))
}
