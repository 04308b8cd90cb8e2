package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/five82/shelf/internal/booktracker"
	"github.com/five82/shelf/internal/shelf"
)

func sampleReport() Report {
	books := []booktracker.Book{
		{ID: 1, Title: "Dune", Author: "Frank Herbert", Genre: "SF", Status: booktracker.StatusReading, PagesRead: 100, TotalPages: 400, Rating: 4},
		{ID: 2, Title: "A|B", Author: "Pipe", Status: booktracker.StatusCompleted, TotalPages: 0, Rating: 0},
	}
	sessions := []booktracker.ReadingSession{
		{ID: "1", BookID: 1, StartTime: "2024-01-02T10:00:00Z", PagesRead: 60},
		{ID: "2", BookID: 1, StartTime: "2024-01-03T10:00:00Z", PagesRead: 40},
	}
	view := shelf.Derive(books, sessions, shelf.Options{Filter: shelf.FilterAll, Sort: shelf.SortTitleAsc, Today: "2024-01-03"})
	return Report{
		GeneratedAt: time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC),
		View:        view,
	}
}

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"", FormatMarkdown, false},
		{"Markdown", FormatMarkdown, false},
		{"html", FormatHTML, false},
		{"yml", FormatYAML, false},
		{"JSON", FormatJSON, false},
		{"pdf", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseFormat(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sampleReport())

	assert.True(t, strings.HasPrefix(out, "# Reading report\n"))
	assert.Contains(t, out, "_Generated 2024-01-03 12:00 UTC for 2024-01-03_")
	assert.Contains(t, out, "| 2 | 1 | 1 | 0 | 4.0 | SF |")
	assert.Contains(t, out, "- Avg pages/day: 50.0")
	assert.Contains(t, out, "- Reading streak: 2 days")
	assert.Contains(t, out, "| 2024-01-02 | 60 |")
	assert.Contains(t, out, "## Books (All, Title A-Z)")
	assert.Contains(t, out, "| Dune | Frank Herbert | Reading | 25% (100/400) | 4/5 |")
	assert.Contains(t, out, `| A\|B | Pipe | Completed | – | —`, "pipes are escaped and missing values marked")

	// Title order: "A|B" sorts before "Dune".
	assert.Less(t, strings.Index(out, `A\|B`), strings.Index(out, "| Dune |"))
}

func TestMarkdown_Empty(t *testing.T) {
	r := Report{Title: "Empty", View: shelf.Derive(nil, nil, shelf.Options{Today: "2024-01-01"}), FromCache: true}
	out := Markdown(r)

	assert.Contains(t, out, "# Empty")
	assert.Contains(t, out, "from data cached")
	assert.Contains(t, out, "| 0 | 0 | 0 | 0 | — | — |")
	assert.Contains(t, out, "- Avg pages/day: 0")
	assert.Contains(t, out, "No reading sessions yet.")
	assert.Contains(t, out, "No books match.")
}

func TestRender_HTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatHTML, sampleReport()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Reading report</title>")
	assert.Contains(t, out, "<h1>Reading report</h1>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>Frank Herbert</td>")
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatYAML, sampleReport()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "2024-01-03", decoded["today"])

	stats := decoded["stats"].(map[string]any)
	assert.Equal(t, "4.0", stats["avg_rating"])
	pace := decoded["pace"].(map[string]any)
	assert.Equal(t, 2, pace["streak_days"])
	assert.Equal(t, "50.0", pace["avg_display"])

	books := decoded["books"].([]any)
	require.Len(t, books, 2)
	dune := books[1].(map[string]any)
	assert.Equal(t, "Dune", dune["title"])
	assert.Equal(t, 25, dune["progress"])
	assert.Equal(t, 100, dune["pages_read"])
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, sampleReport()))

	var decoded struct {
		Stats shelf.Stats `json:"stats"`
		Pace  struct {
			StreakDays int    `json:"streakDays"`
			AvgDisplay string `json:"avgDisplay"`
		} `json:"pace"`
		Daily []shelf.DayTotal `json:"daily"`
		Books []struct {
			ID       int64 `json:"id"`
			Progress int   `json:"progress"`
		} `json:"books"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 2, decoded.Stats.Total)
	assert.Equal(t, 2, decoded.Pace.StreakDays)
	assert.Equal(t, "50.0", decoded.Pace.AvgDisplay)
	assert.Len(t, decoded.Daily, 2)
	require.Len(t, decoded.Books, 2)
	assert.Equal(t, int64(1), decoded.Books[1].ID)
	assert.Equal(t, 25, decoded.Books[1].Progress)
}

func TestRender_UnknownFormat(t *testing.T) {
	assert.Error(t, Render(&bytes.Buffer{}, Format("pdf"), sampleReport()))
}
