package booktracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidInput marks payloads that violate the book or session shape.
var ErrInvalidInput = errors.New("invalid input")

// DefaultRating is applied when a create or update carries no rating.
const DefaultRating = 3

const goalDateLayout = "2006-01-02"

// Status is the reading lifecycle state of a book.
type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusReading    Status = "Reading"
	StatusCompleted  Status = "Completed"
)

var statusOrder = []Status{StatusNotStarted, StatusReading, StatusCompleted}

// ParseStatus accepts the backend labels and the front-end slugs
// ("not-started", "reading", "completed"), case-insensitively.
func ParseStatus(value string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", " ", "_", " ").Replace(normalized)
	switch normalized {
	case "not started", "notstarted":
		return StatusNotStarted, nil
	case "reading":
		return StatusReading, nil
	case "completed":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown status %q: %w", value, ErrInvalidInput)
}

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	for _, known := range statusOrder {
		if s == known {
			return true
		}
	}
	return false
}

// Next cycles NotStarted → Reading → Completed → NotStarted.
func (s Status) Next() Status {
	for i, known := range statusOrder {
		if s == known {
			return statusOrder[(i+1)%len(statusOrder)]
		}
	}
	return StatusNotStarted
}

// Slug returns the lowercase hyphenated form used by filters and themes.
func (s Status) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(s)), " ", "-")
}

// Book mirrors an element of GET /api/books.
type Book struct {
	ID          int64  `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Author      string `json:"author" yaml:"author"`
	Genre       string `json:"genre" yaml:"genre"`
	Status      Status `json:"status" yaml:"status"`
	PagesRead   int    `json:"pagesRead" yaml:"pages_read"`
	TotalPages  int    `json:"totalPages" yaml:"total_pages"`
	Notes       string `json:"notes" yaml:"notes,omitempty"`
	Tags        string `json:"tags" yaml:"tags,omitempty"`
	GoalEndDate string `json:"goalEndDate" yaml:"goal_end_date,omitempty"`
	Thumbnail   string `json:"thumbnail" yaml:"thumbnail,omitempty"`
	Rating      int    `json:"rating" yaml:"rating"`
}

// UnmarshalJSON rejects books whose status is missing or unknown.
func (b *Book) UnmarshalJSON(data []byte) error {
	type wire Book
	aux := struct {
		*wire
		Status *string `json:"status"`
	}{wire: (*wire)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Status == nil {
		return fmt.Errorf("book %d has no status: %w", b.ID, ErrInvalidInput)
	}
	status, err := ParseStatus(*aux.Status)
	if err != nil {
		return fmt.Errorf("book %d: %w", b.ID, err)
	}
	b.Status = status
	return nil
}

// CanStartSession reports whether a reading session may begin for the book.
func (b Book) CanStartSession() bool {
	return b.Status == StatusReading
}

// CanRate reports whether the book accepts a rating change.
func (b Book) CanRate() bool {
	return b.Status == StatusCompleted
}

// TagList splits the comma separated tag field.
func (b Book) TagList() []string {
	var tags []string
	for _, tag := range strings.Split(b.Tags, ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// ParsedGoalEndDate returns the goal date, or zero when unset or malformed.
func (b Book) ParsedGoalEndDate() time.Time {
	t, err := time.Parse(goalDateLayout, strings.TrimSpace(b.GoalEndDate))
	if err != nil {
		return time.Time{}
	}
	return t
}

// SessionID identifies a reading session. Backends return either a number
// or a string; the original form is preserved when sent back.
type SessionID string

// UnmarshalJSON accepts numeric and string identifiers.
func (id *SessionID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = SessionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("session id %s: %w", trimmed, ErrInvalidInput)
	}
	*id = SessionID(n.String())
	return nil
}

// MarshalJSON emits integers as numbers and everything else as strings.
func (id SessionID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// ReadingSession mirrors an element of GET /api/sessions.
type ReadingSession struct {
	ID             SessionID `json:"id"`
	BookID         int64     `json:"bookId"`
	StartTime      string    `json:"startTime"`
	EndTime        string    `json:"endTime,omitempty"`
	StartPagesRead int       `json:"startPagesRead,omitempty"`
	EndPagesRead   int       `json:"endPagesRead,omitempty"`
	PagesRead      int       `json:"pagesRead"`
}

// ParsedStartTime returns the parsed StartTime timestamp.
func (s ReadingSession) ParsedStartTime() time.Time {
	return parseTime(s.StartTime)
}

// ParsedEndTime returns the parsed EndTime timestamp.
func (s ReadingSession) ParsedEndTime() time.Time {
	return parseTime(s.EndTime)
}

// Active reports whether the session has not been stopped yet.
func (s ReadingSession) Active() bool {
	return strings.TrimSpace(s.EndTime) == ""
}

// NewBook is the POST /api/books payload.
type NewBook struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Status      Status `json:"status"`
	PagesRead   int    `json:"pagesRead"`
	TotalPages  int    `json:"totalPages"`
	Notes       string `json:"notes"`
	Tags        string `json:"tags"`
	GoalEndDate string `json:"goalEndDate"`
	Thumbnail   string `json:"thumbnail"`
	Rating      int    `json:"rating"`
}

// Normalize fills defaults and validates the payload.
func (n NewBook) Normalize() (NewBook, error) {
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		return NewBook{}, fmt.Errorf("title is required: %w", ErrInvalidInput)
	}
	if n.Status == "" {
		n.Status = StatusNotStarted
	}
	if !n.Status.Valid() {
		return NewBook{}, fmt.Errorf("unknown status %q: %w", n.Status, ErrInvalidInput)
	}
	if n.Rating == 0 {
		n.Rating = DefaultRating
	}
	if n.Rating < 1 || n.Rating > 5 {
		return NewBook{}, fmt.Errorf("rating %d out of range 1-5: %w", n.Rating, ErrInvalidInput)
	}
	n.TotalPages = max(n.TotalPages, 0)
	n.PagesRead = clampPages(n.PagesRead, n.TotalPages)
	return n, nil
}

// BookUpdate is the PUT /api/books/{id} payload.
type BookUpdate struct {
	Status      Status `json:"status"`
	PagesRead   int    `json:"pagesRead"`
	TotalPages  int    `json:"totalPages"`
	Notes       string `json:"notes"`
	Tags        string `json:"tags"`
	GoalEndDate string `json:"goalEndDate"`
	Thumbnail   string `json:"thumbnail"`
	Rating      int    `json:"rating"`
}

// UpdateFromBook builds an update carrying every editable field of b.
// Pages read are zeroed unless the book is being read and are capped at
// the total; a missing rating becomes DefaultRating.
func UpdateFromBook(b Book) BookUpdate {
	u := BookUpdate{
		Status:      b.Status,
		TotalPages:  max(b.TotalPages, 0),
		Notes:       b.Notes,
		Tags:        b.Tags,
		GoalEndDate: b.GoalEndDate,
		Thumbnail:   b.Thumbnail,
		Rating:      b.Rating,
	}
	if u.Status == StatusReading {
		u.PagesRead = clampPages(b.PagesRead, u.TotalPages)
	}
	if u.Rating <= 0 {
		u.Rating = DefaultRating
	}
	return u
}

// SearchResult is a trimmed Google Books volume.
type SearchResult struct {
	Title     string `json:"title" yaml:"title"`
	Author    string `json:"author" yaml:"author"`
	Genre     string `json:"genre" yaml:"genre"`
	Thumbnail string `json:"thumbnail" yaml:"thumbnail"`
}

// AsNewBook converts a search hit into a create payload with defaults.
func (r SearchResult) AsNewBook() NewBook {
	return NewBook{
		Title:     r.Title,
		Author:    r.Author,
		Genre:     r.Genre,
		Status:    StatusNotStarted,
		Thumbnail: r.Thumbnail,
		Rating:    DefaultRating,
	}
}

// volumesResponse mirrors the Google Books payload proxied by /api/search.
type volumesResponse struct {
	Items []struct {
		VolumeInfo struct {
			Title      string   `json:"title"`
			Authors    []string `json:"authors"`
			Categories []string `json:"categories"`
			ImageLinks struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Credentials is the signup/login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// User is the authenticated account reported by /api/me.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type startSessionRequest struct {
	StartPagesRead int `json:"startPagesRead"`
}

type startSessionResponse struct {
	SessionID SessionID `json:"sessionId"`
}

type stopSessionRequest struct {
	SessionID    SessionID `json:"sessionId"`
	EndPagesRead int       `json:"endPagesRead"`
}

func clampPages(pages, total int) int {
	if pages < 0 {
		return 0
	}
	if pages > total {
		return total
	}
	return pages
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}
