package booktracker

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"Not Started", StatusNotStarted},
		{"not-started", StatusNotStarted},
		{" READING ", StatusReading},
		{"completed", StatusCompleted},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if err != nil {
			t.Fatalf("ParseStatus(%q) returned error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, err := ParseStatus("abandoned"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("ParseStatus(abandoned) error = %v, want ErrInvalidInput", err)
	}
}

func TestStatusCycleAndSlug(t *testing.T) {
	if got := StatusNotStarted.Next(); got != StatusReading {
		t.Fatalf("NotStarted.Next = %q, want Reading", got)
	}
	if got := StatusCompleted.Next(); got != StatusNotStarted {
		t.Fatalf("Completed.Next = %q, want Not Started", got)
	}
	if got := Status("bogus").Next(); got != StatusNotStarted {
		t.Fatalf("bogus.Next = %q, want Not Started", got)
	}
	if got := StatusNotStarted.Slug(); got != "not-started" {
		t.Fatalf("Slug = %q, want not-started", got)
	}
}

func TestBookUnmarshal_UnknownStatus(t *testing.T) {
	var b Book
	err := json.Unmarshal([]byte(`{"id":4,"title":"X","status":"Paused"}`), &b)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Unmarshal error = %v, want ErrInvalidInput", err)
	}
}

func TestBookUnmarshal_KeepsFields(t *testing.T) {
	var b Book
	raw := `{"id":4,"title":"X","author":"Y","genre":"Z","status":"Completed","pagesRead":10,"totalPages":20,"tags":"a, b,,c ","rating":5,"goalEndDate":"2024-05-01"}`
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if b.ID != 4 || b.Title != "X" || b.Status != StatusCompleted || b.PagesRead != 10 || b.Rating != 5 {
		t.Fatalf("Unmarshal = %#v", b)
	}
	tags := b.TagList()
	if len(tags) != 3 || tags[0] != "a" || tags[1] != "b" || tags[2] != "c" {
		t.Fatalf("TagList = %#v, want [a b c]", tags)
	}
	goal := b.ParsedGoalEndDate()
	if goal.Year() != 2024 || goal.Month() != time.May || goal.Day() != 1 {
		t.Fatalf("ParsedGoalEndDate = %v, want 2024-05-01", goal)
	}
	if !b.CanRate() || b.CanStartSession() {
		t.Fatalf("Completed book: CanRate=%v CanStartSession=%v", b.CanRate(), b.CanStartSession())
	}
}

func TestSessionIDRoundTrip(t *testing.T) {
	for _, raw := range []string{`12`, `"s-1"`} {
		var id SessionID
		if err := json.Unmarshal([]byte(raw), &id); err != nil {
			t.Fatalf("Unmarshal(%s) returned error: %v", raw, err)
		}
		out, err := json.Marshal(id)
		if err != nil {
			t.Fatalf("Marshal(%q) returned error: %v", id, err)
		}
		if string(out) != raw {
			t.Fatalf("round trip %s = %s", raw, out)
		}
	}
}

func TestUpdateFromBook(t *testing.T) {
	tests := []struct {
		name      string
		book      Book
		wantPages int
		wantRate  int
	}{
		{"reading keeps pages", Book{Status: StatusReading, PagesRead: 50, TotalPages: 100, Rating: 4}, 50, 4},
		{"reading caps at total", Book{Status: StatusReading, PagesRead: 150, TotalPages: 100}, 100, DefaultRating},
		{"reading without total", Book{Status: StatusReading, PagesRead: 10}, 0, DefaultRating},
		{"negative pages", Book{Status: StatusReading, PagesRead: -5, TotalPages: 100}, 0, DefaultRating},
		{"completed zeroes pages", Book{Status: StatusCompleted, PagesRead: 100, TotalPages: 100, Rating: 5}, 0, 5},
		{"not started zeroes pages", Book{Status: StatusNotStarted, PagesRead: 10, TotalPages: 100}, 0, DefaultRating},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpdateFromBook(tt.book)
			if got.PagesRead != tt.wantPages {
				t.Fatalf("PagesRead = %d, want %d", got.PagesRead, tt.wantPages)
			}
			if got.Rating != tt.wantRate {
				t.Fatalf("Rating = %d, want %d", got.Rating, tt.wantRate)
			}
		})
	}
}

func TestNewBookNormalize(t *testing.T) {
	if _, err := (NewBook{Title: "  "}).Normalize(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Normalize without title = %v, want ErrInvalidInput", err)
	}
	if _, err := (NewBook{Title: "x", Rating: 9}).Normalize(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Normalize with rating 9 = %v, want ErrInvalidInput", err)
	}
	got, err := (NewBook{Title: "x", TotalPages: -3, PagesRead: 5}).Normalize()
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if got.TotalPages != 0 || got.PagesRead != 0 || got.Status != StatusNotStarted || got.Rating != DefaultRating {
		t.Fatalf("Normalize = %#v", got)
	}
}

func TestParseTimeLayouts(t *testing.T) {
	for _, value := range []string{
		"2024-03-02T08:00:00Z",
		"2024-03-02T08:00:00.123+02:00",
		"2024-03-02T08:00:00",
		"2024-03-02 08:00:00",
	} {
		got := parseTime(value)
		if got.IsZero() {
			t.Fatalf("parseTime(%q) returned zero", value)
		}
		if got.Day() != 2 || got.Month() != time.March {
			t.Fatalf("parseTime(%q) = %v, want March 2", value, got)
		}
	}
	if !parseTime("yesterday").IsZero() {
		t.Fatalf("parseTime(yesterday) should be zero")
	}
}
