package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/shelf/internal/booktracker"
)

// Snapshot represents the latest book and session data available to the UI.
type Snapshot struct {
	Books               []booktracker.Book
	Sessions            []booktracker.ReadingSession
	HasData             bool
	FromCache           bool      // Data was restored from the local cache, not fetched
	FetchedAt           time.Time // When Books and Sessions were last fetched
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// IsStale reports whether the data shown did not come from the most recent
// poll, either because it was restored from cache or the last poll failed.
func (s Snapshot) IsStale() bool {
	return s.HasData && (s.FromCache || s.LastError != nil)
}

// Book finds a book by id.
func (s Snapshot) Book(id int64) (booktracker.Book, bool) {
	for _, b := range s.Books {
		if b.ID == id {
			return b, true
		}
	}
	return booktracker.Book{}, false
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Seed installs cached data before the first poll. It is ignored once live
// data has arrived.
func (s *Store) Seed(books []booktracker.Book, sessions []booktracker.ReadingSession, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.HasData && !s.snapshot.FromCache {
		return
	}
	s.snapshot.Books = slices.Clone(books)
	s.snapshot.Sessions = slices.Clone(sessions)
	s.snapshot.HasData = true
	s.snapshot.FromCache = true
	s.snapshot.FetchedAt = fetchedAt
}

// Update replaces the stored books and sessions. When err is non-nil the
// previous data is kept but the error is recorded for visibility.
func (s *Store) Update(books []booktracker.Book, sessions []booktracker.ReadingSession, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = now
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Books = slices.Clone(books)
	s.snapshot.Sessions = slices.Clone(sessions)
	s.snapshot.HasData = true
	s.snapshot.FromCache = false
	s.snapshot.FetchedAt = now
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = now
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Books = slices.Clone(s.snapshot.Books)
	snap.Sessions = slices.Clone(s.snapshot.Sessions)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
