package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shelf/internal/booktracker"
	"github.com/five82/shelf/internal/cache"
)

type stopCall struct {
	bookID int64
	id     booktracker.SessionID
	end    int
}

type fakeAPI struct {
	fakeFetcher
	nextID   booktracker.SessionID
	startErr error
	stopErr  error
	starts   []booktracker.Book
	stops    []stopCall
	updates  map[int64]booktracker.BookUpdate
}

var _ booktracker.API = (*fakeAPI)(nil)

func (f *fakeAPI) CreateBook(context.Context, booktracker.NewBook) error { return nil }

func (f *fakeAPI) UpdateBook(_ context.Context, id int64, u booktracker.BookUpdate) error {
	if f.updates == nil {
		f.updates = make(map[int64]booktracker.BookUpdate)
	}
	f.updates[id] = u
	return nil
}

func (f *fakeAPI) DeleteBook(context.Context, int64) error { return nil }

func (f *fakeAPI) StartSession(_ context.Context, b booktracker.Book) (booktracker.SessionID, error) {
	if !b.CanStartSession() {
		return "", booktracker.ErrNotReading
	}
	if f.startErr != nil {
		return "", f.startErr
	}
	f.starts = append(f.starts, b)
	return f.nextID, nil
}

func (f *fakeAPI) StopSession(_ context.Context, bookID int64, id booktracker.SessionID, end int) error {
	if f.stopErr != nil {
		return f.stopErr
	}
	f.stops = append(f.stops, stopCall{bookID: bookID, id: id, end: end})
	return nil
}

func (f *fakeAPI) Search(context.Context, string) ([]booktracker.SearchResult, error) {
	return nil, nil
}

func newTracker(t *testing.T, api *fakeAPI) *SessionTracker {
	t.Helper()
	db, err := cache.Open(filepath.Join(t.TempDir(), "shelf.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	tracker := NewSessionTracker(api, db, nil)
	tracker.now = func() time.Time { return time.Date(2024, 1, 3, 20, 0, 0, 0, time.UTC) }
	return tracker
}

func TestSessionTracker_StartStop(t *testing.T) {
	api := &fakeAPI{nextID: "42"}
	tracker := newTracker(t, api)
	ctx := context.Background()
	book := booktracker.Book{ID: 7, Title: "Dune", Status: booktracker.StatusReading, PagesRead: 40, TotalPages: 400}

	started, err := tracker.Start(ctx, book)
	require.NoError(t, err)
	assert.Equal(t, booktracker.SessionID("42"), started.SessionID)
	assert.Equal(t, 40, started.StartPagesRead)

	active, ok := tracker.Active(7)
	require.True(t, ok)
	assert.Equal(t, started.SessionID, active.SessionID)
	assert.Len(t, tracker.All(), 1)

	_, err = tracker.Start(ctx, book)
	assert.ErrorIs(t, err, ErrSessionActive)
	assert.Len(t, api.starts, 1)

	stopped, err := tracker.Stop(ctx, book, 75)
	require.NoError(t, err)
	assert.Equal(t, booktracker.SessionID("42"), stopped.SessionID)
	assert.Equal(t, []stopCall{{bookID: 7, id: "42", end: 75}}, api.stops)
	assert.Equal(t, 75, api.updates[7].PagesRead, "pages read follow the session")

	_, ok = tracker.Active(7)
	assert.False(t, ok)
	assert.Empty(t, tracker.All())
}

func TestSessionTracker_StopWithoutStart(t *testing.T) {
	api := &fakeAPI{}
	tracker := newTracker(t, api)

	_, err := tracker.Stop(context.Background(), booktracker.Book{ID: 1, Status: booktracker.StatusReading}, 10)
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Empty(t, api.stops)
}

func TestSessionTracker_StopSamePagesSkipsUpdate(t *testing.T) {
	api := &fakeAPI{nextID: "1"}
	tracker := newTracker(t, api)
	ctx := context.Background()
	book := booktracker.Book{ID: 3, Status: booktracker.StatusReading, PagesRead: 12, TotalPages: 100}

	_, err := tracker.Start(ctx, book)
	require.NoError(t, err)
	_, err = tracker.Stop(ctx, book, 12)
	require.NoError(t, err)
	assert.Empty(t, api.updates)
}

func TestSessionTracker_StartRequiresReading(t *testing.T) {
	api := &fakeAPI{nextID: "1"}
	tracker := newTracker(t, api)

	_, err := tracker.Start(context.Background(), booktracker.Book{ID: 2, Status: booktracker.StatusCompleted})
	assert.ErrorIs(t, err, booktracker.ErrNotReading)
	assert.Empty(t, tracker.All())
}

func TestSessionTracker_StopFailureKeepsActive(t *testing.T) {
	api := &fakeAPI{nextID: "9"}
	tracker := newTracker(t, api)
	ctx := context.Background()
	book := booktracker.Book{ID: 4, Status: booktracker.StatusReading}

	_, err := tracker.Start(ctx, book)
	require.NoError(t, err)

	api.stopErr = errors.New("backend down")
	_, err = tracker.Stop(ctx, book, 5)
	require.Error(t, err)

	_, ok := tracker.Active(4)
	assert.True(t, ok, "a failed stop must leave the session retrievable")
}

func TestSessionTracker_StopNotFoundClearsActive(t *testing.T) {
	api := &fakeAPI{nextID: "11"}
	tracker := newTracker(t, api)
	ctx := context.Background()
	book := booktracker.Book{ID: 3, Title: "Dune", Status: booktracker.StatusReading, PagesRead: 10, TotalPages: 400}

	_, err := tracker.Start(ctx, book)
	require.NoError(t, err)

	api.stopErr = fmt.Errorf("api /api/books/3/session/stop returned status 404: %w", booktracker.ErrNotFound)
	_, err = tracker.Stop(ctx, book, 20)
	assert.ErrorIs(t, err, booktracker.ErrNotFound)

	_, ok := tracker.Active(3)
	assert.False(t, ok, "a session unknown to the backend is dropped")

	api.stopErr = nil
	api.nextID = "12"
	restarted, err := tracker.Start(ctx, book)
	require.NoError(t, err, "the book can be read again")
	assert.Equal(t, booktracker.SessionID("12"), restarted.SessionID)
}

func TestSessionTracker_Forget(t *testing.T) {
	api := &fakeAPI{nextID: "5"}
	tracker := newTracker(t, api)
	ctx := context.Background()
	book := booktracker.Book{ID: 8, Status: booktracker.StatusReading}

	_, err := tracker.Start(ctx, book)
	require.NoError(t, err)

	require.NoError(t, tracker.Forget(8))
	_, ok := tracker.Active(8)
	assert.False(t, ok)
	assert.Empty(t, tracker.All())

	require.NoError(t, tracker.Forget(99), "forgetting a book without a session is a no-op")
}
