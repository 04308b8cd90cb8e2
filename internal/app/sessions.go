package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/five82/shelf/internal/booktracker"
	"github.com/five82/shelf/internal/cache"
)

var (
	// ErrNoActiveSession is returned when stopping a book with no open session.
	ErrNoActiveSession = errors.New("no active reading session")
	// ErrSessionActive is returned when starting a book that already has one.
	ErrSessionActive = errors.New("reading session already running")
)

// ActiveStore remembers open sessions between start and stop.
type ActiveStore interface {
	StartActive(s cache.ActiveSession) error
	Active(bookID int64) (cache.ActiveSession, bool, error)
	ActiveAll() (map[int64]cache.ActiveSession, error)
	ClearActive(bookID int64) error
}

// SessionTracker starts and stops reading sessions and owns the
// bookID -> sessionID association the backend hands out at start.
type SessionTracker struct {
	api    booktracker.API
	active ActiveStore
	logger *zap.Logger
	now    func() time.Time
}

// NewSessionTracker builds a tracker. logger may be nil.
func NewSessionTracker(api booktracker.API, active ActiveStore, logger *zap.Logger) *SessionTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionTracker{api: api, active: active, logger: logger, now: time.Now}
}

// Start opens a session at the book's current page count. Only books being
// read may start one.
func (t *SessionTracker) Start(ctx context.Context, book booktracker.Book) (cache.ActiveSession, error) {
	if _, ok, err := t.active.Active(book.ID); err != nil {
		return cache.ActiveSession{}, err
	} else if ok {
		return cache.ActiveSession{}, fmt.Errorf("%q: %w", book.Title, ErrSessionActive)
	}

	id, err := t.api.StartSession(ctx, book)
	if err != nil {
		return cache.ActiveSession{}, fmt.Errorf("start session: %w", err)
	}
	s := cache.ActiveSession{
		BookID:         book.ID,
		SessionID:      id,
		StartPagesRead: max(book.PagesRead, 0),
		StartedAt:      t.now(),
	}
	if err := t.active.StartActive(s); err != nil {
		return cache.ActiveSession{}, err
	}
	t.logger.Info("session started",
		zap.Int64("book_id", book.ID),
		zap.String("session_id", string(id)),
		zap.Int("start_pages", s.StartPagesRead))
	return s, nil
}

// Stop closes the book's open session at endPagesRead. When the book is
// being read and the page count moved, the book's pages read follow it.
func (t *SessionTracker) Stop(ctx context.Context, book booktracker.Book, endPagesRead int) (cache.ActiveSession, error) {
	s, ok, err := t.active.Active(book.ID)
	if err != nil {
		return cache.ActiveSession{}, err
	}
	if !ok {
		return cache.ActiveSession{}, fmt.Errorf("%q: %w", book.Title, ErrNoActiveSession)
	}

	if err := t.api.StopSession(ctx, book.ID, s.SessionID, endPagesRead); err != nil {
		// A session the backend no longer knows can never be stopped.
		if errors.Is(err, booktracker.ErrNotFound) {
			if clearErr := t.active.ClearActive(book.ID); clearErr != nil {
				t.logger.Warn("clear stale session failed", zap.Int64("book_id", book.ID), zap.Error(clearErr))
			} else {
				t.logger.Warn("dropped stale session",
					zap.Int64("book_id", book.ID),
					zap.String("session_id", string(s.SessionID)))
			}
		}
		return cache.ActiveSession{}, fmt.Errorf("stop session: %w", err)
	}
	if err := t.active.ClearActive(book.ID); err != nil {
		return cache.ActiveSession{}, err
	}

	if book.CanStartSession() && endPagesRead != book.PagesRead {
		book.PagesRead = endPagesRead
		if err := t.api.UpdateBook(ctx, book.ID, booktracker.UpdateFromBook(book)); err != nil {
			return s, fmt.Errorf("update pages read: %w", err)
		}
	}

	t.logger.Info("session stopped",
		zap.Int64("book_id", book.ID),
		zap.String("session_id", string(s.SessionID)),
		zap.Int("end_pages", endPagesRead))
	return s, nil
}

// Forget drops any open session recorded for a book, e.g. after the book
// was deleted.
func (t *SessionTracker) Forget(bookID int64) error {
	if err := t.active.ClearActive(bookID); err != nil {
		return fmt.Errorf("forget session: %w", err)
	}
	return nil
}

// Active returns the open session for a book, if any.
func (t *SessionTracker) Active(bookID int64) (cache.ActiveSession, bool) {
	s, ok, err := t.active.Active(bookID)
	if err != nil {
		t.logger.Warn("active session lookup failed", zap.Int64("book_id", bookID), zap.Error(err))
		return cache.ActiveSession{}, false
	}
	return s, ok
}

// All returns every open session keyed by book id.
func (t *SessionTracker) All() map[int64]cache.ActiveSession {
	all, err := t.active.ActiveAll()
	if err != nil {
		t.logger.Warn("active session list failed", zap.Error(err))
		return map[int64]cache.ActiveSession{}
	}
	return all
}
