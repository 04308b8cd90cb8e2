package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/shelf/internal/booktracker"
	"github.com/five82/shelf/internal/state"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 5 * time.Minute
)

// SnapshotSaver persists the last good fetch.
type SnapshotSaver interface {
	SaveSnapshot(books []booktracker.Book, sessions []booktracker.ReadingSession, fetchedAt time.Time) error
}

// Poller refreshes the store from the API on an interval, backing off while
// the backend is unreachable.
type Poller struct {
	store    *state.Store
	fetcher  booktracker.Fetcher
	saver    SnapshotSaver
	logger   *zap.Logger
	interval time.Duration

	mu sync.Mutex // one refresh at a time
}

// NewPoller wires a poller. saver and logger may be nil.
func NewPoller(store *state.Store, fetcher booktracker.Fetcher, saver SnapshotSaver, logger *zap.Logger, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		store:    store,
		fetcher:  fetcher,
		saver:    saver,
		logger:   logger,
		interval: interval,
	}
}

// Interval returns the base polling interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start launches a background goroutine that refreshes the store until ctx
// is cancelled. It returns immediately; the first refresh happens after one
// interval, so callers wanting data up front should call Refresh first.
func (p *Poller) Start(ctx context.Context) {
	go func() {
		for {
			wait := calculateBackoff(p.store.Snapshot().ConsecutiveFailures, p.interval)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			_ = p.Refresh(ctx)
		}
	}()
}

// Refresh fetches books then sessions and publishes them together. On
// failure the store keeps its previous data and records the error.
func (p *Poller) Refresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	books, err := p.fetcher.FetchBooks(ctx)
	if err != nil {
		p.fail("books poll failed", err)
		return err
	}
	sessions, err := p.fetcher.FetchSessions(ctx)
	if err != nil {
		p.fail("sessions poll failed", err)
		return err
	}

	p.store.Update(books, sessions, nil)
	p.logger.Debug("poll ok",
		zap.Int("books", len(books)),
		zap.Int("sessions", len(sessions)))

	if p.saver != nil {
		if err := p.saver.SaveSnapshot(books, sessions, time.Now()); err != nil {
			p.logger.Warn("cache snapshot failed", zap.Error(err))
		}
	}
	return nil
}

func (p *Poller) fail(msg string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	p.store.Update(nil, nil, err)
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("failures", p.store.Snapshot().ConsecutiveFailures),
	}
	if errors.Is(err, booktracker.ErrUnauthorized) {
		fields = append(fields, zap.String("hint", "run shelf login"))
	}
	p.logger.Warn(msg, fields...)
}

// calculateBackoff doubles the base interval for each consecutive failure,
// capped at maxBackoff. A base above the cap is returned unchanged.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 || base >= maxBackoff {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
