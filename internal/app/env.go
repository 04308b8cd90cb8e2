package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/five82/shelf/internal/booktracker"
	"github.com/five82/shelf/internal/cache"
	"github.com/five82/shelf/internal/config"
	"github.com/five82/shelf/internal/logging"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/shelf"
)

// Options configure how the environment is assembled.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/shelf/prefs.toml
	PollEvery  int    // seconds; zero uses the config value
	Verbose    bool   // force debug logging
}

// Env holds everything a command needs: config, logger, cache and client.
type Env struct {
	Config  config.Config
	Logger  *zap.Logger
	Cache   *cache.DB
	Client  *booktracker.Client
	Tracker *SessionTracker

	prefsPath string
	now       func() time.Time
}

// Open loads config, opens the log and cache, and restores the saved login.
func Open(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.PollEvery = time.Duration(opts.PollEvery) * time.Second
	}

	level := cfg.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.LogPath())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := cache.Open(cfg.CachePath(), logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	client, err := booktracker.NewClient(cfg.APIURL,
		booktracker.WithTimeout(cfg.RequestTimeout),
		booktracker.WithLogger(logger))
	if err != nil {
		db.Close()
		_ = logger.Sync()
		return nil, fmt.Errorf("init booktracker client: %w", err)
	}

	cookies, err := db.LoadCookies(client.BaseURL())
	if err != nil {
		logger.Warn("restore login failed", zap.Error(err))
	}
	client.SetCookies(cookies)

	logger.Debug("environment ready", zap.String("config", cfg.Summary()))
	return &Env{
		Config:  cfg,
		Logger:  logger,
		Cache:   db,
		Client:  client,
		Tracker: NewSessionTracker(client, db, logger),

		prefsPath: opts.PrefsPath,
		now:       time.Now,
	}, nil
}

// Close flushes the logger and closes the cache.
func (e *Env) Close() error {
	err := e.Cache.Close()
	_ = e.Logger.Sync()
	return err
}

// Today is the current calendar day in the configured time zone.
func (e *Env) Today() shelf.Day {
	return shelf.Today(e.now(), e.Config.Location())
}

// Prefs loads the saved TUI preferences from the same file the TUI uses.
func (e *Env) Prefs() prefs.Prefs {
	return prefs.Load(e.prefsPath)
}

// SaveLogin persists the client's session cookie.
func (e *Env) SaveLogin() error {
	return e.Cache.SaveCookies(e.Client.BaseURL(), e.Client.Cookies())
}

// ClearLogin forgets the persisted session cookie.
func (e *Env) ClearLogin() error {
	return e.Cache.ClearCookies(e.Client.BaseURL())
}

// Snapshot fetches books and sessions, caching the result. With offline
// set, or when the backend cannot be reached, it serves the cached copy and
// reports fromCache. Authorization failures are never masked by the cache.
func (e *Env) Snapshot(ctx context.Context, offline bool) (snap cache.Snapshot, fromCache bool, err error) {
	if !offline {
		snap, err = e.fetch(ctx)
		if err == nil {
			return snap, false, nil
		}
		if errors.Is(err, booktracker.ErrUnauthorized) {
			return cache.Snapshot{}, false, err
		}
		e.Logger.Warn("live fetch failed, using cache", zap.Error(err))
	}

	cached, cacheErr := e.Cache.LoadSnapshot()
	if cacheErr != nil {
		if err != nil {
			return cache.Snapshot{}, false, err
		}
		return cache.Snapshot{}, false, cacheErr
	}
	return cached, true, nil
}

func (e *Env) fetch(ctx context.Context) (cache.Snapshot, error) {
	books, err := e.Client.FetchBooks(ctx)
	if err != nil {
		return cache.Snapshot{}, err
	}
	sessions, err := e.Client.FetchSessions(ctx)
	if err != nil {
		return cache.Snapshot{}, err
	}
	snap := cache.Snapshot{Books: books, Sessions: sessions, FetchedAt: e.now()}
	if err := e.Cache.SaveSnapshot(books, sessions, snap.FetchedAt); err != nil {
		e.Logger.Warn("cache snapshot failed", zap.Error(err))
	}
	return snap, nil
}

// FindBook looks a book up by id in a fresh snapshot.
func (e *Env) FindBook(ctx context.Context, id int64) (booktracker.Book, error) {
	snap, _, err := e.Snapshot(ctx, false)
	if err != nil {
		return booktracker.Book{}, err
	}
	for _, b := range snap.Books {
		if b.ID == id {
			return b, nil
		}
	}
	return booktracker.Book{}, fmt.Errorf("book %d: %w", id, booktracker.ErrNotFound)
}
