package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/five82/shelf/internal/cache"
	"github.com/five82/shelf/internal/shelf"
	"github.com/five82/shelf/internal/state"
	"github.com/five82/shelf/internal/ui"
)

// Run boots the shelf TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Open(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	userPrefs := env.Prefs()
	store := &state.Store{}

	// Cached data renders immediately while the first fetch is in flight.
	if snap, err := env.Cache.LoadSnapshot(); err == nil {
		store.Seed(snap.Books, snap.Sessions, snap.FetchedAt)
	} else if !errors.Is(err, cache.ErrNoSnapshot) {
		env.Logger.Warn("load cached snapshot failed", zap.Error(err))
	}

	poller := NewPoller(store, env.Client, env.Cache, env.Logger, env.Config.PollEvery)

	// Do initial refresh to populate store before UI starts
	_ = poller.Refresh(ctx)
	poller.Start(ctx)

	env.Logger.Info("tui started", zap.String("api", env.Client.BaseURL()))
	defer env.Logger.Info("tui stopped")

	return ui.Run(ui.Options{
		Context:   ctx,
		API:       env.Client,
		Store:     store,
		Refresh:   poller.Refresh,
		Sessions:  env.Tracker,
		Logger:    env.Logger,
		PollTick:  poller.Interval(),
		Location:  env.Config.Location(),
		LogPath:   env.Config.LogPath(),
		APIURL:    env.Client.BaseURL(),
		ThemeName: userPrefs.Theme,
		Filter:    shelf.ParseFilter(userPrefs.Filter),
		Sort:      shelf.ParseSortKey(userPrefs.Sort),
		PrefsPath: opts.PrefsPath,
	})
}
