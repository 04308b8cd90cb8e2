// Package app is the composition root for shelf.
//
// # Overview
//
// Open assembles an Env: it loads the config (including .env and SHELF_*
// overrides), builds the zap file logger, opens the SQLite cache, creates
// the BookTracker client and restores the saved login cookie into it. CLI
// commands work directly against an Env; Run additionally starts the
// poller and hands everything to the TUI.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> Open()              config, logger, cache, client
//	       ├─────> prefs.Load()        theme, filter, sort
//	       ├─────> store.Seed()        cached snapshot, if any
//	       ├─────> poller.Refresh()    first live fetch
//	       ├─────> poller.Start()      background updates
//	       └─────> ui.Run()            TUI (blocks)
//
//	Poller loop:
//	┌─────────────────────────────────────────┐
//	│  wait interval (backed off on failure)  │
//	│  ├─> FetchBooks()                       │
//	│  ├─> FetchSessions()                    │
//	│  ├─> store.Update()                     │
//	│  └─> cache.SaveSnapshot()               │
//	└─────────────────────────────────────────┘
//
// # Polling Behavior
//
// The interval comes from poll_seconds (default 30s). Each consecutive
// failure doubles the wait, up to five minutes; one success resets it.
// Failures are logged and recorded on the store but never stop the loop.
// A cancelled context is not counted as a failure.
//
// # Reading Sessions
//
// The backend returns a session id only when a session starts, and needs
// it back to stop. SessionTracker keeps that association in the cache's
// active_sessions table, so a session started from the TUI can be stopped
// from the CLI and survives restarts. Stopping a session on a book being
// read also moves the book's pages read to the end page count.
package app
