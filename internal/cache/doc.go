// Package cache is shelf's local SQLite store.
//
// It is a client-side cache, not a copy of the backend's schema. Three
// tables live in <data_dir>/shelf.db:
//
//	snapshots        last good books and sessions payloads, for offline views
//	active_sessions  book id -> open session id, between start and stop
//	cookies          the backend's login cookie, so CLI runs stay signed in
//
// The schema is versioned with PRAGMA user_version. Open applies any
// migrations newer than the stored version, each in its own transaction.
package cache
