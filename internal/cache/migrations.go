package cache

import "database/sql"

// Migration is a single schema step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of schema steps. Append only.
var migrations = []Migration{
	{
		Version:     1,
		Description: "snapshots and active sessions",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS snapshots (
    resource TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    fetched_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS active_sessions (
    book_id INTEGER PRIMARY KEY,
    session_id TEXT NOT NULL,
    start_pages_read INTEGER NOT NULL DEFAULT 0,
    started_at TEXT NOT NULL
);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "persisted login cookies",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS cookies (
    origin TEXT NOT NULL,
    name TEXT NOT NULL,
    value TEXT NOT NULL,
    saved_at TEXT NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (origin, name)
);
`)
			return err
		},
	},
}

func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
