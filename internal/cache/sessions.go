package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/five82/shelf/internal/booktracker"
)

// ActiveSession remembers which session a book has open between start and
// stop. The backend only returns the id once, at start.
type ActiveSession struct {
	BookID         int64
	SessionID      booktracker.SessionID
	StartPagesRead int
	StartedAt      time.Time
}

// StartActive records an open session, replacing any previous one for the book.
func (db *DB) StartActive(s ActiveSession) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO active_sessions (book_id, session_id, start_pages_read, started_at) VALUES (?, ?, ?, ?)`,
		s.BookID, string(s.SessionID), s.StartPagesRead, s.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save active session: %w", err)
	}
	return nil
}

// Active returns the open session for a book. ok is false when none is open.
func (db *DB) Active(bookID int64) (ActiveSession, bool, error) {
	row := db.conn.QueryRow(
		`SELECT book_id, session_id, start_pages_read, started_at FROM active_sessions WHERE book_id = ?`,
		bookID,
	)
	s, err := scanActive(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ActiveSession{}, false, nil
		}
		return ActiveSession{}, false, fmt.Errorf("load active session: %w", err)
	}
	return s, true, nil
}

// ActiveAll returns every open session keyed by book id.
func (db *DB) ActiveAll() (map[int64]ActiveSession, error) {
	rows, err := db.conn.Query(
		`SELECT book_id, session_id, start_pages_read, started_at FROM active_sessions`,
	)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]ActiveSession)
	for rows.Next() {
		s, err := scanActive(rows)
		if err != nil {
			return nil, fmt.Errorf("scan active session: %w", err)
		}
		out[s.BookID] = s
	}
	return out, rows.Err()
}

// ClearActive forgets the open session for a book.
func (db *DB) ClearActive(bookID int64) error {
	if _, err := db.conn.Exec(`DELETE FROM active_sessions WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActive(row scanner) (ActiveSession, error) {
	var s ActiveSession
	var id, stamp string
	if err := row.Scan(&s.BookID, &id, &s.StartPagesRead, &stamp); err != nil {
		return ActiveSession{}, err
	}
	s.SessionID = booktracker.SessionID(id)
	s.StartedAt, _ = time.Parse(time.RFC3339Nano, stamp)
	return s, nil
}
