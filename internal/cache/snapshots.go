package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/five82/shelf/internal/booktracker"
)

const (
	resourceBooks    = "books"
	resourceSessions = "sessions"
)

// Snapshot is the last good fetch persisted for offline use.
type Snapshot struct {
	Books     []booktracker.Book
	Sessions  []booktracker.ReadingSession
	FetchedAt time.Time
}

// SaveSnapshot replaces the cached books and sessions in one transaction.
func (db *DB) SaveSnapshot(books []booktracker.Book, sessions []booktracker.ReadingSession, fetchedAt time.Time) error {
	booksJSON, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("encode books: %w", err)
	}
	sessionsJSON, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stamp := fetchedAt.UTC().Format(time.RFC3339Nano)
	const upsert = `INSERT OR REPLACE INTO snapshots (resource, payload, fetched_at) VALUES (?, ?, ?)`
	if _, err := tx.Exec(upsert, resourceBooks, string(booksJSON), stamp); err != nil {
		return fmt.Errorf("save books: %w", err)
	}
	if _, err := tx.Exec(upsert, resourceSessions, string(sessionsJSON), stamp); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	db.logger.Debug("snapshot cached",
		zap.Int("books", len(books)),
		zap.Int("sessions", len(sessions)))
	return nil
}

// LoadSnapshot returns the cached books and sessions, or ErrNoSnapshot.
func (db *DB) LoadSnapshot() (Snapshot, error) {
	var snap Snapshot

	booksPayload, fetchedAt, err := db.loadResource(resourceBooks)
	if err != nil {
		return Snapshot{}, err
	}
	if err := json.Unmarshal([]byte(booksPayload), &snap.Books); err != nil {
		return Snapshot{}, fmt.Errorf("decode cached books: %w", err)
	}
	snap.FetchedAt = fetchedAt

	sessionsPayload, _, err := db.loadResource(resourceSessions)
	switch {
	case errors.Is(err, ErrNoSnapshot):
	case err != nil:
		return Snapshot{}, err
	default:
		if err := json.Unmarshal([]byte(sessionsPayload), &snap.Sessions); err != nil {
			return Snapshot{}, fmt.Errorf("decode cached sessions: %w", err)
		}
	}
	return snap, nil
}

func (db *DB) loadResource(resource string) (string, time.Time, error) {
	var payload, stamp string
	err := db.conn.QueryRow(
		`SELECT payload, fetched_at FROM snapshots WHERE resource = ?`, resource,
	).Scan(&payload, &stamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, ErrNoSnapshot
		}
		return "", time.Time{}, fmt.Errorf("load %s: %w", resource, err)
	}
	fetchedAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parse fetched_at for %s: %w", resource, err)
	}
	return payload, fetchedAt, nil
}
