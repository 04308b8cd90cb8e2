package cache

import (
	"fmt"
	"net/http"
)

// SaveCookies replaces the cookies stored for origin.
func (db *DB) SaveCookies(origin string, cookies []*http.Cookie) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin cookies: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM cookies WHERE origin = ?`, origin); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		if _, err := tx.Exec(
			`INSERT INTO cookies (origin, name, value) VALUES (?, ?, ?)`,
			origin, c.Name, c.Value,
		); err != nil {
			return fmt.Errorf("save cookie %s: %w", c.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cookies: %w", err)
	}
	return nil
}

// LoadCookies returns the cookies stored for origin, ordered by name.
func (db *DB) LoadCookies(origin string) ([]*http.Cookie, error) {
	rows, err := db.conn.Query(
		`SELECT name, value FROM cookies WHERE origin = ? ORDER BY name`, origin,
	)
	if err != nil {
		return nil, fmt.Errorf("load cookies: %w", err)
	}
	defer rows.Close()

	var out []*http.Cookie
	for rows.Next() {
		var c http.Cookie
		if err := rows.Scan(&c.Name, &c.Value); err != nil {
			return nil, fmt.Errorf("scan cookie: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// ClearCookies removes the stored login for origin.
func (db *DB) ClearCookies(origin string) error {
	if _, err := db.conn.Exec(`DELETE FROM cookies WHERE origin = ?`, origin); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	return nil
}
