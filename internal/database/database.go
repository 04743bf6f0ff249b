// Package database keeps a registry of confirmed matches so repeat syncs of
// overlapping tracklists skip the search cascade.
package database

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Match is one confirmed (tracklist entry -> Spotify track) mapping.
type Match struct {
	SourceKey  string
	SpotifyID  string
	SpotifyURI string
	Score      float64
}

// Open creates the registry file if needed and applies the schema.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create registry dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	if err := Init(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Init runs the embedded schema and sets performance PRAGMAs.
func Init(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA cache_size=-2000;"); err != nil {
		return fmt.Errorf("registry pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("registry schema: %w", err)
	}
	return nil
}

// UpsertMatch records a confirmed match, keeping the freshest score. A nil db
// disables the registry.
func UpsertMatch(db *sql.DB, m Match) error {
	if db == nil {
		return nil
	}
	query := `
	INSERT INTO match_registry (source_key, spotify_id, spotify_uri, score, last_updated)
	VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(source_key) DO UPDATE SET
		spotify_id = excluded.spotify_id,
		spotify_uri = COALESCE(NULLIF(excluded.spotify_uri, ''), match_registry.spotify_uri),
		score = excluded.score,
		last_updated = CURRENT_TIMESTAMP;`

	_, err := db.Exec(query, m.SourceKey, m.SpotifyID, m.SpotifyURI, m.Score)
	return err
}

// LookupMatch returns the cached mapping for a source key, or nil when the
// key has never been matched.
func LookupMatch(db *sql.DB, sourceKey string) (*Match, error) {
	if db == nil || sourceKey == "" {
		return nil, nil
	}
	m := Match{SourceKey: sourceKey}
	err := db.QueryRow(
		"SELECT spotify_id, spotify_uri, score FROM match_registry WHERE source_key = ?",
		sourceKey,
	).Scan(&m.SpotifyID, &m.SpotifyURI, &m.Score)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
