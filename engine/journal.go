package engine

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ftahirops/vtguard/model"
)

// Journal persists every low-battery episode and its resolution to sqlite.
// One row per episode; the row is completed in place when the episode resolves.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenJournal opens (creating if needed) the episode journal at path.
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// Pin to 1 connection so schema setup is visible to all queries.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS episodes (
			episode_id  TEXT PRIMARY KEY,
			call_id     TEXT NOT NULL,
			variant     TEXT NOT NULL,
			opened_at   INTEGER NOT NULL,
			resolved_at INTEGER,
			outcome     TEXT
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close releases the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Open records a newly opened episode and returns its id.
func (j *Journal) Open(callID model.CallID, variant Variant) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	id := uuid.NewString()
	_, err := j.db.Exec(
		`INSERT INTO episodes (episode_id, call_id, variant, opened_at) VALUES (?, ?, ?, ?)`,
		id, string(callID), variant.String(), time.Now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("journal open: %w", err)
	}
	return id, nil
}

// Resolve completes an episode row with its outcome.
func (j *Journal) Resolve(episodeID string, outcome model.EpisodeOutcome) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(
		`UPDATE episodes SET resolved_at = ?, outcome = ? WHERE episode_id = ?`,
		time.Now().Unix(), string(outcome), episodeID,
	)
	if err != nil {
		return fmt.Errorf("journal resolve: %w", err)
	}
	return nil
}

// Recent returns the most recently opened episodes, newest first.
func (j *Journal) Recent(limit int) ([]model.EpisodeRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(
		`SELECT episode_id, call_id, variant, opened_at, resolved_at, outcome
		 FROM episodes ORDER BY opened_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal query: %w", err)
	}
	defer rows.Close()

	var out []model.EpisodeRecord
	for rows.Next() {
		var rec model.EpisodeRecord
		var callID, variant string
		var opened int64
		var resolved sql.NullInt64
		var outcome sql.NullString
		if err := rows.Scan(&rec.EpisodeID, &callID, &variant, &opened, &resolved, &outcome); err != nil {
			return nil, err
		}
		rec.CallID = model.CallID(callID)
		rec.Variant = variant
		rec.OpenedAt = time.Unix(opened, 0)
		if resolved.Valid {
			rec.ResolvedAt = time.Unix(resolved.Int64, 0)
		}
		if outcome.Valid {
			rec.Outcome = model.EpisodeOutcome(outcome.String)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
