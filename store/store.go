// Package store persists named game saves and an event archive in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/nathoo/wolfcore/engine/save"
	"github.com/nathoo/wolfcore/store/migrations"
	"github.com/nathoo/wolfcore/types"
)

// ErrNotFound is returned when a save name does not exist.
var ErrNotFound = errors.New("save not found")

// Store is a SQLite database of saves and archived events.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Summary describes one save without decoding its snapshot.
type Summary struct {
	ID      string
	Name    string
	GameID  string
	Phase   types.Phase
	Round   int
	Winner  types.Camp
	SavedAt time.Time
}

// Open opens the database at path and applies the embedded migrations.
func Open(ctx context.Context, path string, log zerolog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Debug().Str("path", path).Msg("store opened")
	return &Store{db: db, log: log}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes snap under name, replacing any save with the same name, and
// returns the row ID.
func (s *Store) Save(ctx context.Context, name string, snap *save.Snapshot) (string, error) {
	if name = strings.TrimSpace(name); name == "" {
		name = save.DefaultName
	}
	data, err := save.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	id := uuid.NewString()
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO saves (id, name, game_id, phase, round, winner, snapshot, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET
		   game_id = excluded.game_id,
		   phase = excluded.phase,
		   round = excluded.round,
		   winner = excluded.winner,
		   snapshot = excluded.snapshot,
		   saved_at = excluded.saved_at
		 RETURNING id`,
		id, name, snap.GameID, string(snap.Phase), snap.Round,
		string(snap.Winner.WinnerCamp), string(data), savedAt.UTC().UnixMilli(),
	).Scan(&id)
	if err != nil {
		s.log.Error().Err(err).Str("name", name).Msg("save failed")
		return "", fmt.Errorf("save %q: %w", name, err)
	}
	s.log.Debug().Str("name", name).Str("id", id).Str("game", snap.GameID).Msg("game saved")
	return id, nil
}

// Load returns the snapshot saved under name.
func (s *Store) Load(ctx context.Context, name string) (*save.Snapshot, error) {
	if name = strings.TrimSpace(name); name == "" {
		name = save.DefaultName
	}
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM saves WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	snap, err := save.Unmarshal([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", name, err)
	}
	return snap, nil
}

// List returns every save, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, game_id, phase, round, winner, saved_at
		 FROM saves ORDER BY saved_at DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum           Summary
			phase, winner string
			savedAtMillis int64
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.GameID, &phase, &sum.Round, &winner, &savedAtMillis); err != nil {
			return nil, fmt.Errorf("scan save: %w", err)
		}
		sum.Phase = types.Phase(phase)
		sum.Winner = types.Camp(winner)
		sum.SavedAt = time.UnixMilli(savedAtMillis).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes the save called name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return nil
}

// Archive appends events of gameID to the archive. Events already archived
// under the same sequence number are skipped, so a full log can be archived
// repeatedly. It returns how many rows were added.
func (s *Store) Archive(ctx context.Context, gameID string, evs []types.Event) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin archive: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO events (id, game_id, seq, type, round, phase, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare archive: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, e := range evs {
		payload, err := json.Marshal(e)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("encode event %d: %w", e.Seq, err)
		}
		res, err := stmt.ExecContext(ctx, uuid.NewString(), gameID, e.Seq, string(e.Type), e.Round, string(e.Phase), string(payload))
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("archive event %d: %w", e.Seq, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit archive: %w", err)
	}
	s.log.Debug().Str("game", gameID).Int("added", added).Msg("events archived")
	return added, nil
}

// Events returns the archived events of gameID in sequence order.
func (s *Store) Events(ctx context.Context, gameID string) ([]types.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM events WHERE game_id = ? ORDER BY seq ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []types.Event
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		var e types.Event
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
