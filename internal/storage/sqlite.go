// Package storage persists exploration state between CLI invocations:
// the session snapshot continuation depends on, and a history of
// completed runs with their recorded trajectories.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kvarnsen/fmex/internal/model"
	"github.com/kvarnsen/fmex/internal/session"
)

// ErrNotFound indicates a run id with no stored record.
var ErrNotFound = errors.New("storage: run not found")

const dbFile = "fmex.db"

// Store is a sqlite-backed persistence layer rooted in a data directory.
type Store struct {
	baseDir string
	db      *sql.DB
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Init creates the data directory, opens the database and ensures the
// schema exists.
func (s *Store) Init(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", filepath.Join(s.baseDir, dbFile))
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshot (
			id      INTEGER PRIMARY KEY CHECK (id = 1),
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS runs (
			id         TEXT PRIMARY KEY,
			model      TEXT NOT NULL,
			mode       TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			start_time REAL NOT NULL,
			stop_time  REAL NOT NULL,
			points     INTEGER NOT NULL,
			payload    BLOB NOT NULL
		);
	`)
	return err
}

func (s *Store) handle() (*sql.DB, error) {
	if s.db == nil {
		return nil, errors.New("storage: store not initialized")
	}
	return s.db, nil
}

// SaveSnapshot replaces the persisted session snapshot.
func (s *Store) SaveSnapshot(ctx context.Context, snap session.Snapshot) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO snapshot (id, payload) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET payload = excluded.payload`, payload)
	return err
}

// LoadSnapshot returns the persisted session snapshot, if any.
func (s *Store) LoadSnapshot(ctx context.Context) (session.Snapshot, bool, error) {
	var snap session.Snapshot
	db, err := s.handle()
	if err != nil {
		return snap, false, err
	}
	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM snapshot WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, err
	}
	if err := json.Unmarshal(payload, &snap); err != nil {
		return snap, false, err
	}
	return snap, true, nil
}

// ClearSnapshot discards the persisted session snapshot, resetting the
// continuation cursor for future invocations.
func (s *Store) ClearSnapshot(ctx context.Context) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `DELETE FROM snapshot WHERE id = 1`)
	return err
}

// RunMetadata describes one stored run.
type RunMetadata struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
	StartTime float64   `json:"start_time"`
	StopTime  float64   `json:"stop_time"`
	Points    int       `json:"points"`
}

// SaveRun stores a completed run's metadata and trajectory, returning the
// generated run id.
func (s *Store) SaveRun(ctx context.Context, meta RunMetadata, res *model.Result) (string, error) {
	db, err := s.handle()
	if err != nil {
		return "", err
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Model, time.Now().UnixNano())
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return "", err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO runs (id, model, mode, created_at, start_time, stop_time, points, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Model, meta.Mode, meta.CreatedAt, meta.StartTime, meta.StopTime, meta.Points, payload)
	if err != nil {
		return "", err
	}
	return meta.ID, nil
}

// ListRuns returns all stored run metadata, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunMetadata, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, model, mode, created_at, start_time, stop_time, points FROM runs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunMetadata
	for rows.Next() {
		var m RunMetadata
		if err := rows.Scan(&m.ID, &m.Model, &m.Mode, &m.CreatedAt, &m.StartTime, &m.StopTime, &m.Points); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// LoadRun returns one stored run with its trajectory.
func (s *Store) LoadRun(ctx context.Context, id string) (RunMetadata, *model.Result, error) {
	var m RunMetadata
	db, err := s.handle()
	if err != nil {
		return m, nil, err
	}
	var payload []byte
	err = db.QueryRowContext(ctx,
		`SELECT id, model, mode, created_at, start_time, stop_time, points, payload
		 FROM runs WHERE id = ?`, id).
		Scan(&m.ID, &m.Model, &m.Mode, &m.CreatedAt, &m.StartTime, &m.StopTime, &m.Points, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return m, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return m, nil, err
	}
	var res model.Result
	if err := json.Unmarshal(payload, &res); err != nil {
		return m, nil, err
	}
	return m, &res, nil
}
