// Package visitdb keeps a SQLite history of the bot's patrol: one row per
// run and one row per pursuit event. It is diagnostics only; the pursuit
// loop itself never reads it.
package visitdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	db *sql.DB

	ch   chan visitRow
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	dropped atomic.Uint64
}

type visitRow struct {
	RunID      string
	Tick       uint64
	WaypointID string
	Event      string
	Dist       float64
	RecordedAt string
}

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &DB{
		db: db,
		ch: make(chan visitRow, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			agent_name TEXT NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			waypoint_id TEXT NOT NULL,
			event TEXT NOT NULL,
			dist REAL NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_visits_run_tick ON visits(run_id, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_visits_waypoint ON visits(waypoint_id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *DB) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// StartRun records a new run row synchronously so a crash right after
// startup still leaves the run visible.
func (s *DB) StartRun(runID, agentName string) error {
	_, err := s.db.Exec(
		`INSERT INTO runs(run_id, agent_name, started_at) VALUES(?,?,?)`,
		runID, agentName, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// RecordVisit queues one pursuit event. Drops the row if the writer has
// fallen behind; the JSONL trace remains the source of truth.
func (s *DB) RecordVisit(runID string, tick uint64, waypointID, event string, dist float64) {
	if s == nil || s.closed.Load() {
		return
	}
	row := visitRow{
		RunID:      runID,
		Tick:       tick,
		WaypointID: waypointID,
		Event:      event,
		Dist:       dist,
		RecordedAt: time.Now().UTC().Format(time.RFC3339),
	}
	select {
	case s.ch <- row:
	default:
		s.dropped.Add(1)
	}
}

// Dropped reports how many visit rows were discarded under backpressure.
func (s *DB) Dropped() uint64 {
	return s.dropped.Load()
}

// EventCounts returns, for one run, how many visits were recorded per
// event kind.
func (s *DB) EventCounts(runID string) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT event, COUNT(*) FROM visits WHERE run_id=? GROUP BY event`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var event string
		var n int
		if err := rows.Scan(&event, &n); err != nil {
			return nil, err
		}
		out[event] = n
	}
	return out, rows.Err()
}

func (s *DB) loop() {
	for row := range s.ch {
		if _, err := s.db.Exec(
			`INSERT INTO visits(run_id, tick, waypoint_id, event, dist, recorded_at) VALUES(?,?,?,?,?,?)`,
			row.RunID, row.Tick, row.WaypointID, row.Event, row.Dist, row.RecordedAt,
		); err != nil {
			// Keep draining; a broken index must not take the bot down.
			continue
		}
	}
}
