// Package storage provides SQLite-based persistence for registry snapshots
// and their collision reports.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/hitbox/internal/collision"
	"github.com/vovakirdan/hitbox/internal/core"
)

// ErrSnapshotNotFound is returned when no snapshot has the requested ID.
var ErrSnapshotNotFound = errors.New("storage: snapshot not found")

// Store manages the SQLite database connection for snapshot persistence.
type Store struct {
	db *sql.DB
}

// Snapshot describes one saved registry state.
type Snapshot struct {
	ID           string
	Name         string
	FixedCount   int
	DynamicCount int
	PairCount    int
	CreatedAt    time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			fixed_count INTEGER NOT NULL DEFAULT 0,
			dynamic_count INTEGER NOT NULL DEFAULT 0,
			pair_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_snapshots_name ON snapshots(name);

		CREATE TABLE IF NOT EXISTS snapshot_rects (
			snapshot_id TEXT NOT NULL,
			category TEXT NOT NULL,
			handle INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			w INTEGER NOT NULL,
			h INTEGER NOT NULL,
			PRIMARY KEY (snapshot_id, category, handle)
		);

		CREATE TABLE IF NOT EXISTS collision_reports (
			snapshot_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			a_category TEXT NOT NULL,
			a_handle INTEGER NOT NULL,
			b_category TEXT NOT NULL,
			b_handle INTEGER NOT NULL,
			PRIMARY KEY (snapshot_id, seq)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSnapshot records every rectangle of reg and the given collision pairs
// under a new snapshot ID, in one transaction.
func (s *Store) SaveSnapshot(name string, reg *collision.Registry, pairs []collision.Pair) (Snapshot, error) {
	snap := Snapshot{
		ID:           uuid.NewString(),
		Name:         name,
		FixedCount:   reg.Len(collision.Fixed),
		DynamicCount: reg.Len(collision.Dynamic),
		PairCount:    len(pairs),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Snapshot{}, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO snapshots (id, name, fixed_count, dynamic_count, pair_count)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.ID, snap.Name, snap.FixedCount, snap.DynamicCount, snap.PairCount,
	); err != nil {
		return Snapshot{}, fmt.Errorf("storage: cannot save snapshot: %w", err)
	}

	for _, c := range []collision.Category{collision.Fixed, collision.Dynamic} {
		for h, r := range reg.Entries(c) {
			if _, err := tx.Exec(
				`INSERT INTO snapshot_rects (snapshot_id, category, handle, x, y, w, h)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				snap.ID, c.String(), int(h), r.X, r.Y, r.W, r.H,
			); err != nil {
				return Snapshot{}, fmt.Errorf("storage: cannot save %s: %w", collision.Ref{Category: c, Handle: h}, err)
			}
		}
	}

	for i, p := range pairs {
		if _, err := tx.Exec(
			`INSERT INTO collision_reports (snapshot_id, seq, a_category, a_handle, b_category, b_handle)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			snap.ID, i, p.A.Category.String(), int(p.A.Handle), p.B.Category.String(), int(p.B.Handle),
		); err != nil {
			return Snapshot{}, fmt.Errorf("storage: cannot save collision report: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("storage: cannot commit snapshot: %w", err)
	}

	saved, err := s.SnapshotByID(snap.ID)
	if err != nil {
		return Snapshot{}, err
	}
	return *saved, nil
}

// SnapshotByID retrieves snapshot metadata.
func (s *Store) SnapshotByID(id string) (*Snapshot, error) {
	var snap Snapshot
	var createdAt any

	err := s.db.QueryRow(
		`SELECT id, name, fixed_count, dynamic_count, pair_count, created_at
		 FROM snapshots
		 WHERE id = ?`,
		id,
	).Scan(&snap.ID, &snap.Name, &snap.FixedCount, &snap.DynamicCount, &snap.PairCount, &createdAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query snapshot: %w", err)
	}

	snap.CreatedAt = parseTime(createdAt)
	return &snap, nil
}

// Snapshots retrieves the most recent snapshots, newest first.
func (s *Store) Snapshots(limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, name, fixed_count, dynamic_count, pair_count, created_at
		 FROM snapshots
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		var createdAt any
		if err := rows.Scan(&snap.ID, &snap.Name, &snap.FixedCount, &snap.DynamicCount, &snap.PairCount, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		snap.CreatedAt = parseTime(createdAt)
		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return snaps, nil
}

// LoadSnapshot rebuilds a registry from a snapshot. Rectangles are
// registered in handle order so every handle matches the saved one.
// opts configure the new registry; a capacity smaller than the snapshot
// makes loading fail.
func (s *Store) LoadSnapshot(id string, opts ...collision.Option) (*collision.Registry, error) {
	if _, err := s.SnapshotByID(id); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT category, handle, x, y, w, h
		 FROM snapshot_rects
		 WHERE snapshot_id = ?
		 ORDER BY category, handle`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query snapshot rects: %w", err)
	}
	defer rows.Close()

	reg := collision.NewRegistry(opts...)
	for rows.Next() {
		var category string
		var handle int
		var r core.Rect
		if err := rows.Scan(&category, &handle, &r.X, &r.Y, &r.W, &r.H); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}

		c, err := collision.ParseCategory(category)
		if err != nil {
			return nil, fmt.Errorf("storage: snapshot %s: %w", id, err)
		}
		h, err := reg.RegisterRect(c, r)
		if err != nil {
			return nil, fmt.Errorf("storage: snapshot %s: %w", id, err)
		}
		if int(h) != handle {
			return nil, fmt.Errorf("storage: snapshot %s: %s handle %d restored as %d", id, c, handle, h)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return reg, nil
}

// Report retrieves the collision pairs saved with a snapshot, in their
// original order.
func (s *Store) Report(id string) ([]collision.Pair, error) {
	if _, err := s.SnapshotByID(id); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT a_category, a_handle, b_category, b_handle
		 FROM collision_reports
		 WHERE snapshot_id = ?
		 ORDER BY seq`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query collision report: %w", err)
	}
	defer rows.Close()

	var pairs []collision.Pair
	for rows.Next() {
		var aCat, bCat string
		var aHandle, bHandle int
		if err := rows.Scan(&aCat, &aHandle, &bCat, &bHandle); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}

		a, err := collision.ParseCategory(aCat)
		if err != nil {
			return nil, fmt.Errorf("storage: snapshot %s: %w", id, err)
		}
		b, err := collision.ParseCategory(bCat)
		if err != nil {
			return nil, fmt.Errorf("storage: snapshot %s: %w", id, err)
		}
		pairs = append(pairs, collision.Pair{
			A: collision.Ref{Category: a, Handle: collision.Handle(aHandle)},
			B: collision.Ref{Category: b, Handle: collision.Handle(bHandle)},
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return pairs, nil
}

// DeleteSnapshot removes a snapshot with its rectangles and report.
func (s *Store) DeleteSnapshot(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot count deleted snapshots: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}

	for _, table := range []string{"snapshot_rects", "collision_reports"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE snapshot_id = ?", id); err != nil {
			return fmt.Errorf("storage: cannot delete from %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit delete: %w", err)
	}
	return nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
