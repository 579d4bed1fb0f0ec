package storage

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/vovakirdan/hitbox/internal/collision"
	"github.com/vovakirdan/hitbox/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func groundRegistry(t *testing.T) *collision.Registry {
	t.Helper()
	reg := collision.NewRegistry()
	if _, err := reg.Register(collision.Fixed, 0, 0, 100, 20); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if _, err := reg.Register(collision.Fixed, 200, 0, 10, 10); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if _, err := reg.Register(collision.Dynamic, 10, 15, 10, 10); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	return reg
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	store := openTestStore(t)
	reg := groundRegistry(t)
	pairs := reg.Collisions()

	snap, err := store.SaveSnapshot("ground", reg, pairs)
	if err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}
	if snap.ID == "" || snap.Name != "ground" {
		t.Errorf("SaveSnapshot() = %+v", snap)
	}
	if snap.FixedCount != 2 || snap.DynamicCount != 1 || snap.PairCount != 1 {
		t.Errorf("counts = (%d, %d, %d), expected (2, 1, 1)", snap.FixedCount, snap.DynamicCount, snap.PairCount)
	}

	loaded, err := store.LoadSnapshot(snap.ID)
	if err != nil {
		t.Fatalf("LoadSnapshot() failed: %v", err)
	}
	for _, c := range []collision.Category{collision.Fixed, collision.Dynamic} {
		if loaded.Len(c) != reg.Len(c) {
			t.Errorf("Len(%s) = %d, expected %d", c, loaded.Len(c), reg.Len(c))
		}
		for h, want := range reg.Entries(c) {
			got, err := loaded.Get(c, h)
			if err != nil {
				t.Errorf("Get(%s, %d) failed: %v", c, h, err)
				continue
			}
			if got != want {
				t.Errorf("Get(%s, %d) = %v, expected %v", c, h, got, want)
			}
		}
	}

	report, err := store.Report(snap.ID)
	if err != nil {
		t.Fatalf("Report() failed: %v", err)
	}
	if !slices.Equal(report, pairs) {
		t.Errorf("Report() = %v, expected %v", report, pairs)
	}
}

func TestLoadSnapshotRespectsOptions(t *testing.T) {
	store := openTestStore(t)
	snap, err := store.SaveSnapshot("ground", groundRegistry(t), nil)
	if err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	_, err = store.LoadSnapshot(snap.ID, collision.WithCapacity(1))
	if !errors.Is(err, collision.ErrCapacityExceeded) {
		t.Errorf("LoadSnapshot() error = %v, expected ErrCapacityExceeded", err)
	}
}

func TestSnapshotNotFound(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.LoadSnapshot("nope"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("LoadSnapshot() error = %v, expected ErrSnapshotNotFound", err)
	}
	if _, err := store.Report("nope"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("Report() error = %v, expected ErrSnapshotNotFound", err)
	}
	if err := store.DeleteSnapshot("nope"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("DeleteSnapshot() error = %v, expected ErrSnapshotNotFound", err)
	}
}

func TestSnapshotsListing(t *testing.T) {
	store := openTestStore(t)
	reg := groundRegistry(t)

	var ids []string
	for _, name := range []string{"one", "two", "three"} {
		snap, err := store.SaveSnapshot(name, reg, nil)
		if err != nil {
			t.Fatalf("SaveSnapshot() failed: %v", err)
		}
		ids = append(ids, snap.ID)
	}

	snaps, err := store.Snapshots(10)
	if err != nil {
		t.Fatalf("Snapshots() failed: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("Snapshots() returned %d, expected 3", len(snaps))
	}
	// Newest first
	if snaps[0].Name != "three" || snaps[2].Name != "one" {
		t.Errorf("Snapshots() order = %s, %s, %s", snaps[0].Name, snaps[1].Name, snaps[2].Name)
	}

	limited, err := store.Snapshots(2)
	if err != nil {
		t.Fatalf("Snapshots() failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Snapshots(2) returned %d", len(limited))
	}

	if err := store.DeleteSnapshot(ids[0]); err != nil {
		t.Fatalf("DeleteSnapshot() failed: %v", err)
	}
	snaps, _ = store.Snapshots(10)
	if len(snaps) != 2 {
		t.Errorf("Snapshots() after delete returned %d, expected 2", len(snaps))
	}
	if _, err := store.LoadSnapshot(ids[0]); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("LoadSnapshot() of deleted snapshot error = %v", err)
	}
}

func TestSnapshotIsolatedFromLaterChanges(t *testing.T) {
	store := openTestStore(t)
	reg := groundRegistry(t)

	snap, err := store.SaveSnapshot("before", reg, reg.Collisions())
	if err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	reg.Update(collision.Dynamic, 0, core.MustRect(10, 25, 10, 10))

	loaded, err := store.LoadSnapshot(snap.ID)
	if err != nil {
		t.Fatalf("LoadSnapshot() failed: %v", err)
	}
	if got, _ := loaded.Get(collision.Dynamic, 0); got != core.MustRect(10, 15, 10, 10) {
		t.Errorf("loaded dynamic#0 = %v, expected original position", got)
	}
	if len(loaded.Collisions()) != 1 {
		t.Errorf("loaded registry should still collide")
	}
}

func TestDeleteSnapshotRemovesChildRows(t *testing.T) {
	store := openTestStore(t)
	reg := groundRegistry(t)

	gone, err := store.SaveSnapshot("gone", reg, reg.Collisions())
	if err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}
	kept, err := store.SaveSnapshot("kept", reg, reg.Collisions())
	if err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	if err := store.DeleteSnapshot(gone.ID); err != nil {
		t.Fatalf("DeleteSnapshot() failed: %v", err)
	}
	if err := store.DeleteSnapshot(gone.ID); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("second DeleteSnapshot() error = %v, expected ErrSnapshotNotFound", err)
	}

	for _, table := range []string{"snapshot_rects", "collision_reports"} {
		var n int
		if err := store.db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE snapshot_id = ?", gone.ID).Scan(&n); err != nil {
			t.Fatalf("count %s failed: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s has %d rows for deleted snapshot", table, n)
		}
	}

	report, err := store.Report(kept.ID)
	if err != nil {
		t.Fatalf("Report() failed: %v", err)
	}
	if len(report) != 1 {
		t.Errorf("Report() of kept snapshot = %v, expected 1 pair", report)
	}
	if loaded, err := store.LoadSnapshot(kept.ID); err != nil || loaded.Len(collision.Fixed) != 2 {
		t.Errorf("LoadSnapshot() of kept snapshot failed: %v", err)
	}
}
