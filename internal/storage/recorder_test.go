package storage

import (
	"testing"
	"time"

	"github.com/lems/statuspanel/internal/health"
)

func TestRecorderSkipsInitial(t *testing.T) {
	store := NewMemoryStorage()
	r := NewRecorder(store, time.Hour)

	r.Record(health.Initial())

	snaps, _ := store.GetLatest(10)
	if len(snaps) != 0 {
		t.Errorf("initial snapshot must not be recorded, got %d", len(snaps))
	}
}

func TestRecorderCleansUpOldSnapshots(t *testing.T) {
	store := NewMemoryStorage()
	r := NewRecorder(store, time.Hour)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.lastCleanup = base
	r.now = func() time.Time { return base }

	r.Record(health.Offline(base.Add(-2 * time.Hour)))
	r.Record(health.Offline(base.Add(-30 * time.Minute)))

	// Очистка ещё не наступила
	snaps, _ := store.GetLatest(10)
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots before cleanup, got %d", len(snaps))
	}

	r.now = func() time.Time { return base.Add(2 * time.Minute) }
	r.Record(health.Offline(base.Add(2 * time.Minute)))

	snaps, _ = store.GetLatest(10)
	if len(snaps) != 2 {
		t.Fatalf("expected snapshot older than ttl to be removed, got %d", len(snaps))
	}
	for _, s := range snaps {
		if s.LastUpdated.Before(base.Add(-time.Hour)) {
			t.Errorf("snapshot %v should have been cleaned up", s.LastUpdated)
		}
	}
}
