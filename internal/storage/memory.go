package storage

import (
	"sync"
	"time"

	"github.com/lems/statuspanel/internal/health"
)

type memoryStorage struct {
	mu    sync.RWMutex
	snaps []health.Snapshot // по возрастанию LastUpdated
}

func NewMemoryStorage() Storage {
	return &memoryStorage{}
}

func (m *memoryStorage) Save(snap health.Snapshot) error {
	if !snap.Completed() {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Сохраняем порядок, даже если часы отступили назад
	i := len(m.snaps)
	for i > 0 && m.snaps[i-1].LastUpdated.After(*snap.LastUpdated) {
		i--
	}
	m.snaps = append(m.snaps, health.Snapshot{})
	copy(m.snaps[i+1:], m.snaps[i:])
	m.snaps[i] = snap

	return nil
}

func (m *memoryStorage) GetHistory(from, to time.Time) ([]health.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var filtered []health.Snapshot
	for _, s := range m.snaps {
		ts := *s.LastUpdated
		if (ts.Equal(from) || ts.After(from)) &&
			(ts.Equal(to) || ts.Before(to)) {
			filtered = append(filtered, s)
		}
	}

	return filtered, nil
}

func (m *memoryStorage) GetLatest(count int) ([]health.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if count <= 0 {
		return nil, nil
	}

	var result []health.Snapshot
	if len(m.snaps) <= count {
		result = make([]health.Snapshot, len(m.snaps))
		copy(result, m.snaps)
	} else {
		result = make([]health.Snapshot, count)
		copy(result, m.snaps[len(m.snaps)-count:])
	}

	return result, nil
}

func (m *memoryStorage) Cleanup(olderThan time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var filtered []health.Snapshot
	for _, s := range m.snaps {
		if !s.LastUpdated.Before(olderThan) {
			filtered = append(filtered, s)
		}
	}
	m.snaps = filtered

	return nil
}

func (m *memoryStorage) Close() error {
	return nil
}
