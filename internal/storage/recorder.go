package storage

import (
	"sync"
	"time"

	"github.com/lems/statuspanel/internal/health"
	"github.com/lems/statuspanel/internal/logger"
)

// cleanupEvery минимальный интервал между очистками истории
const cleanupEvery = time.Minute

// Recorder сохраняет опубликованные снимки и периодически удаляет старые
type Recorder struct {
	storage Storage
	ttl     time.Duration
	now     func() time.Time

	mu          sync.Mutex
	lastCleanup time.Time
}

func NewRecorder(store Storage, ttl time.Duration) *Recorder {
	return &Recorder{
		storage:     store,
		ttl:         ttl,
		now:         time.Now,
		lastCleanup: time.Now(),
	}
}

// Record подходит как подписчик поллера
func (r *Recorder) Record(snap health.Snapshot) {
	if !snap.Completed() {
		return
	}

	if err := r.storage.Save(snap); err != nil {
		logger.Warn("Save snapshot failed", "error", err)
	}

	now := r.now()

	r.mu.Lock()
	due := now.Sub(r.lastCleanup) > cleanupEvery
	if due {
		r.lastCleanup = now
	}
	r.mu.Unlock()

	if due {
		if err := r.storage.Cleanup(now.Add(-r.ttl)); err != nil {
			logger.Warn("Cleanup failed", "error", err)
		}
	}
}
