package storage

import (
	"time"

	"github.com/lems/statuspanel/internal/health"
)

// Storage интерфейс хранилища истории снимков состояния
type Storage interface {
	// Save сохраняет завершённый снимок; снимки без LastUpdated пропускаются
	Save(snap health.Snapshot) error

	// GetHistory возвращает снимки за указанный период по возрастанию времени
	GetHistory(from, to time.Time) ([]health.Snapshot, error)

	// GetLatest возвращает последние N снимков по возрастанию времени
	GetLatest(count int) ([]health.Snapshot, error)

	// Cleanup удаляет снимки старше указанного времени
	Cleanup(olderThan time.Time) error

	// Close закрывает хранилище
	Close() error
}
