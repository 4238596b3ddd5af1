package poller

import (
	"time"

	"github.com/lems/statuspanel/internal/health"
)

// SnapshotCallback вызывается при публикации нового снимка
type SnapshotCallback func(snap health.Snapshot)

// CheckCallback вызывается после каждой проверки, в том числе отброшенной
type CheckCallback func(res health.Result, elapsed time.Duration)
