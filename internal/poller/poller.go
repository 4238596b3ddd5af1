package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lems/statuspanel/internal/health"
	"github.com/lems/statuspanel/internal/logger"
)

// DefaultInterval интервал опроса health endpoint
const DefaultInterval = 30 * time.Second

var (
	ErrAlreadyRunning  = errors.New("poller already running")
	ErrInvalidInterval = errors.New("poll interval must be positive")
)

// Handle владеет таймером одного запуска поллера.
// Получается из Start и передаётся в Stop.
type Handle struct {
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// Interval возвращает интервал опроса
func (h *Handle) Interval() time.Duration {
	return h.interval
}

// Done закрывается после завершения цикла опроса
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Poller периодически опрашивает health endpoint и хранит последний снимок.
// Каждая проверка получает номер поколения; опубликовать результат
// может только проверка с последним номером.
type Poller struct {
	checker health.Checker
	now     func() time.Time

	mu             sync.Mutex
	snapshot       health.Snapshot
	generation     uint64
	handle         *Handle
	callbacks      []SnapshotCallback
	checkCallbacks []CheckCallback

	// publishMu сохраняет порядок вызова подписчиков; удерживается во время их вызова
	publishMu sync.Mutex
}

func New(checker health.Checker) *Poller {
	return &Poller{
		checker:  checker,
		now:      time.Now,
		snapshot: health.Initial(),
	}
}

// OnSnapshot добавляет подписчика на публикуемые снимки.
// Подписчики вызываются последовательно под publishMu: из них можно читать
// Snapshot и Running, но нельзя вызывать Start, Stop и CheckOnce.
func (p *Poller) OnSnapshot(cb SnapshotCallback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks = append(p.callbacks, cb)
}

// OnCheck добавляет наблюдателя за результатами проверок.
// Как и для OnSnapshot, наблюдатель не должен вызывать Start, Stop и CheckOnce.
func (p *Poller) OnCheck(cb CheckCallback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checkCallbacks = append(p.checkCallbacks, cb)
}

// Snapshot возвращает последний опубликованный снимок
func (p *Poller) Snapshot() health.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

// Running сообщает, есть ли активный запуск
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle != nil
}

// Start сбрасывает снимок в исходное состояние, публикует его,
// сразу выполняет первую проверку и повторяет её каждые interval.
func (p *Poller) Start(interval time.Duration) (*Handle, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	p.mu.Lock()
	if p.handle != nil {
		p.mu.Unlock()
		return nil, ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		interval: interval,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	p.handle = h
	// Результаты проверок, начатых до запуска, больше не публикуются
	p.generation++
	p.snapshot = health.Initial()
	callbacks := p.snapshotCallbacks()
	p.mu.Unlock()

	notify(callbacks, health.Initial())

	go p.run(ctx, h)

	logger.Info("Poller started", "interval", interval)
	return h, nil
}

// Stop останавливает запуск h и отменяет текущий запрос.
// После возврата снимки от этого запуска не публикуются.
// Устаревший или nil handle игнорируется.
func (p *Poller) Stop(h *Handle) {
	if h == nil {
		return
	}

	p.mu.Lock()
	if p.handle != h {
		p.mu.Unlock()
		return
	}
	p.handle = nil
	p.generation++
	p.mu.Unlock()

	h.cancel()
	<-h.done

	logger.Info("Poller stopped")
}

// CheckOnce выполняет одну проверку и публикует её результат.
// Ошибки проверки не возвращаются: они превращаются в снимок "всё offline".
func (p *Poller) CheckOnce(ctx context.Context) health.Snapshot {
	return p.check(ctx, nil)
}

func (p *Poller) run(ctx context.Context, h *Handle) {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	// Первая проверка сразу
	p.check(ctx, h)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			p.check(ctx, h)
		}
	}
}

func (p *Poller) check(ctx context.Context, h *Handle) health.Snapshot {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	start := time.Now()
	res := p.checker.Check(ctx)
	elapsed := time.Since(start)

	switch {
	case res.Err != nil:
		logger.Warn("Health check failed", "error", res.Err, "elapsed", elapsed)
	case res.Report != nil:
		logger.Debug("Health check done", "status", res.Report.StatusCode, "elapsed", elapsed)
	}

	p.mu.Lock()
	checkCallbacks := append([]CheckCallback(nil), p.checkCallbacks...)
	p.mu.Unlock()
	for _, cb := range checkCallbacks {
		cb(res, elapsed)
	}

	snap := health.FromResult(res, p.now())
	if !p.publish(gen, h, snap) {
		logger.Debug("Stale health check result discarded", "generation", gen)
	}
	return snap
}

// publish сохраняет и рассылает снимок, если поколение gen последнее
// и запуск h (если задан) не остановлен
func (p *Poller) publish(gen uint64, h *Handle, snap health.Snapshot) bool {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	p.mu.Lock()
	if gen != p.generation || (h != nil && p.handle != h) {
		p.mu.Unlock()
		return false
	}
	p.snapshot = snap
	callbacks := p.snapshotCallbacks()
	p.mu.Unlock()

	notify(callbacks, snap)
	return true
}

// snapshotCallbacks копирует список подписчиков; вызывается под p.mu
func (p *Poller) snapshotCallbacks() []SnapshotCallback {
	return append([]SnapshotCallback(nil), p.callbacks...)
}

func notify(callbacks []SnapshotCallback, snap health.Snapshot) {
	for _, cb := range callbacks {
		cb(snap)
	}
}
