package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lems/statuspanel/internal/health"
)

// Metrics метрики опроса health endpoint на отдельном реестре
type Metrics struct {
	Registry *prometheus.Registry

	ChecksTotal          *prometheus.CounterVec
	CheckDurationSeconds prometheus.Histogram
	ServiceUp            *prometheus.GaugeVec
	LastCheckTimestamp   prometheus.Gauge
}

// New создаёт метрики и регистрирует их вместе с метриками Go runtime и процесса
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		ChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statuspanel_checks_total",
				Help: "Total number of health checks by result.",
			},
			[]string{"result"},
		),
		CheckDurationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "statuspanel_check_duration_seconds",
				Help:    "Duration of health endpoint requests.",
				Buckets: prometheus.DefBuckets,
			},
		),
		ServiceUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "statuspanel_service_up",
				Help: "Whether the service was online at the last published snapshot.",
			},
			[]string{"service"},
		),
		LastCheckTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "statuspanel_last_check_timestamp_seconds",
				Help: "Unix time of the last published completed snapshot.",
			},
		),
	}

	reg.MustRegister(
		m.ChecksTotal,
		m.CheckDurationSeconds,
		m.ServiceUp,
		m.LastCheckTimestamp,
	)

	return m
}

// ObserveCheck учитывает результат одной проверки
func (m *Metrics) ObserveCheck(res health.Result, elapsed time.Duration) {
	result := "ok"
	if !res.OK() {
		result = "failed"
	}
	m.ChecksTotal.WithLabelValues(result).Inc()
	m.CheckDurationSeconds.Observe(elapsed.Seconds())
}

// ObserveSnapshot обновляет статусы сервисов по опубликованному снимку
func (m *Metrics) ObserveSnapshot(snap health.Snapshot) {
	for name, status := range snap.Services() {
		up := 0.0
		if status == health.StatusOnline {
			up = 1
		}
		m.ServiceUp.WithLabelValues(name).Set(up)
	}
	if snap.LastUpdated != nil {
		m.LastCheckTimestamp.Set(float64(snap.LastUpdated.UnixNano()) / float64(time.Second))
	}
}

// Handler возвращает HTTP обработчик для /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
