package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	UpdatesTotal         *prometheus.CounterVec
	ErrorsTotal          prometheus.Counter
	RateLimited          prometheus.Counter
	UpdateProcessingTime prometheus.Histogram
	BookingsTotal        *prometheus.CounterVec
	SchedulingErrors     prometheus.Counter
}

// NewMetrics регистрирует метрики бота в reg. nil означает реестр по умолчанию.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		UpdatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_updates_total",
			Help: "Total number of processed updates",
		}, []string{"type"}),

		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_errors_total",
			Help: "Total number of recovered panics in update handlers",
		}),

		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_rate_limited_total",
			Help: "Total number of updates rejected by the per-user rate limit",
		}),

		UpdateProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),

		BookingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_bookings_total",
			Help: "Total number of bookings by resulting status",
		}, []string{"status"}),

		SchedulingErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_reminder_scheduling_errors_total",
			Help: "Total number of confirmed bookings left without reminders",
		}),
	}
}

func (b *Bot) countUpdate(kind string) {
	if b.metrics != nil {
		b.metrics.UpdatesTotal.WithLabelValues(kind).Inc()
	}
}
