package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersRegistered prometheus.Counter
	GoalsCreated    prometheus.Counter
	EntriesCreated  prometheus.Counter
	BudgetsCreated  prometheus.Counter
	StatsCacheHits  prometheus.Counter
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "smartsave_users_registered_total",
			Help: "Total number of users registered",
		}),
		GoalsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "smartsave_goals_created_total",
			Help: "Total number of savings goals created",
		}),
		EntriesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "smartsave_entries_created_total",
			Help: "Total number of savings entries created",
		}),
		BudgetsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "smartsave_budgets_created_total",
			Help: "Total number of monthly budgets created",
		}),
		StatsCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "smartsave_stats_cache_hits_total",
			Help: "Total number of entry stats requests served from cache",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smartsave_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// ObserveRequestDuration records one request latency sample.
func (m *Metrics) ObserveRequestDuration(method string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// IncUsersRegistered increments the registered users counter by 1.
func (m *Metrics) IncUsersRegistered() {
	if m != nil {
		m.UsersRegistered.Inc()
	}
}

// IncGoalsCreated increments the goals created counter by 1.
func (m *Metrics) IncGoalsCreated() {
	if m != nil {
		m.GoalsCreated.Inc()
	}
}

// IncEntriesCreated increments the entries created counter by 1.
func (m *Metrics) IncEntriesCreated() {
	if m != nil {
		m.EntriesCreated.Inc()
	}
}

// IncBudgetsCreated increments the budgets created counter by 1.
func (m *Metrics) IncBudgetsCreated() {
	if m != nil {
		m.BudgetsCreated.Inc()
	}
}

// IncStatsCacheHits increments the stats cache hit counter by 1.
func (m *Metrics) IncStatsCacheHits() {
	if m != nil {
		m.StatsCacheHits.Inc()
	}
}
