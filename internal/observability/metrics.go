package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters the cycle and API surfaces report into.
type Metrics struct {
	CyclesTotal            *prometheus.CounterVec
	CycleDuration          prometheus.Histogram
	AchievementEventsTotal prometheus.Counter
	CompletionEventsTotal  prometheus.Counter
	DeliveryFailuresTotal  prometheus.Counter
	SkippedRecordsTotal    prometheus.Counter
	RoleGrantsTotal        *prometheus.CounterVec
}

const (
	CycleResultSuccess      = "success"
	CycleResultFetchSkipped = "fetch_skipped"
	CycleResultStorageError = "storage_error"
)

const (
	RoleGrantResultSuccess = "success"
	RoleGrantResultFailure = "failure"
)

func NewMetrics(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		CyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adventbot_cycles_total",
			Help: "Poll cycles by outcome.",
		}, []string{"result"}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "adventbot_cycle_duration_seconds",
			Help:    "Wall-clock duration of a full fetch/diff/notify/persist cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		AchievementEventsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "adventbot_achievement_events_total",
			Help: "Achievement events emitted by the diff engine.",
		}),
		CompletionEventsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "adventbot_completion_events_total",
			Help: "Full-completion events fired.",
		}),
		DeliveryFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "adventbot_delivery_failures_total",
			Help: "Notification deliveries that failed and were logged for follow-up.",
		}),
		SkippedRecordsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "adventbot_skipped_records_total",
			Help: "Malformed upstream member records skipped during parsing.",
		}),
		RoleGrantsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adventbot_role_grants_total",
			Help: "Completion role grants by outcome.",
		}, []string{"result"}),
	}
}
