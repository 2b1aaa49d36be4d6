package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	scheduleCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vigil",
			Name:      "schedule_created_total",
			Help:      "Count of schedules created.",
		},
	)

	scheduleDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vigil",
			Name:      "schedule_deleted_total",
			Help:      "Count of schedules deleted.",
		},
	)

	slotMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vigil",
			Name:      "slot_mutations_total",
			Help:      "Count of slot mutations by kind (claim, free, edit).",
		},
		[]string{"kind"},
	)

	summaryDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vigil",
			Name:      "summary_dispatched_total",
			Help:      "Count of completion summaries dispatched by trigger (auto, manual).",
		},
		[]string{"trigger"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vigil",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by handler.",
		},
		[]string{"handler"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(scheduleCreated, scheduleDeleted, slotMutations, summaryDispatched, httpRequests)
	})
}

func IncScheduleCreated() {
	scheduleCreated.Inc()
}

func IncScheduleDeleted() {
	scheduleDeleted.Inc()
}

func IncSlotMutation(kind string) {
	slotMutations.WithLabelValues(kind).Inc()
}

func IncSummaryDispatched(trigger string) {
	summaryDispatched.WithLabelValues(trigger).Inc()
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}
