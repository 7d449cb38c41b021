package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LeadScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crm_lead_score",
			Help:    "Distribution of computed lead scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	Assignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_lead_assignments_total",
			Help: "Leads assigned to an agent, by mode",
		},
		[]string{"mode"},
	)

	AssignmentMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_lead_assignment_misses_total",
			Help: "Assignment attempts that found no eligible agent",
		},
		[]string{"mode"},
	)

	SweepFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_sweep_failures_total",
			Help: "Leads the auto-assignment sweep failed to persist",
		},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "crm_sweep_duration_seconds",
			Help: "Duration of auto-assignment sweeps",
		},
	)

	ChatbotIntents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_chatbot_intents_total",
			Help: "Chatbot messages by detected intent",
		},
		[]string{"intent"},
	)

	ContentGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_content_generations_total",
			Help: "Property content generations by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_http_requests_total",
			Help: "HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "crm_http_request_duration_seconds",
			Help: "HTTP request latency by route",
		},
		[]string{"route", "method"},
	)
)

const (
	ModeAuto   = "auto"
	ModeSweep  = "sweep"
	ModeManual = "manual"
)

// RecordAssignment counts one assignment attempt in the given mode. Callers
// record only once the assignment has been committed.
func RecordAssignment(mode string, assigned bool) {
	if assigned {
		Assignments.WithLabelValues(mode).Inc()
		return
	}
	AssignmentMisses.WithLabelValues(mode).Inc()
}
