// Package metrics defines the Prometheus collectors exported on
// PROMETHEUS_PORT. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "croowa"

// Metrics holds the application collectors
type Metrics struct {
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	contributions     prometheus.Counter
	contributedAmount prometheus.Counter
	milestones        *prometheus.CounterVec
	chatMessages      prometheus.Counter
	botCommands       *prometheus.CounterVec
	nudges            prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		contributions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contributions_total",
			Help:      "Recorded contributions.",
		}),
		contributedAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contributed_minor_units_total",
			Help:      "Sum of recorded contributions in minor currency units.",
		}),
		milestones: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "milestones_unlocked_total",
			Help:      "Goal milestones unlocked by percentage.",
		}, []string{"percentage"}),
		chatMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "Group chat messages sent.",
		}),
		botCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bot_commands_total",
			Help:      "Telegram commands by name and outcome.",
		}, []string{"command", "outcome"}),
		nudges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coach_nudges_total",
			Help:      "Pace nudges sent to group chats.",
		}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.contributions,
		m.contributedAmount,
		m.milestones,
		m.chatMessages,
		m.botCommands,
		m.nudges,
	)
	return m
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObserveContribution counts a recorded contribution
func (m *Metrics) ObserveContribution(amount int64) {
	if m == nil {
		return
	}
	m.contributions.Inc()
	m.contributedAmount.Add(float64(amount))
}

// ObserveMilestone counts an unlocked milestone
func (m *Metrics) ObserveMilestone(percentage int) {
	if m == nil {
		return
	}
	m.milestones.WithLabelValues(strconv.Itoa(percentage)).Inc()
}

func (m *Metrics) ObserveChatMessage() {
	if m == nil {
		return
	}
	m.chatMessages.Inc()
}

func (m *Metrics) ObserveNudge() {
	if m == nil {
		return
	}
	m.nudges.Inc()
}

// ObserveCommand counts a bot command; ok is false when the handler failed
func (m *Metrics) ObserveCommand(command string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.botCommands.WithLabelValues(command, outcome).Inc()
}

// Middleware records request counts and latency. Routes are labelled by the
// ServeMux pattern that matched, so path parameters do not explode label
// cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming handlers flush through the recorder
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
