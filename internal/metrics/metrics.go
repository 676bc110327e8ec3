package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "interviewflow"

// HTTP holds the request collectors registered for the API.
type HTTP struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

func NewHTTP(reg prometheus.Registerer) *HTTP {
	f := promauto.With(reg)
	return &HTTP{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests received",
		}, []string{"method", "route", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests",
		}),
	}
}

// Middleware records request metrics labelled by the matched route template,
// so /interviews/:id stays one series.
func (m *HTTP) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.requests.WithLabelValues(c.Request.Method, route, status).Inc()
		m.latency.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

// Domain counts scheduling events. A nil *Domain records nothing.
type Domain struct {
	scheduled      prometheus.Counter
	conflicts      prometheus.Counter
	transitions    *prometheus.CounterVec
	evaluations    prometheus.Counter
	notifyFailures *prometheus.CounterVec
	reminders      prometheus.Counter
}

func NewDomain(reg prometheus.Registerer) *Domain {
	f := promauto.With(reg)
	return &Domain{
		scheduled: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interviews_scheduled_total",
			Help:      "Interviews created",
		}),
		conflicts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_conflicts_total",
			Help:      "Schedule or reschedule attempts rejected by a participant conflict",
		}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interview_transitions_total",
			Help:      "Lifecycle operations applied, by operation",
		}, []string{"operation"}),
		evaluations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_submitted_total",
			Help:      "Evaluation submissions, including updates",
		}),
		notifyFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Interview events the notifier failed to publish",
		}, []string{"event"}),
		reminders: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Reminder events published",
		}),
	}
}

func (d *Domain) Scheduled() {
	if d != nil {
		d.scheduled.Inc()
	}
}

func (d *Domain) Conflict() {
	if d != nil {
		d.conflicts.Inc()
	}
}

func (d *Domain) Transition(operation string) {
	if d != nil {
		d.transitions.WithLabelValues(operation).Inc()
	}
}

func (d *Domain) EvaluationSubmitted() {
	if d != nil {
		d.evaluations.Inc()
	}
}

func (d *Domain) NotifyFailed(event string) {
	if d != nil {
		d.notifyFailures.WithLabelValues(event).Inc()
	}
}

func (d *Domain) ReminderSent() {
	if d != nil {
		d.reminders.Inc()
	}
}

// Handler exposes the Prometheus metrics endpoint for the given gatherer.
func Handler(g prometheus.Gatherer) gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
