// Package metrics exposes Prometheus counters for the editor API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds the editor's collectors.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	mutationsTotal      *prometheus.CounterVec
	rejectionsTotal     *prometheus.CounterVec
	savesTotal          *prometheus.CounterVec
	sweepIllegal        prometheus.Gauge
}

// New registers the collectors on reg. openSessions is sampled at scrape
// time.
func New(reg prometheus.Registerer, openSessions func() int) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relicsave_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "relicsave_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		mutationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relicsave_mutations_total",
				Help: "Save mutations by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		rejectionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relicsave_validation_rejections_total",
				Help: "Rejected mutations by validation code",
			},
			[]string{"code"},
		),
		savesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relicsave_saves_total",
				Help: "Save file writes by outcome",
			},
			[]string{"outcome"},
		),
		sweepIllegal: f.NewGauge(prometheus.GaugeOpts{
			Name: "relicsave_last_sweep_illegal_relics",
			Help: "Illegal relics found by the most recent sweep",
		}),
	}
	if openSessions != nil {
		f.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "relicsave_open_sessions",
			Help: "Number of open save sessions",
		}, func() float64 { return float64(openSessions()) })
	}
	return m
}

// RecordMutation counts one mutation. code is the validation code of a
// rejection, empty otherwise.
func (m *Metrics) RecordMutation(action, outcome, code string) {
	m.mutationsTotal.WithLabelValues(action, outcome).Inc()
	if outcome == OutcomeRejected && code != "" {
		m.rejectionsTotal.WithLabelValues(code).Inc()
	}
}

// RecordSave counts one save write.
func (m *Metrics) RecordSave(err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.savesTotal.WithLabelValues(outcome).Inc()
}

// RecordSweep stores the illegal count of a sweep.
func (m *Metrics) RecordSweep(illegal int) {
	m.sweepIllegal.Set(float64(illegal))
}

// Middleware records request counts and latency by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
