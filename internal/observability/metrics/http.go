package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyjia/billed/internal/application/dispatcher"
	"github.com/garyjia/billed/internal/domain/event"
)

// ServerMetrics holds the Prometheus collectors of the bill backend
type ServerMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	billsCreatedTotal *prometheus.CounterVec
	billReviewsTotal  *prometheus.CounterVec
}

// NewServerMetrics registers the collectors on a private registry
func NewServerMetrics(service string) *ServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "billed",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "billed",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "billed",
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	billsCreatedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "billed",
			Subsystem: "bills",
			Name:      "created_total",
			Help:      "Total bills created by expense type.",
		},
		[]string{"service", "type"},
	)
	billReviewsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "billed",
			Subsystem: "bills",
			Name:      "reviews_total",
			Help:      "Total review decisions by resulting status.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		billsCreatedTotal,
		billReviewsTotal,
	)

	return &ServerMetrics{
		registry:          registry,
		service:           service,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		billsCreatedTotal: billsCreatedTotal,
		billReviewsTotal:  billReviewsTotal,
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count, latency and concurrency per matched route
func (m *ServerMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requestTotal.WithLabelValues(m.service, c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(m.service, c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordBillCreated counts a new bill
func (m *ServerMetrics) RecordBillCreated(expenseType string) {
	if expenseType == "" {
		expenseType = "unknown"
	}
	m.billsCreatedTotal.WithLabelValues(m.service, expenseType).Inc()
}

// RecordReview counts a review decision
func (m *ServerMetrics) RecordReview(status string) {
	m.billReviewsTotal.WithLabelValues(m.service, status).Inc()
}

// Subscribe feeds the bill counters from the lifecycle events of d
func (m *ServerMetrics) Subscribe(d dispatcher.Dispatcher) {
	d.SubscribeNamed(event.TypeBillCreated, "metrics", func(ctx context.Context, evt *event.Event) error {
		m.RecordBillCreated(evt.GetPayloadString("type"))
		return nil
	})
	for _, typ := range []event.Type{event.TypeBillAccepted, event.TypeBillRefused} {
		status := strings.TrimPrefix(typ.String(), "bill.")
		d.SubscribeNamed(typ, "metrics", func(ctx context.Context, evt *event.Event) error {
			m.RecordReview(status)
			return nil
		})
	}
}
