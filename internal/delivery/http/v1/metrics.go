package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "sprintsync"

type httpMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
	handler         http.Handler
}

func newHTTPMetrics(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *httpMetrics {
	factory := promauto.With(registerer)
	return &httpMetrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
		handler: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}
}

func (h *handlerImpl) HandleMetricsMiddleware(c *gin.Context) {
	start := time.Now()
	h.metrics.inFlight.Inc()
	defer h.metrics.inFlight.Dec()

	c.Next()

	// FullPath keeps the label set bounded to registered routes.
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	h.metrics.requestsTotal.
		WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
		Inc()
	h.metrics.requestDuration.
		WithLabelValues(route, c.Request.Method).
		Observe(time.Since(start).Seconds())
}

func (h *handlerImpl) HandleMetrics(c *gin.Context) {
	h.metrics.handler.ServeHTTP(c.Writer, c.Request)
}
