// Package metrics exposes Prometheus metrics for the HTTP API and stock levels.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"erpledger/internal/core/entity"
	"erpledger/internal/domain/reports"
	"erpledger/pkg/logger"
)

const namespace = "erpledger"

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates the HTTP metrics plus Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Register adds extra collectors such as a StockCollector.
func (m *Metrics) Register(cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := m.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Middleware records every request under its route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StockSource lists current stock levels.
type StockSource interface {
	StockLevels(ctx context.Context, itemType entity.ItemType) ([]reports.StockLevel, error)
}

// StockCollector reports on-hand quantities at scrape time.
type StockCollector struct {
	source   StockSource
	quantity *prometheus.Desc
	sellable *prometheus.Desc
	low      *prometheus.Desc
}

// NewStockCollector creates a collector over source.
func NewStockCollector(source StockSource) *StockCollector {
	labels := []string{"item_type", "item_id", "name"}
	return &StockCollector{
		source: source,
		quantity: prometheus.NewDesc(prometheus.BuildFQName(namespace, "stock", "quantity"),
			"Total quantity on hand across all batches.", labels, nil),
		sellable: prometheus.NewDesc(prometheus.BuildFQName(namespace, "stock", "sellable_quantity"),
			"Quantity in sellable batches.", labels, nil),
		low: prometheus.NewDesc(prometheus.BuildFQName(namespace, "stock", "low"),
			"1 when the item is at or below its reorder point.", labels, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *StockCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.quantity
	ch <- c.sellable
	ch <- c.low
}

// Collect implements prometheus.Collector.
func (c *StockCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	levels, err := c.source.StockLevels(ctx, "")
	if err != nil {
		logger.Warn(ctx, "stock metrics unavailable", "error", err)
		return
	}
	for _, l := range levels {
		labels := []string{string(l.Ref.Type), strconv.FormatInt(l.Ref.ID, 10), l.Name}
		ch <- prometheus.MustNewConstMetric(c.quantity, prometheus.GaugeValue, l.Total.Float64(), labels...)
		ch <- prometheus.MustNewConstMetric(c.sellable, prometheus.GaugeValue, l.Sellable.Float64(), labels...)
		low := 0.0
		if l.Low {
			low = 1
		}
		ch <- prometheus.MustNewConstMetric(c.low, prometheus.GaugeValue, low, labels...)
	}
}
