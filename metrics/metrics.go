/*
Package metrics exposes Prometheus counters for the ledger's write paths.

METRICS:
  fridge_sales_recorded_total{source}          source = api | webhook
  fridge_sales_rejected_total{reason}          reason = insufficient_stock | invalid | failed
  fridge_cash_posted_total{kind}               kind = inflow | outflow
  fridge_webhook_items_total{outcome,reason}   outcome = recorded | skipped
  fridge_http_request_duration_seconds{method,route,status}

A nil *Collector is valid and records nothing, so components can be built
without metrics in tests.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fridge"

// Collector owns a private registry and the service's collectors.
type Collector struct {
	registry *prometheus.Registry

	salesRecorded   *prometheus.CounterVec
	salesRejected   *prometheus.CounterVec
	cashPosted      *prometheus.CounterVec
	webhookItems    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates a Collector with its own registry, including the Go runtime
// and process collectors.
func New() *Collector {
	// A private registry avoids clashes with anything using the default one.
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		salesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_recorded_total",
			Help:      "Sales committed by the sale engine.",
		}, []string{"source"}),
		salesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_rejected_total",
			Help:      "Sales that were not committed, by reason.",
		}, []string{"reason"}),
		cashPosted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cash_posted_total",
			Help:      "Cash ledger entries appended, by kind.",
		}, []string{"kind"}),
		webhookItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_items_total",
			Help:      "Payment webhook line items processed, by outcome and skip reason.",
		}, []string{"outcome", "reason"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		c.salesRecorded,
		c.salesRejected,
		c.cashPosted,
		c.webhookItems,
		c.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the private registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		Registry:          c.registry,
		EnableOpenMetrics: true,
	})
}

func (c *Collector) SaleRecorded(source string) {
	if c == nil {
		return
	}
	c.salesRecorded.WithLabelValues(source).Inc()
}

func (c *Collector) SaleRejected(reason string) {
	if c == nil {
		return
	}
	c.salesRejected.WithLabelValues(reason).Inc()
}

func (c *Collector) CashPosted(kind string) {
	if c == nil {
		return
	}
	c.cashPosted.WithLabelValues(kind).Inc()
}

// WebhookItem counts one line item. reason is empty for recorded items.
func (c *Collector) WebhookItem(outcome, reason string) {
	if c == nil {
		return
	}
	c.webhookItems.WithLabelValues(outcome, reason).Inc()
}

// ObserveRequest records one HTTP request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
