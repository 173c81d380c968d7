package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the service's Prometheus registry. All methods are nil-safe
// so components can run without metrics in tests.
type Collector struct {
	registry *prometheus.Registry

	cyclesTotal    prometheus.Counter
	cycleErrors    prometheus.Counter
	buildingErrors prometheus.Counter
	cycleDuration  prometheus.Histogram

	alertsSent      *prometheus.CounterVec
	overridesActive prometheus.Gauge
	bulkWrites      *prometheus.CounterVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		cyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "apc_reconcile_cycles_total",
			Help: "Completed reconciliation cycles.",
		}),
		cycleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "apc_reconcile_cycle_errors_total",
			Help: "Cycles that failed before completing a full pass.",
		}),
		buildingErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "apc_reconcile_building_errors_total",
			Help: "Per-building evaluation errors (building skipped for the cycle).",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "apc_reconcile_cycle_duration_seconds",
			Help:    "Wall time of a full reconciliation pass.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		alertsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apc_alerts_sent_total",
			Help: "Axe alert messages sent, by kind.",
		}, []string{"kind"}),
		overridesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "apc_overrides_active",
			Help: "Buildings currently holding a device state override.",
		}),
		bulkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apc_bulk_writes_total",
			Help: "Bulk device state writes, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.cyclesTotal, c.cycleErrors, c.buildingErrors, c.cycleDuration,
		c.alertsSent, c.overridesActive, c.bulkWrites,
	)
	return c
}

// Handler exposes the registry for the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) CycleCompleted(d time.Duration, buildingErrors int) {
	if c == nil {
		return
	}
	c.cyclesTotal.Inc()
	c.cycleDuration.Observe(d.Seconds())
	c.buildingErrors.Add(float64(buildingErrors))
}

func (c *Collector) CycleFailed() {
	if c == nil {
		return
	}
	c.cycleErrors.Inc()
}

func (c *Collector) AlertSent(kind string) {
	if c == nil {
		return
	}
	c.alertsSent.WithLabelValues(kind).Inc()
}

func (c *Collector) OverrideEntered() {
	if c == nil {
		return
	}
	c.overridesActive.Inc()
}

func (c *Collector) OverrideReverted() {
	if c == nil {
		return
	}
	c.overridesActive.Dec()
}

func (c *Collector) BulkWrite(err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.bulkWrites.WithLabelValues(result).Inc()
}
