package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry          *prometheus.Registry
	StoredCaptures    prometheus.Gauge
	UploadsTotal      prometheus.Counter
	ParseFailures     prometheus.Counter
	AnalysesTotal     prometheus.Counter
	ComparesTotal     prometheus.Counter
	TrimsTotal        prometheus.Counter
	RegressionsFound  prometheus.Counter
	ImprovementsFound prometheus.Counter
	EvictionsTotal    prometheus.Counter
}

func NewMetrics() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		StoredCaptures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "har_analyzer",
			Name:      "stored_captures",
			Help:      "Number of captures currently held in the store",
		}),
		UploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "har_analyzer",
			Name:      "uploads_total",
			Help:      "Total capture uploads accepted",
		}),
		ParseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "har_analyzer",
			Name:      "parse_failures_total",
			Help:      "Total uploads rejected as unparsable",
		}),
		AnalysesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "har_analyzer",
			Name:      "analyses_total",
			Help:      "Total single-trace analyses served",
		}),
		ComparesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "har_analyzer",
			Name:      "compares_total",
			Help:      "Total two-trace comparisons served",
		}),
		TrimsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "har_analyzer",
			Name:      "trims_total",
			Help:      "Total trim operations served",
		}),
		RegressionsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "har_analyzer",
			Name:      "regressions_found_total",
			Help:      "Total regressions reported across comparisons",
		}),
		ImprovementsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "har_analyzer",
			Name:      "improvements_found_total",
			Help:      "Total improvements reported across comparisons",
		}),
		EvictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "har_analyzer",
			Name:      "evictions_total",
			Help:      "Total evicted captures",
		}),
	}
	r.MustRegister(
		m.StoredCaptures, m.UploadsTotal, m.ParseFailures, m.AnalysesTotal,
		m.ComparesTotal, m.TrimsTotal, m.RegressionsFound, m.ImprovementsFound,
		m.EvictionsTotal,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
