package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	DocumentsFetched *prometheus.CounterVec
	FetchDuration    *prometheus.HistogramVec
	OffersStored     *prometheus.CounterVec
	AnomaliesTotal   *prometheus.CounterVec
	BatchAborts      *prometheus.CounterVec

	CampaignsQueued     prometheus.Gauge
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the scraper metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DocumentsFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_documents_fetched_total",
			Help: "The total number of raw documents fetched",
		}, []string{"portal", "kind"}), // kind: 'listing', 'offer'
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scraper_fetch_duration_seconds",
			Help:    "Duration of document fetches.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"portal"}),
		OffersStored: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_offers_stored_total",
			Help: "The total number of offers written to the sink",
		}, []string{"portal"}),
		AnomaliesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_anomalies_total",
			Help: "The total number of fields defaulted during normalization",
		}, []string{"field"}),
		BatchAborts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_batch_aborts_total",
			Help: "The total number of offer batches aborted early",
		}, []string{"portal", "stage"}), // stage: 'fetch', 'extract', 'store'
		CampaignsQueued: factory.NewGauge(prometheus.GaugeOpts{
			Name: "scraper_campaigns_queued",
			Help: "Current number of campaign requests waiting for the worker.",
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) IncFetched(portal, kind string) {
	m.DocumentsFetched.WithLabelValues(portal, kind).Inc()
}

func (m *Metrics) ObserveFetch(portal string, d time.Duration) {
	m.FetchDuration.WithLabelValues(portal).Observe(d.Seconds())
}

func (m *Metrics) IncStored(portal string) {
	m.OffersStored.WithLabelValues(portal).Inc()
}

func (m *Metrics) IncAnomaly(field string) {
	m.AnomaliesTotal.WithLabelValues(field).Inc()
}

func (m *Metrics) IncAborted(portal, stage string) {
	m.BatchAborts.WithLabelValues(portal, stage).Inc()
}

func (m *Metrics) SetQueued(n int) {
	m.CampaignsQueued.Set(float64(n))
}

func (m *Metrics) ObserveRequest(method, path, status string, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
