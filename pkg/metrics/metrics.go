package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	JobQueueDepth       prometheus.Gauge
	ScrapeJobsTotal     *prometheus.CounterVec
	ScrapeJobDuration   *prometheus.HistogramVec
	ScrapedProducts     *prometheus.CounterVec
	PageFetchesTotal    *prometheus.CounterVec
	PriceAlertsTotal    *prometheus.CounterVec
)

var once sync.Once

// Init registers the collectors with the default registry. It is safe to
// call more than once.
func Init() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	JobQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "job_queue_depth",
			Help: "Current number of scraping jobs waiting in the queue.",
		},
	)

	ScrapeJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_jobs_total",
			Help: "Total number of scraping jobs.",
		},
		[]string{"retailer", "status"}, // status: success, failure
	)

	ScrapeJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scrape_job_duration_seconds",
			Help:    "Duration of scraping jobs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"retailer"},
	)

	ScrapedProducts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraped_products_total",
			Help: "Products extracted and saved per retailer.",
		},
		[]string{"retailer", "outcome"}, // outcome: found, saved
	)

	PageFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_fetches_total",
			Help: "Category page fetches by strategy.",
		},
		[]string{"strategy", "status"},
	)

	PriceAlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_alerts_total",
			Help: "Price alert outcomes.",
		},
		[]string{"outcome"}, // outcome: sent, skipped, failed
	)
}
