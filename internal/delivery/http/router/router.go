package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/speedsale-scraper/internal/delivery/http/handler"
	"github.com/user/speedsale-scraper/internal/delivery/http/middleware"
)

// New builds the API router. Scrape jobs run inside the request, so the
// timeout must cover a full job.
func New(h *handler.Handler, cronSecret string, timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	if timeout > 0 {
		r.Use(chimw.Timeout(timeout))
	}

	r.Get("/api/health", h.HandleHealthCheck)

	r.Group(func(r chi.Router) {
		r.Use(middleware.CronAuth(cronSecret))
		r.Get("/api/cron/scrape", h.HandleScrape)
		r.Get("/api/cron/scrape-due", h.HandleScrapeDue)
		r.Get("/api/cron/analyse-prices", h.HandleAnalysePrices)
		r.Get("/api/cron/health-check", h.HandleCronHealth)
		r.Post("/api/jobs", h.HandleSubmitJob)
	})

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}
