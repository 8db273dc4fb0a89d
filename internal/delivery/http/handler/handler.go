package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/user/speedsale-scraper/internal/delivery/http/request"
	"github.com/user/speedsale-scraper/internal/delivery/http/response"
	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/internal/repository"
	"github.com/user/speedsale-scraper/internal/usecase"
)

const (
	defaultRetailer = "sportsshoes"
	defaultCategory = "running"
)

type AlertRunner interface {
	MatchAndNotify(ctx context.Context) (entity.AlertSummary, error)
}

type HealthRunner interface {
	Check(ctx context.Context) *entity.HealthReport
}

type JobSubmitter interface {
	Submit(ctx context.Context, retailerID, category string, priority entity.JobPriority) (*entity.ScrapingJob, error)
}

type Handler struct {
	scraper usecase.Scraper
	alerts  AlertRunner
	health  HealthRunner
	jobs    JobSubmitter
	now     func() time.Time
}

// NewHandler wires the cron handlers. jobs may be nil when no queue is configured.
func NewHandler(scraper usecase.Scraper, alerts AlertRunner, health HealthRunner, jobs JobSubmitter) *Handler {
	return &Handler{
		scraper: scraper,
		alerts:  alerts,
		health:  health,
		jobs:    jobs,
		now:     time.Now,
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleScrape runs one retailer synchronously.
func (h *Handler) HandleScrape(w http.ResponseWriter, r *http.Request) {
	retailer := r.URL.Query().Get("retailer")
	if retailer == "" {
		retailer = defaultRetailer
	}
	category := r.URL.Query().Get("category")
	if category == "" && retailer == defaultRetailer {
		category = defaultCategory
	}

	result := h.scraper.RunJob(r.Context(), entity.ScrapingJob{
		RetailerID: retailer,
		Category:   category,
		Priority:   entity.PriorityHigh,
	})
	slog.Info("Cron scrape completed",
		"retailer_id", retailer,
		"products_found", result.ProductsFound,
		"products_saved", result.ProductsSaved,
	)
	h.writeJSON(w, http.StatusOK, response.ScrapeResponse{JobResult: result, Timestamp: h.now().UTC()})
}

func (h *Handler) HandleScrapeDue(w http.ResponseWriter, r *http.Request) {
	results := h.scraper.RunDue(r.Context())
	if results == nil {
		results = []*entity.JobResult{}
	}
	h.writeJSON(w, http.StatusOK, response.ScrapeDueResponse{Results: results, Timestamp: h.now().UTC()})
}

func (h *Handler) HandleAnalysePrices(w http.ResponseWriter, r *http.Request) {
	summary, err := h.alerts.MatchAndNotify(r.Context())
	if err != nil {
		slog.Error("Price analysis failed", "error", err)
		h.writeJSONError(w, "Price analysis failed", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, response.AlertsResponse{
		Success:   true,
		Job:       "analyse-prices",
		Sent:      summary.Sent,
		Skipped:   summary.Skipped,
		Timestamp: h.now().UTC(),
	})
}

// HandleCronHealth answers 200 when healthy and 500 otherwise.
func (h *Handler) HandleCronHealth(w http.ResponseWriter, r *http.Request) {
	report := h.health.Check(r.Context())
	status, msg := http.StatusOK, "Health check passed"
	if !report.Healthy {
		status, msg = http.StatusInternalServerError, "Health check failed"
	}
	h.writeJSON(w, status, response.HealthResponse{
		Success:      report.Healthy,
		Status:       msg,
		HealthReport: report,
		Timestamp:    h.now().UTC(),
	})
}

// HandleSubmitJob enqueues a job for the queue workers.
func (h *Handler) HandleSubmitJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		h.writeJSONError(w, "Job queue is not configured", http.StatusServiceUnavailable)
		return
	}

	var req request.SubmitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.RetailerID == "" {
		h.writeJSONError(w, "retailer_id is required", http.StatusBadRequest)
		return
	}

	job, err := h.jobs.Submit(r.Context(), req.RetailerID, req.Category, entity.JobPriority(req.Priority))
	if err != nil {
		if errors.Is(err, repository.ErrRetailerNotFound) {
			h.writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		if errors.Is(err, usecase.ErrInvalidPriority) {
			h.writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("Failed to submit job", "retailer_id", req.RetailerID, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusAccepted, response.SubmitJobResponse{
		Status:  "success",
		Message: "Job submitted for scraping",
		JobID:   job.ID,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}
