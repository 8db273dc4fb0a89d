package response

import (
	"time"

	"github.com/user/speedsale-scraper/internal/entity"
)

// ScrapeResponse is returned by the single-retailer cron trigger.
type ScrapeResponse struct {
	*entity.JobResult
	Timestamp time.Time `json:"timestamp"`
}

type ScrapeDueResponse struct {
	Results   []*entity.JobResult `json:"results"`
	Timestamp time.Time           `json:"timestamp"`
}

type AlertsResponse struct {
	Success   bool      `json:"success"`
	Job       string    `json:"job"`
	Sent      int       `json:"sent"`
	Skipped   int       `json:"skipped"`
	Timestamp time.Time `json:"timestamp"`
}

type HealthResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	*entity.HealthReport
	Timestamp time.Time `json:"timestamp"`
}

type SubmitJobResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
