package entity

import "time"

type JobPriority string

const (
	PriorityHigh   JobPriority = "high"
	PriorityMedium JobPriority = "medium"
	PriorityLow    JobPriority = "low"
)

// ScrapingJob is one retailer (and optional category) to scrape.
type ScrapingJob struct {
	ID          string      `json:"id"`
	RetailerID  string      `json:"retailerId"`
	Category    string      `json:"category,omitempty"`
	Priority    JobPriority `json:"priority"`
	ScheduledAt *time.Time  `json:"scheduledAt,omitempty"`
}

// JobResult summarises one job. Errors carry the stage that produced them.
type JobResult struct {
	RetailerID    string   `json:"retailerId"`
	Category      string   `json:"category,omitempty"`
	Success       bool     `json:"success"`
	ProductsFound int      `json:"productsFound"`
	ProductsSaved int      `json:"productsSaved"`
	Errors        []string `json:"errors"`
	DurationMs    int64    `json:"durationMs"`
}

// HealthReport is the result of a store and configuration check.
type HealthReport struct {
	DatabaseConnected bool       `json:"databaseConnected"`
	DatabaseError     string     `json:"databaseError,omitempty"`
	RetailersEnabled  int        `json:"retailersEnabled"`
	RetailersTotal    int        `json:"retailersTotal"`
	Shoes             int64      `json:"shoes"`
	Prices            int64      `json:"prices"`
	LastScraped       *time.Time `json:"lastScraped,omitempty"`
	Healthy           bool       `json:"healthy"`
}
