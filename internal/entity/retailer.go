package entity

import (
	"strings"
	"time"
)

// StrategyKind selects how a retailer's pages are obtained.
type StrategyKind string

const (
	StrategyStatic  StrategyKind = "static"
	StrategyDynamic StrategyKind = "dynamic"
)

// PaginationKind is the site-specific way of reaching further result pages.
type PaginationKind string

const (
	PaginationInfinite PaginationKind = "infinite"
	PaginationNumbered PaginationKind = "numbered"
	PaginationLoadMore PaginationKind = "loadMore"
)

const defaultIntervalHours = 24

// Selectors holds the CSS selectors used to read one product card.
type Selectors struct {
	Container     string `json:"container" mapstructure:"container" validate:"required"`
	Name          string `json:"name" mapstructure:"name" validate:"required"`
	Price         string `json:"price" mapstructure:"price" validate:"required"`
	OriginalPrice string `json:"originalPrice,omitempty" mapstructure:"originalPrice"`
	Image         string `json:"image" mapstructure:"image" validate:"required"`
	Link          string `json:"link" mapstructure:"link" validate:"required"`
	NextPage      string `json:"nextPage,omitempty" mapstructure:"nextPage"`
	LoadMore      string `json:"loadMore,omitempty" mapstructure:"loadMore"`
}

type Pagination struct {
	Kind     PaginationKind `json:"kind" mapstructure:"kind" validate:"omitempty,oneof=infinite numbered loadMore"`
	MaxPages int            `json:"maxPages,omitempty" mapstructure:"maxPages" validate:"gte=0"`
}

// PageLimit returns MaxPages, or fallback when it is unset.
func (p Pagination) PageLimit(fallback int) int {
	if p.MaxPages > 0 {
		return p.MaxPages
	}
	return fallback
}

type RateLimit struct {
	DelayMs       int `json:"delayMs" mapstructure:"delayMs" validate:"gte=0"`
	MaxConcurrent int `json:"maxConcurrent" mapstructure:"maxConcurrent" validate:"gte=0"`
}

// PostProcessFunc adjusts a normalized product using the page it came from.
type PostProcessFunc func(p *ScrapedProduct, pageURL string)

// RetailerProfile is the declarative scraping configuration for one retailer.
type RetailerProfile struct {
	ID              string            `json:"id" mapstructure:"id" validate:"required"`
	Name            string            `json:"name" mapstructure:"name" validate:"required"`
	BaseURL         string            `json:"baseUrl" mapstructure:"baseUrl" validate:"required,url"`
	Enabled         bool              `json:"enabled" mapstructure:"enabled"`
	Strategy        StrategyKind      `json:"strategy" mapstructure:"strategy" validate:"required,oneof=static dynamic"`
	Selectors       Selectors         `json:"selectors" mapstructure:"selectors"`
	Pagination      Pagination        `json:"pagination" mapstructure:"pagination"`
	RateLimit       RateLimit         `json:"rateLimit" mapstructure:"rateLimit"`
	Categories      map[string]string `json:"categories,omitempty" mapstructure:"categories"`
	DefaultCategory string            `json:"defaultCategory,omitempty" mapstructure:"defaultCategory"`
	PostProcessName string            `json:"postProcess,omitempty" mapstructure:"postProcess"`
	PostProcess     PostProcessFunc   `json:"-" mapstructure:"-"`
}

// CategoryURL joins the base URL with the category path; unknown or empty
// categories resolve to the base URL.
func (p *RetailerProfile) CategoryURL(category string) string {
	base := strings.TrimRight(p.BaseURL, "/")
	if category == "" || p.Categories == nil {
		return base
	}
	path, ok := p.Categories[category]
	if !ok || path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// Delay is the pause between consecutive page requests.
func (p *RetailerProfile) Delay() time.Duration {
	return time.Duration(p.RateLimit.DelayMs) * time.Millisecond
}

// RetailerState is the persisted, operator-mutable part of a retailer.
type RetailerState struct {
	ID                    string
	Name                  string
	URL                   string
	Enabled               bool
	LastScraped           *time.Time
	ScrapingIntervalHours int
}

// Interval returns the scraping interval, defaulting to 24 hours.
func (s *RetailerState) Interval() time.Duration {
	hours := s.ScrapingIntervalHours
	if hours <= 0 {
		hours = defaultIntervalHours
	}
	return time.Duration(hours) * time.Hour
}

// NextRun is the earliest time the retailer becomes due.
func (s *RetailerState) NextRun() time.Time {
	if s.LastScraped == nil {
		return time.Time{}
	}
	return s.LastScraped.Add(s.Interval())
}

// IsDue reports whether now >= lastScraped + interval for an enabled retailer.
func (s *RetailerState) IsDue(now time.Time) bool {
	if !s.Enabled {
		return false
	}
	if s.LastScraped == nil {
		return true
	}
	return !now.Before(s.NextRun())
}
