package repository

import (
	"context"
	"time"

	"github.com/user/speedsale-scraper/internal/entity"
)

// ShoeRepository defines the interface for the canonical shoe catalog.
type ShoeRepository interface {
	// FindBySlugs returns the existing shoes keyed by slug.
	FindBySlugs(ctx context.Context, slugs []string) (map[string]*entity.Shoe, error)
	// Create inserts a new shoe, or refreshes it when the slug already exists, and returns its id.
	Create(ctx context.Context, shoe *entity.Shoe) (string, error)
	// UpdateSighting sets the list price and last-scraped timestamp of an existing shoe.
	UpdateSighting(ctx context.Context, id string, listPrice float64, seenAt time.Time) error
	// Count returns the number of catalog rows.
	Count(ctx context.Context) (int64, error)
}

// PriceRepository defines the interface for the daily-cheapest price ledger.
type PriceRepository interface {
	// FindForDay returns the observations of one retailer on the given UTC day, keyed by shoe id.
	FindForDay(ctx context.Context, retailerID string, shoeIDs []string, day time.Time) (map[string]*entity.PriceObservation, error)
	// Create inserts an observation. An existing row for the same day is only overwritten when cheaper.
	Create(ctx context.Context, obs *entity.PriceObservation) error
	// UpdateIfCheaper overwrites the observation when obs.Price is strictly lower. It reports whether a row changed.
	UpdateIfCheaper(ctx context.Context, id string, obs *entity.PriceObservation) (bool, error)
	// LatestForShoe returns the most recent observation across retailers, or ErrObservationNotFound.
	LatestForShoe(ctx context.Context, shoeID string) (*entity.PriceObservation, error)
	// Count returns the number of ledger rows.
	Count(ctx context.Context) (int64, error)
}

// RetailerRepository defines the interface for persisted retailer state.
type RetailerRepository interface {
	// Get returns one retailer, or ErrRetailerNotFound.
	Get(ctx context.Context, id string) (*entity.RetailerState, error)
	// List returns every retailer ordered by id.
	List(ctx context.Context) ([]*entity.RetailerState, error)
	// MarkScraped sets the last-scraped timestamp.
	MarkScraped(ctx context.Context, id string, at time.Time) error
	// SaveProfile upserts name, url and scraping_config without touching the enabled flag.
	SaveProfile(ctx context.Context, profile *entity.RetailerProfile) error
}

// WatchlistRepository defines the read-only joins used by the alert matcher.
type WatchlistRepository interface {
	// ListActive returns every watchlist entry that references a shoe.
	ListActive(ctx context.Context) ([]*entity.WatchlistEntry, error)
	// GetPreference returns the user's notification preference, or nil when none is stored.
	GetPreference(ctx context.Context, userID string) (*entity.NotificationPreference, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
