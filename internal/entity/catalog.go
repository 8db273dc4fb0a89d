package entity

import "time"

// Shoe mirrors the `shoes` table. Slug is unique across the catalog.
type Shoe struct {
	ID          string
	Brand       string
	Model       string
	Slug        string
	ListPrice   float64
	Category    string
	Gender      string
	ImageURL    string
	LastScraped *time.Time
}

// PriceObservation mirrors the `prices` table: the cheapest price one
// retailer showed for one shoe on one UTC calendar day.
type PriceObservation struct {
	ID                 string
	ShoeID             string
	RetailerID         string
	Price              *float64
	OriginalPrice      *float64
	DiscountPercentage *float64
	InStock            bool
	ProductURL         string
	ObservedAt         time.Time
}

// ObservationDay truncates t to its UTC calendar day.
func ObservationDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
