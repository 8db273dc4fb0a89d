package entity

// RawProduct is the untouched text read from one product card.
type RawProduct struct {
	Name              string
	PriceText         string
	OriginalPriceText string
	ImageURL          string
	ProductURL        string
}

// ScrapedProduct is one transient extraction result before reconciliation.
type ScrapedProduct struct {
	Name               string   `json:"name"`
	Brand              string   `json:"brand"`
	Model              string   `json:"model"`
	Price              float64  `json:"price"`
	OriginalPrice      *float64 `json:"originalPrice,omitempty"`
	DiscountPercentage *float64 `json:"discountPercentage,omitempty"`
	ImageURL           string   `json:"imageUrl"`
	ProductURL         string   `json:"productUrl"`
	InStock            bool     `json:"inStock"`
	Category           string   `json:"category,omitempty"`
	Gender             string   `json:"gender,omitempty"`
	Slug               string   `json:"slug"`
}

// ListPrice is the catalog price: the original price when known.
func (p *ScrapedProduct) ListPrice() float64 {
	if p.OriginalPrice != nil && *p.OriginalPrice > 0 {
		return *p.OriginalPrice
	}
	return p.Price
}
