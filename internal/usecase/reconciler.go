package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/internal/normalize"
	"github.com/user/speedsale-scraper/internal/repository"
)

// ProductReconciler writes a batch of scraped products into the catalog.
type ProductReconciler interface {
	Reconcile(ctx context.Context, products []entity.ScrapedProduct, retailerID string) (int, error)
}

// Reconciler merges scraped products into the shoe catalog and the
// daily-cheapest price ledger.
type Reconciler struct {
	shoes     repository.ShoeRepository
	prices    repository.PriceRepository
	retailers repository.RetailerRepository
	now       func() time.Time
}

// NewReconciler creates a Reconciler. now defaults to time.Now.
func NewReconciler(
	shoes repository.ShoeRepository,
	prices repository.PriceRepository,
	retailers repository.RetailerRepository,
	now func() time.Time,
) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{shoes: shoes, prices: prices, retailers: retailers, now: now}
}

// Reconcile saves products for retailerID and returns how many were saved.
// Per-product failures are logged and not counted. An error is returned only
// when the batch lookups fail.
func (r *Reconciler) Reconcile(ctx context.Context, products []entity.ScrapedProduct, retailerID string) (int, error) {
	batch := dedupeBySlug(products)
	if len(batch) == 0 {
		return 0, nil
	}
	now := r.now()

	slugs := make([]string, len(batch))
	for i := range batch {
		slugs[i] = batch[i].Slug
	}
	existing, err := r.shoes.FindBySlugs(ctx, slugs)
	if err != nil {
		return 0, fmt.Errorf("load shoes: %w", err)
	}

	shoeIDs := make([]string, 0, len(existing))
	for _, s := range existing {
		shoeIDs = append(shoeIDs, s.ID)
	}
	today, err := r.prices.FindForDay(ctx, retailerID, shoeIDs, now)
	if err != nil {
		return 0, fmt.Errorf("load today's prices: %w", err)
	}

	saved := 0
	for i := range batch {
		p := &batch[i]
		log := slog.With("retailer_id", retailerID, "slug", p.Slug)

		shoeID, err := r.upsertShoe(ctx, p, existing[p.Slug], now)
		if err != nil {
			log.Error("Failed to save shoe", "error", err)
			continue
		}
		if err := r.recordPrice(ctx, p, shoeID, retailerID, today[shoeID], now); err != nil {
			log.Error("Failed to save price", "shoe_id", shoeID, "error", err)
			continue
		}
		saved++
	}

	if err := r.retailers.MarkScraped(ctx, retailerID, now); err != nil {
		slog.Warn("Failed to update retailer last scraped", "retailer_id", retailerID, "error", err)
	}
	slog.Info("Reconciled products", "retailer_id", retailerID, "products", len(batch), "saved", saved)
	return saved, nil
}

// dedupeBySlug keeps the first valid product for each slug, in input order.
func dedupeBySlug(products []entity.ScrapedProduct) []entity.ScrapedProduct {
	seen := make(map[string]struct{}, len(products))
	out := make([]entity.ScrapedProduct, 0, len(products))
	for _, p := range products {
		if !normalize.IsValid(&p) || p.Slug == "" {
			slog.Debug("Skipping invalid product", "name", p.Name, "url", p.ProductURL)
			continue
		}
		if _, ok := seen[p.Slug]; ok {
			continue
		}
		seen[p.Slug] = struct{}{}
		out = append(out, p)
	}
	return out
}

func (r *Reconciler) upsertShoe(ctx context.Context, p *entity.ScrapedProduct, existing *entity.Shoe, now time.Time) (string, error) {
	if existing != nil {
		if err := r.shoes.UpdateSighting(ctx, existing.ID, p.ListPrice(), now); err != nil {
			return "", err
		}
		return existing.ID, nil
	}
	return r.shoes.Create(ctx, &entity.Shoe{
		Brand:       p.Brand,
		Model:       p.Model,
		Slug:        p.Slug,
		ListPrice:   p.ListPrice(),
		Category:    p.Category,
		Gender:      p.Gender,
		ImageURL:    p.ImageURL,
		LastScraped: &now,
	})
}

// recordPrice applies the daily-cheapest rule: insert when the day has no
// observation, overwrite only when strictly cheaper, otherwise leave it.
func (r *Reconciler) recordPrice(ctx context.Context, p *entity.ScrapedProduct, shoeID, retailerID string, current *entity.PriceObservation, now time.Time) error {
	price := p.Price
	obs := &entity.PriceObservation{
		ShoeID:             shoeID,
		RetailerID:         retailerID,
		Price:              &price,
		OriginalPrice:      p.OriginalPrice,
		DiscountPercentage: p.DiscountPercentage,
		InStock:            p.InStock,
		ProductURL:         p.ProductURL,
		ObservedAt:         now,
	}

	if current == nil {
		return r.prices.Create(ctx, obs)
	}
	if current.Price != nil && price >= *current.Price {
		return nil
	}
	_, err := r.prices.UpdateIfCheaper(ctx, current.ID, obs)
	return err
}
