package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/internal/repository"
	"github.com/user/speedsale-scraper/pkg/metrics"
)

const (
	DefaultDiscountThreshold = 10.0
	unknownVariant           = "Various"
)

// AlertMatcher compares watchlist thresholds with the latest observed
// discounts and sends price alerts.
type AlertMatcher struct {
	watchlists       repository.WatchlistRepository
	prices           repository.PriceRepository
	sender           repository.NotificationSender
	defaultThreshold float64
	appURL           string
}

// NewAlertMatcher creates an AlertMatcher. A threshold <= 0 means DefaultDiscountThreshold.
func NewAlertMatcher(
	watchlists repository.WatchlistRepository,
	prices repository.PriceRepository,
	sender repository.NotificationSender,
	defaultThreshold float64,
	appURL string,
) *AlertMatcher {
	if defaultThreshold <= 0 {
		defaultThreshold = DefaultDiscountThreshold
	}
	return &AlertMatcher{
		watchlists:       watchlists,
		prices:           prices,
		sender:           sender,
		defaultThreshold: defaultThreshold,
		appURL:           strings.TrimRight(appURL, "/"),
	}
}

// MatchAndNotify evaluates every watchlist entry once. A failure on one entry
// is logged and the pass continues.
func (m *AlertMatcher) MatchAndNotify(ctx context.Context) (entity.AlertSummary, error) {
	var summary entity.AlertSummary

	entries, err := m.watchlists.ListActive(ctx)
	if err != nil {
		return summary, fmt.Errorf("load watchlists: %w", err)
	}
	slog.Info("Analysing watchlists", "count", len(entries))

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		switch m.evaluate(ctx, e) {
		case outcomeSent:
			summary.Sent++
		case outcomeSkipped:
			summary.Skipped++
		}
	}

	slog.Info("Price analysis complete", "sent", summary.Sent, "skipped", summary.Skipped)
	return summary, nil
}

type alertOutcome int

const (
	outcomeNone alertOutcome = iota
	outcomeSent
	outcomeSkipped
)

func (m *AlertMatcher) evaluate(ctx context.Context, e *entity.WatchlistEntry) alertOutcome {
	log := slog.With("watchlist_id", e.ID, "user_id", e.User.ID, "shoe_id", e.Shoe.ID)

	pref, err := m.watchlists.GetPreference(ctx, e.User.ID)
	if err != nil {
		log.Error("Failed to load notification preference", "error", err)
		return outcomeNone
	}
	if !pref.AllowsEmail() {
		metrics.PriceAlertsTotal.WithLabelValues("skipped").Inc()
		return outcomeSkipped
	}

	obs, err := m.prices.LatestForShoe(ctx, e.Shoe.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrObservationNotFound) {
			log.Error("Failed to load latest price", "error", err)
		}
		return outcomeNone
	}
	if obs.Price == nil || obs.DiscountPercentage == nil {
		return outcomeNone
	}

	threshold := m.threshold(e)
	if *obs.DiscountPercentage < threshold {
		return outcomeNone
	}

	alert := m.buildAlert(e, obs, threshold)
	if !m.sender.SendPriceAlert(ctx, alert) {
		metrics.PriceAlertsTotal.WithLabelValues("failed").Inc()
		log.Error("Failed to send price alert", "to", e.User.Email)
		return outcomeNone
	}
	metrics.PriceAlertsTotal.WithLabelValues("sent").Inc()
	return outcomeSent
}

func (m *AlertMatcher) threshold(e *entity.WatchlistEntry) float64 {
	if e.Discount == nil || *e.Discount == 0 {
		return m.defaultThreshold
	}
	return *e.Discount
}

func (m *AlertMatcher) buildAlert(e *entity.WatchlistEntry, obs *entity.PriceObservation, threshold float64) *entity.PriceAlert {
	current := *obs.Price
	discount := *obs.DiscountPercentage

	original := current
	switch {
	case obs.OriginalPrice != nil && *obs.OriginalPrice > 0:
		original = *obs.OriginalPrice
	case discount < 100:
		original = current / (1 - discount/100)
	}

	productURL := obs.ProductURL
	if productURL == "" {
		productURL = fmt.Sprintf("%s/shoes/%s", m.appURL, e.Shoe.Slug)
	}

	return &entity.PriceAlert{
		User: e.User,
		Shoe: entity.AlertShoe{
			ID:       e.Shoe.ID,
			Brand:    e.Shoe.Brand,
			Model:    e.Shoe.Model,
			ImageURL: e.Shoe.ImageURL,
			Category: e.Shoe.Category,
			Gender:   e.Shoe.Gender,
		},
		CurrentPrice:          current,
		OriginalPrice:         original,
		DiscountPercentage:    discount,
		UserDiscountThreshold: threshold,
		ProductURL:            productURL,
		Size:                  unknownVariant,
		Color:                 unknownVariant,
	}
}
