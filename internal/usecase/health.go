package usecase

import (
	"context"
	"log/slog"

	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/internal/repository"
)

// HealthChecker reports store reachability and retailer configuration.
type HealthChecker struct {
	db        repository.Pinger
	retailers repository.RetailerRepository
	shoes     repository.ShoeRepository
	prices    repository.PriceRepository
}

func NewHealthChecker(
	db repository.Pinger,
	retailers repository.RetailerRepository,
	shoes repository.ShoeRepository,
	prices repository.PriceRepository,
) *HealthChecker {
	return &HealthChecker{db: db, retailers: retailers, shoes: shoes, prices: prices}
}

// Check is healthy when the store answers and at least one retailer is enabled.
func (h *HealthChecker) Check(ctx context.Context) *entity.HealthReport {
	report := &entity.HealthReport{}

	if err := h.db.Ping(ctx); err != nil {
		report.DatabaseError = err.Error()
		slog.Error("Health check: database unreachable", "error", err)
		return report
	}
	report.DatabaseConnected = true

	retailers, err := h.retailers.List(ctx)
	if err != nil {
		report.DatabaseError = err.Error()
		slog.Error("Health check: failed to list retailers", "error", err)
		return report
	}
	report.RetailersTotal = len(retailers)
	for _, r := range retailers {
		if r.Enabled {
			report.RetailersEnabled++
		}
		if r.LastScraped != nil && (report.LastScraped == nil || r.LastScraped.After(*report.LastScraped)) {
			report.LastScraped = r.LastScraped
		}
	}

	if report.Shoes, err = h.shoes.Count(ctx); err != nil {
		slog.Warn("Health check: failed to count shoes", "error", err)
	}
	if report.Prices, err = h.prices.Count(ctx); err != nil {
		slog.Warn("Health check: failed to count prices", "error", err)
	}

	report.Healthy = report.RetailersEnabled > 0
	slog.Info("Health check complete",
		"healthy", report.Healthy,
		"retailers_enabled", report.RetailersEnabled,
		"shoes", report.Shoes,
		"prices", report.Prices,
	)
	return report
}
