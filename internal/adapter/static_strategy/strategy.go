package static_strategy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/speedsale-scraper/internal/adapter/extract"
	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/pkg/metrics"
)

const (
	defaultMaxPages     = 5
	defaultNextSelector = ".pagination a, .pager a"
)

// Fetcher returns the HTML body of a page.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (string, error)
}

// Strategy extracts products from server-rendered HTML.
type Strategy struct {
	fetcher     Fetcher
	pageTimeout time.Duration
}

// New creates a static strategy. Each page request is bounded by pageTimeout.
func New(fetcher Fetcher, pageTimeout time.Duration) *Strategy {
	return &Strategy{fetcher: fetcher, pageTimeout: pageTimeout}
}

func (s *Strategy) Kind() entity.StrategyKind {
	return entity.StrategyStatic
}

// Extract fetches the category page and, for numbered pagination, follows
// next links up to the profile's page limit. A failed follow-up page stops
// pagination and keeps what was already collected.
func (s *Strategy) Extract(ctx context.Context, profile *entity.RetailerProfile, category string) ([]entity.ScrapedProduct, error) {
	startURL := profile.CategoryURL(category)

	products, links, err := s.page(ctx, profile, startURL, category)
	if err != nil {
		return nil, fmt.Errorf("first page %s: %w", startURL, err)
	}
	if profile.Pagination.Kind != entity.PaginationNumbered {
		return products, nil
	}

	limit := profile.Pagination.PageLimit(defaultMaxPages)
	visited := map[string]bool{startURL: true}
	queue := links

	for fetched := 1; fetched < limit && len(queue) > 0; {
		next := queue[0]
		queue = queue[1:]
		if visited[next] {
			continue
		}
		visited[next] = true

		if err := sleep(ctx, profile.Delay()); err != nil {
			return products, nil
		}

		pageProducts, pageLinks, err := s.page(ctx, profile, next, category)
		fetched++
		if err != nil {
			slog.Warn("Stopping pagination after failed page", "retailer_id", profile.ID, "url", next, "page", fetched, "error", err)
			break
		}
		products = append(products, pageProducts...)
		queue = append(queue, pageLinks...)
	}
	return products, nil
}

func (s *Strategy) page(ctx context.Context, profile *entity.RetailerProfile, pageURL, category string) ([]entity.ScrapedProduct, []string, error) {
	if s.pageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.pageTimeout)
		defer cancel()
	}

	html, err := s.fetcher.Get(ctx, pageURL)
	if err != nil {
		metrics.PageFetchesTotal.WithLabelValues(string(entity.StrategyStatic), "failure").Inc()
		return nil, nil, err
	}
	metrics.PageFetchesTotal.WithLabelValues(string(entity.StrategyStatic), "success").Inc()

	doc, err := extract.Parse(html)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	products := extract.Products(doc, profile, pageURL, category)
	slog.Debug("Extracted page", "retailer_id", profile.ID, "url", pageURL, "products", len(products))

	nextSelector := profile.Selectors.NextPage
	if nextSelector == "" {
		nextSelector = defaultNextSelector
	}
	return products, extract.NextLinks(doc, nextSelector, pageURL), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
