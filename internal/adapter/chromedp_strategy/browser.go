package chromedp_strategy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/user/speedsale-scraper/internal/adapter/extract"
	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/internal/repository"
	"github.com/user/speedsale-scraper/pkg/metrics"
)

// browser is the set of page operations the pagination loops drive.
type browser interface {
	height(ctx context.Context) (int64, error)
	scrollToBottom(ctx context.Context) error
	present(ctx context.Context, selector string) (bool, error)
	click(ctx context.Context, selector string) error
	// goTo navigates to a follow-up page and waits for its product
	// containers.
	goTo(ctx context.Context, rawURL string) error
	snapshot(ctx context.Context, pageURL string) ([]entity.ScrapedProduct, error)
}

// chromeBrowser runs browser operations on the chromedp context passed in.
type chromeBrowser struct {
	opts     Options
	profile  *entity.RetailerProfile
	category string
}

func (b *chromeBrowser) navigate(ctx context.Context, rawURL string, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		metrics.PageFetchesTotal.WithLabelValues(string(entity.StrategyDynamic), "failure").Inc()
		return fmt.Errorf("%w: %s: %v", repository.ErrNavigationFailed, rawURL, err)
	}
	metrics.PageFetchesTotal.WithLabelValues(string(entity.StrategyDynamic), "success").Inc()
	return nil
}

func (b *chromeBrowser) waitForProducts(ctx context.Context) {
	container := b.profile.Selectors.Container
	waitCtx, cancel := context.WithTimeout(ctx, containerWaitTime)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitReady(container, chromedp.ByQuery)); err != nil {
		slog.Debug("Product containers did not appear", "selector", container, "error", err)
	}
}

func (b *chromeBrowser) goTo(ctx context.Context, rawURL string) error {
	if err := b.navigate(ctx, rawURL, b.opts.PaginationTimeout); err != nil {
		return err
	}
	b.waitForProducts(ctx)
	return nil
}

func (b *chromeBrowser) height(ctx context.Context) (int64, error) {
	var h int64
	if err := chromedp.Run(ctx, chromedp.Evaluate(scrollHeightJS, &h)); err != nil {
		return 0, err
	}
	return h, nil
}

func (b *chromeBrowser) scrollToBottom(ctx context.Context) error {
	stepCtx, cancel := context.WithTimeout(ctx, b.opts.PaginationTimeout)
	defer cancel()
	return chromedp.Run(stepCtx, chromedp.Evaluate(scrollToBottomJS, nil))
}

func (b *chromeBrowser) present(ctx context.Context, selector string) (bool, error) {
	var ok bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(elementPresentJS(selector), &ok)); err != nil {
		return false, err
	}
	return ok, nil
}

func (b *chromeBrowser) click(ctx context.Context, selector string) error {
	stepCtx, cancel := context.WithTimeout(ctx, b.opts.PaginationTimeout)
	defer cancel()
	return chromedp.Run(stepCtx,
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
}

// snapshot reads the current DOM and extracts its products.
func (b *chromeBrowser) snapshot(ctx context.Context, pageURL string) ([]entity.ScrapedProduct, error) {
	snapCtx, cancel := context.WithTimeout(ctx, b.opts.NavigationTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(snapCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("%w: read DOM of %s: %v", repository.ErrNavigationFailed, pageURL, err)
	}
	doc, err := extract.Parse(html)
	if err != nil {
		return nil, fmt.Errorf("parse DOM of %s: %w", pageURL, err)
	}
	return extract.Products(doc, b.profile, pageURL, b.category), nil
}
