package chromedp_strategy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/internal/repository"
	"github.com/user/speedsale-scraper/pkg/utils"
)

const (
	defaultMaxPages   = 10
	defaultUserAgent  = `Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36`
	settleDelay       = time.Second
	containerWaitTime = 10 * time.Second
)

// Options configures the headless browser.
type Options struct {
	ExecPath          string
	Headless          bool
	UserAgent         string
	NavigationTimeout time.Duration
	PaginationTimeout time.Duration
}

// Strategy extracts products by driving a headless Chrome. Every job gets
// its own browser process.
type Strategy struct {
	opts   Options
	settle time.Duration
}

// New creates a dynamic strategy.
func New(opts Options) *Strategy {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 15 * time.Second
	}
	if opts.PaginationTimeout <= 0 {
		opts.PaginationTimeout = 30 * time.Second
	}
	return &Strategy{opts: opts, settle: settleDelay}
}

func (s *Strategy) Kind() entity.StrategyKind {
	return entity.StrategyDynamic
}

// Extract opens the category page, dismisses popups and walks the
// profile's pagination, collecting products after every step.
func (s *Strategy) Extract(ctx context.Context, profile *entity.RetailerProfile, category string) ([]entity.ScrapedProduct, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, s.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(debugf), chromedp.WithErrorf(debugf))
	defer cancelBrowser()

	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if ev, ok := ev.(*fetch.EventRequestPaused); ok {
			go func() {
				c := chromedp.FromContext(browserCtx)
				_ = fetch.FailRequest(ev.RequestID, network.ErrorReasonBlockedByClient).Do(cdp.WithExecutor(browserCtx, c.Target))
			}()
		}
	})
	if err := chromedp.Run(browserCtx, fetch.Enable().WithPatterns(blockedResources())); err != nil {
		return nil, fmt.Errorf("%w: start browser: %v", repository.ErrNavigationFailed, err)
	}

	b := &chromeBrowser{opts: s.opts, profile: profile, category: category}
	startURL := profile.CategoryURL(category)
	if err := b.navigate(browserCtx, startURL, s.opts.NavigationTimeout); err != nil {
		return nil, err
	}
	s.dismissPopups(browserCtx)
	b.waitForProducts(browserCtx)

	c := newCollector()
	first, err := b.snapshot(browserCtx, startURL)
	if err != nil {
		return nil, err
	}
	c.add(first)
	s.paginate(browserCtx, b, profile, startURL, c)

	slog.Info("Dynamic extraction finished", "retailer_id", profile.ID, "url", startURL, "products", len(c.products))
	return c.products, nil
}

func (s *Strategy) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.WindowSize(1366, 900),
		chromedp.UserAgent(s.opts.UserAgent),
	)
	if s.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(s.opts.ExecPath))
	}
	return opts
}

// blockedResources lists the request types failed before they hit the network.
func blockedResources() []*fetch.RequestPattern {
	types := []network.ResourceType{
		network.ResourceTypeImage,
		network.ResourceTypeFont,
		network.ResourceTypeStylesheet,
		network.ResourceTypeMedia,
	}
	patterns := make([]*fetch.RequestPattern, 0, len(types))
	for _, t := range types {
		patterns = append(patterns, &fetch.RequestPattern{URLPattern: "*", ResourceType: t})
	}
	return patterns
}

// paginate walks the profile's pagination kind after the first page.
func (s *Strategy) paginate(ctx context.Context, b browser, profile *entity.RetailerProfile, startURL string, c *collector) {
	limit := profile.Pagination.PageLimit(defaultMaxPages)
	switch profile.Pagination.Kind {
	case entity.PaginationInfinite:
		s.infiniteScroll(ctx, b, profile, startURL, limit, c)
	case entity.PaginationNumbered:
		s.numbered(ctx, b, profile, startURL, limit, c)
	case entity.PaginationLoadMore:
		s.loadMore(ctx, b, profile, startURL, limit, c)
	}
}

// dismissPopups clicks consent and newsletter buttons. Absence is not an error.
func (s *Strategy) dismissPopups(ctx context.Context) {
	popCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var clicked int
	if err := chromedp.Run(popCtx, chromedp.Evaluate(dismissPopupsJS, &clicked)); err != nil {
		slog.Debug("Popup dismissal failed", "error", err)
		return
	}
	if clicked > 0 {
		slog.Debug("Dismissed popups", "count", clicked)
		_ = sleep(ctx, 500*time.Millisecond)
	}
}

func (s *Strategy) infiniteScroll(ctx context.Context, b browser, profile *entity.RetailerProfile, pageURL string, limit int, c *collector) {
	height, err := b.height(ctx)
	if err != nil {
		slog.Warn("Failed to measure page height", "retailer_id", profile.ID, "error", err)
		return
	}

	for attempt := 1; attempt <= limit; attempt++ {
		if err := b.scrollToBottom(ctx); err != nil {
			slog.Warn("Scroll failed", "retailer_id", profile.ID, "attempt", attempt, "error", err)
			return
		}
		if err := sleep(ctx, s.settle); err != nil {
			return
		}

		next, err := b.height(ctx)
		if err != nil {
			return
		}
		if next <= height {
			slog.Debug("Page height stopped growing", "retailer_id", profile.ID, "attempt", attempt)
			return
		}
		height = next

		products, err := b.snapshot(ctx, pageURL)
		if err != nil {
			slog.Warn("Snapshot after scroll failed", "retailer_id", profile.ID, "attempt", attempt, "error", err)
			return
		}
		c.add(products)
	}
}

func (s *Strategy) numbered(ctx context.Context, b browser, profile *entity.RetailerProfile, startURL string, limit int, c *collector) {
	for page := 2; page <= limit; page++ {
		if err := sleep(ctx, profile.Delay()); err != nil {
			return
		}

		pageURL := utils.WithPage(startURL, page)
		if err := b.goTo(ctx, pageURL); err != nil {
			slog.Warn("Stopping pagination after failed navigation", "retailer_id", profile.ID, "page", page, "url", pageURL, "error", err)
			return
		}

		products, err := b.snapshot(ctx, pageURL)
		if err != nil {
			slog.Warn("Stopping pagination after failed snapshot", "retailer_id", profile.ID, "page", page, "error", err)
			return
		}
		if len(products) == 0 {
			slog.Debug("No products on page, pagination finished", "retailer_id", profile.ID, "page", page)
			return
		}
		c.add(products)
	}
}

func (s *Strategy) loadMore(ctx context.Context, b browser, profile *entity.RetailerProfile, pageURL string, limit int, c *collector) {
	button := profile.Selectors.LoadMore
	if button == "" {
		slog.Warn("Load more pagination without a button selector", "retailer_id", profile.ID)
		return
	}

	for click := 1; click <= limit; click++ {
		present, err := b.present(ctx, button)
		if err != nil || !present {
			slog.Debug("Load more control gone", "retailer_id", profile.ID, "clicks", click-1)
			return
		}
		if err := b.click(ctx, button); err != nil {
			slog.Warn("Load more click failed", "retailer_id", profile.ID, "click", click, "error", err)
			return
		}
		if err := sleep(ctx, s.settle); err != nil {
			return
		}

		products, err := b.snapshot(ctx, pageURL)
		if err != nil {
			slog.Warn("Snapshot after load more failed", "retailer_id", profile.ID, "click", click, "error", err)
			return
		}
		c.add(products)
	}
}

func debugf(format string, args ...interface{}) {
	slog.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
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
