package httpfetch

import (
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/user/speedsale-scraper/internal/repository"
)

// PoliteTransport applies, in order: fingerprint headers, the robots.txt
// check, the per-host rate limiter, then the base transport.
type PoliteTransport struct {
	Base        http.RoundTripper
	Robots      *RobotsChecker
	Fingerprint *FingerprintPool
	Limits      *HostLimiter
}

func (t *PoliteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	fp := t.Fingerprint.Next()
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", fp.UserAgent)
	for key, vals := range fp.Headers {
		if req.Header.Get(key) == "" {
			for _, v := range vals {
				req.Header.Add(key, v)
			}
		}
	}

	if t.Robots != nil {
		allowed, err := t.Robots.IsAllowed(req.Context(), fp.UserAgent, req.URL.String())
		if err == nil && !allowed {
			return nil, fmt.Errorf("%w: %s", repository.ErrBlockedByRobots, req.URL.Path)
		}
	}

	if t.Limits != nil {
		if err := t.Limits.Wait(req); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// HostLimiter keeps one token bucket per host.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing rps requests per second per host.
// A non-positive rps disables limiting.
func NewHostLimiter(rps float64, burst int) *HostLimiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{limiters: make(map[string]*rate.Limiter), limit: limit, burst: burst}
}

// Wait blocks until the request's host has a token or the context ends.
func (h *HostLimiter) Wait(req *http.Request) error {
	h.mu.Lock()
	l, ok := h.limiters[req.URL.Host]
	if !ok {
		l = rate.NewLimiter(h.limit, h.burst)
		h.limiters[req.URL.Host] = l
	}
	h.mu.Unlock()
	return l.Wait(req.Context())
}
