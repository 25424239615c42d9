package crawler

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter enforces a minimum interval between requests to the same host.
// It is a floor under all traffic, separate from the leaf delay policy.
type HostLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	interval time.Duration
}

// NewHostLimiter creates a limiter. An interval of zero or less disables limiting.
func NewHostLimiter(interval time.Duration) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
	}
}

// Wait blocks until a request to urlStr's host may proceed
func (h *HostLimiter) Wait(ctx context.Context, urlStr string) error {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return err
	}
	return h.limiter(parsedURL.Host).Wait(ctx)
}

func (h *HostLimiter) limiter(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	if limiter, ok := h.limiters[host]; ok {
		return limiter
	}

	limit := rate.Inf
	if h.interval > 0 {
		limit = rate.Every(h.interval)
	}
	limiter := rate.NewLimiter(limit, 1)
	h.limiters[host] = limiter
	return limiter
}
