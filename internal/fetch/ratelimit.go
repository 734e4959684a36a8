package fetch

import (
	"context"
	"io"
	"net/url"
	"sync"

	"golang.org/x/time/rate"

	"github.com/cirslinger/pdfmirror/internal/mirror"
)

// Client is what the rate limiter wraps: buffered page fetches and streaming
// document downloads over the same origin budget.
type Client interface {
	mirror.Fetcher
	mirror.Downloader
}

// RateLimited wraps a Client with a per-host token bucket so parallel
// document downloads do not hammer a single origin.
type RateLimited struct {
	next Client

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimited builds the wrapper. rps <= 0 disables pacing.
func NewRateLimited(next Client, rps float64) *RateLimited {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &RateLimited{
		next:     next,
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    1,
	}
}

// Fetch waits for the host's limiter, then delegates.
func (r *RateLimited) Fetch(ctx context.Context, rawURL string) (mirror.FetchResponse, error) {
	if err := r.limiterFor(rawURL).Wait(ctx); err != nil {
		return mirror.FetchResponse{}, err
	}
	return r.next.Fetch(ctx, rawURL)
}

// Download waits for the host's limiter, then delegates.
func (r *RateLimited) Download(ctx context.Context, rawURL string) (io.ReadCloser, int, error) {
	if err := r.limiterFor(rawURL).Wait(ctx); err != nil {
		return nil, 0, err
	}
	return r.next.Download(ctx, rawURL)
}

func (r *RateLimited) limiterFor(rawURL string) *rate.Limiter {
	host := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	limiter, ok := r.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(r.limit, r.burst)
		r.limiters[host] = limiter
	}
	return limiter
}
