// Package fetch implements page fetching through the Colly collector and
// streaming document downloads over a shared HTTP transport.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/cirslinger/pdfmirror/internal/mirror"
)

// Config controls collector behavior.
type Config struct {
	UserAgent     string
	Timeout       time.Duration
	RespectRobots bool
	// MaxBodyBytes caps response bodies; 0 means unlimited, which suits
	// document downloads of unknown size.
	MaxBodyBytes int
}

// Fetcher executes single HTTP GETs through a shared Colly collector, and
// streams document downloads over a plain client sharing the same transport.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	client        *http.Client
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = !cfg.RespectRobots
	c.MaxBodySize = cfg.MaxBodyBytes
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.SetRequestTimeout(cfg.Timeout)
	c.WithTransport(newHTTPTransport())
	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		client: &http.Client{
			Transport: newHTTPTransport(),
			Timeout:   cfg.Timeout,
		},
	}
}

// Fetch performs one GET and returns the body plus status code. Non-2xx
// responses are returned with their status code and no error so callers can
// apply their own policy; transport failures return an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (mirror.FetchResponse, error) {
	var (
		result   mirror.FetchResponse
		fetchErr error
	)

	collector := f.baseCollector.Clone()
	collector.OnResponse(func(r *colly.Response) {
		result = mirror.FetchResponse{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			// HTTP-level failure: surface the status, keep the body out.
			result = mirror.FetchResponse{
				URL:        url,
				StatusCode: r.StatusCode,
			}
			return
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return mirror.FetchResponse{}, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if fetchErr != nil {
			return mirror.FetchResponse{}, fmt.Errorf("fetch %s: %w", url, fetchErr)
		}
		if result.StatusCode != 0 {
			return result, nil
		}
		if err != nil {
			return mirror.FetchResponse{}, fmt.Errorf("visit %s: %w", url, err)
		}
		return result, nil
	}
}

// Download opens a streaming GET for a document body. Unlike Fetch it never
// buffers: the caller copies from the returned reader and must close it.
// Non-2xx responses come back with their status and an empty open body, same
// policy split as Fetch.
func (f *Fetcher) Download(ctx context.Context, url string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request %s: %w", url, err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("download %s: %w", url, err)
	}
	return resp.Body, resp.StatusCode, nil
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
