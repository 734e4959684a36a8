// Package sitemap enumerates the page URLs to scan from a sitemap resource.
package sitemap

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"go.uber.org/zap"

	"github.com/cirslinger/pdfmirror/internal/mirror"
)

// Enumerator fetches and filters sitemap entries. A sitemap failure is fatal
// for the whole run; an empty (but well-formed) sitemap is not.
type Enumerator struct {
	fetcher mirror.Fetcher
	filter  string
	logger  *zap.Logger
}

// New builds an Enumerator. filter is a locale substring (e.g. "en-US");
// empty means all entries pass.
func New(fetcher mirror.Fetcher, filter string, logger *zap.Logger) *Enumerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enumerator{fetcher: fetcher, filter: filter, logger: logger}
}

// Enumerate returns the ordered page URLs from the sitemap whose text
// contains the locale filter. Any fetch or parse problem returns a
// FatalError: without an authoritative source set the run must not proceed
// to mutate remote state.
func (e *Enumerator) Enumerate(ctx context.Context, sitemapURL string) ([]string, error) {
	resp, err := e.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, &mirror.FatalError{Op: "fetch sitemap", Err: err}
	}
	if resp.StatusCode != 200 {
		return nil, &mirror.FatalError{
			Op:  "fetch sitemap",
			Err: fmt.Errorf("unexpected status %d for %s", resp.StatusCode, sitemapURL),
		}
	}

	urls, err := parseLocs(resp.Body)
	if err != nil {
		return nil, &mirror.FatalError{Op: "parse sitemap", Err: err}
	}

	filtered := urls[:0]
	for _, u := range urls {
		if e.filter == "" || strings.Contains(u, e.filter) {
			filtered = append(filtered, u)
		}
	}

	if len(filtered) == 0 {
		// Valid but empty: the run continues and reconciliation will delete
		// everything remote. Worth a loud log line since that is drastic.
		e.logger.Warn("sitemap yielded no matching page URLs",
			zap.String("sitemap", sitemapURL),
			zap.String("locale_filter", e.filter),
			zap.Int("total_entries", len(urls)),
		)
	} else {
		e.logger.Info("sitemap enumerated",
			zap.String("sitemap", sitemapURL),
			zap.Int("total_entries", len(urls)),
			zap.Int("matching", len(filtered)),
		)
	}
	return filtered, nil
}

// parseLocs extracts every <loc> text value in document order. xmlquery is
// used rather than encoding/xml structs so the sitemaps.org namespace (or
// its absence) needs no special handling.
func parseLocs(body []byte) ([]string, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	nodes := xmlquery.Find(doc, "//*[local-name()='loc']")
	urls := make([]string, 0, len(nodes))
	for _, n := range nodes {
		text := strings.TrimSpace(n.InnerText())
		if text != "" {
			urls = append(urls, text)
		}
	}
	return urls, nil
}
