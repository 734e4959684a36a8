// Package extract scans fetched pages for document links.
package extract

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/cirslinger/pdfmirror/internal/classify"
	"github.com/cirslinger/pdfmirror/internal/mirror"
)

// Extractor fetches one page and returns the document URLs it references.
type Extractor struct {
	fetcher mirror.Fetcher
	logger  *zap.Logger
}

// New builds an Extractor.
func New(fetcher mirror.Fetcher, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{fetcher: fetcher, logger: logger}
}

// Extract returns the deduplicated document candidates found on pageURL.
// Failure of one page never aborts the run: a PageError is returned and the
// caller counts it, but sibling pages proceed.
func (e *Extractor) Extract(ctx context.Context, pageURL string) ([]mirror.DocumentCandidate, error) {
	resp, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, &mirror.PageError{URL: pageURL, Err: err}
	}
	if resp.StatusCode != 200 {
		return nil, &mirror.PageError{
			URL: pageURL,
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	candidates, err := FromHTML(resp.Body, pageURL)
	if err != nil {
		return nil, &mirror.PageError{URL: pageURL, Err: err}
	}

	e.logger.Debug("page scanned",
		zap.String("url", pageURL),
		zap.Int("documents", len(candidates)),
	)
	return candidates, nil
}

// FromHTML parses markup and collects anchor hrefs plus iframe/embed srcs
// whose resolved target classifies as a document. Results are deduplicated
// by absolute URL and returned in document order.
func FromHTML(body []byte, pageURL string) ([]mirror.DocumentCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	seen := make(map[string]struct{})
	var out []mirror.DocumentCandidate

	collect := func(ref string) {
		if !classify.IsDocument(ref, pageURL) {
			return
		}
		abs, ok := classify.Resolve(ref, pageURL)
		if !ok {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		out = append(out, mirror.DocumentCandidate{URL: abs, FoundOn: pageURL})
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			collect(href)
		}
	})
	doc.Find("iframe[src], embed[src]").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok {
			collect(src)
		}
	})

	return out, nil
}
