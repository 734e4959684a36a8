// Package run sequences one synchronization pass: enumerate, extract,
// fetch-stage-upload, reconcile.
package run

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cirslinger/pdfmirror/internal/classify"
	"github.com/cirslinger/pdfmirror/internal/metrics"
	"github.com/cirslinger/pdfmirror/internal/mirror"
	"github.com/cirslinger/pdfmirror/internal/notify"
	"github.com/cirslinger/pdfmirror/internal/reconcile"
)

// Enumerator produces the page URLs to scan.
type Enumerator interface {
	Enumerate(ctx context.Context, sitemapURL string) ([]string, error)
}

// Extractor returns the document candidates referenced by one page.
type Extractor interface {
	Extract(ctx context.Context, pageURL string) ([]mirror.DocumentCandidate, error)
}

// Stager downloads one candidate into transient local storage.
type Stager interface {
	Stage(ctx context.Context, candidate mirror.DocumentCandidate) (mirror.StagedFile, error)
}

// Config holds the per-run knobs the Orchestrator needs.
type Config struct {
	SitemapURL  string
	FolderName  string
	Concurrency int
}

// Orchestrator wires the pipeline stages together for one pass.
type Orchestrator struct {
	enumerator Enumerator
	extractor  Extractor
	stager     Stager
	store      mirror.Store
	reconciler *reconcile.Reconciler
	publisher  mirror.Publisher
	collectors *metrics.Collectors
	clock      mirror.Clock
	cfg        Config
	logger     *zap.Logger
}

// New constructs an Orchestrator. publisher, collectors, and clock may be
// nil; sensible defaults apply.
func New(
	enumerator Enumerator,
	extractor Extractor,
	stager Stager,
	store mirror.Store,
	reconciler *reconcile.Reconciler,
	publisher mirror.Publisher,
	collectors *metrics.Collectors,
	clock mirror.Clock,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	if publisher == nil {
		publisher = notify.NoOp{}
	}
	if clock == nil {
		clock = mirror.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Orchestrator{
		enumerator: enumerator,
		extractor:  extractor,
		stager:     stager,
		store:      store,
		reconciler: reconciler,
		publisher:  publisher,
		collectors: collectors,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run executes one synchronization pass. Only a FatalError (sitemap failure,
// folder resolution failure, or a reconciliation listing failure) returns a
// non-nil error; page, fetch, upload, and delete failures are isolated and
// reported through the summary.
func (o *Orchestrator) Run(ctx context.Context) (mirror.RunSummary, error) {
	summary := mirror.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: o.clock.Now(),
	}
	logger := o.logger.With(zap.String("run_id", summary.RunID))
	logger.Info("synchronization pass starting", zap.String("sitemap", o.cfg.SitemapURL))

	pages, err := o.enumerator.Enumerate(ctx, o.cfg.SitemapURL)
	if err != nil {
		return summary, err
	}

	// The folder is resolved once, before any fetch, so a misconfigured
	// remote fails the run while it is still side-effect free.
	folderID, err := o.store.EnsureFolder(ctx, o.cfg.FolderName)
	if err != nil {
		return summary, &mirror.FatalError{Op: "ensure remote folder", Err: err}
	}

	candidates := o.scanPages(ctx, logger, pages, &summary)

	expected := mirror.NewExpectedSet()
	o.processDocuments(ctx, logger, folderID, candidates, expected, &summary)

	// All uploads have settled here; reconciling earlier could delete files
	// whose upload is still in flight.
	result, err := o.reconciler.Reconcile(ctx, folderID, expected)
	if err != nil {
		return summary, err
	}
	summary.Deleted = result.Deleted
	summary.DeleteFailed = result.DeleteFailed
	if o.collectors != nil {
		o.collectors.ObserveDeletes(result.Deleted, result.DeleteFailed)
	}

	summary.Duration = o.clock.Now().Sub(summary.StartedAt)
	if o.collectors != nil {
		o.collectors.ObserveRun(summary.Duration)
	}
	o.finish(ctx, logger, summary)
	return summary, nil
}

func (o *Orchestrator) scanPages(
	ctx context.Context,
	logger *zap.Logger,
	pages []string,
	summary *mirror.RunSummary,
) []mirror.DocumentCandidate {
	var candidates []mirror.DocumentCandidate
	for _, page := range pages {
		docs, err := o.extractor.Extract(ctx, page)
		if err != nil {
			summary.PagesFailed++
			logger.Warn("page scan failed", zap.Error(err))
			if o.collectors != nil {
				o.collectors.ObservePage(true)
			}
			continue
		}
		summary.PagesScanned++
		summary.DocumentsFound += len(docs)
		candidates = append(candidates, docs...)
		if o.collectors != nil {
			o.collectors.ObservePage(false)
			o.collectors.ObserveDocuments(len(docs))
		}
	}
	return candidates
}

// processDocuments runs the fetch-stage-upload pipeline over all candidates
// with a bounded worker pool. It returns only after every worker has
// finished, which is the barrier the reconciler depends on.
func (o *Orchestrator) processDocuments(
	ctx context.Context,
	logger *zap.Logger,
	folderID string,
	candidates []mirror.DocumentCandidate,
	expected *mirror.ExpectedSet,
	summary *mirror.RunSummary,
) {
	work := make(chan mirror.DocumentCandidate)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	workers := o.cfg.Concurrency
	if workers > len(candidates) && len(candidates) > 0 {
		workers = len(candidates)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for candidate := range work {
				outcome := o.processOne(ctx, logger, folderID, candidate, expected)
				mu.Lock()
				switch outcome {
				case outcomeUploaded:
					summary.Uploaded++
				case outcomeFetchFailed:
					summary.FetchFailed++
				case outcomeUploadFailed:
					summary.UploadFailed++
				case outcomeCollision:
					summary.Collisions++
				}
				mu.Unlock()
			}
		}()
	}

	for _, c := range candidates {
		work <- c
	}
	close(work)
	wg.Wait()
}

type outcome int

const (
	outcomeUploaded outcome = iota
	outcomeFetchFailed
	outcomeUploadFailed
	outcomeCollision
)

func (o *Orchestrator) processOne(
	ctx context.Context,
	logger *zap.Logger,
	folderID string,
	candidate mirror.DocumentCandidate,
	expected *mirror.ExpectedSet,
) outcome {
	name := classify.Filename(candidate.URL)
	if name == "" {
		logger.Warn("document has no usable filename",
			zap.String("url", candidate.URL))
		return outcomeFetchFailed
	}

	if prior, collided := expected.Claim(name, candidate.URL); collided {
		// Two distinct source documents derive the same filename. The first
		// claimant wins; the remote ends up with whichever content its
		// upload carried. Surfaced loudly because it is a silent data-loss
		// hazard otherwise.
		logger.Warn("filename collision, keeping first claimant",
			zap.String("name", name),
			zap.String("kept", prior),
			zap.String("skipped", candidate.URL),
		)
		return outcomeCollision
	}

	staged, err := o.stager.Stage(ctx, candidate)
	if err != nil {
		expected.Release(name)
		logger.Warn("document fetch failed", zap.Error(err))
		return outcomeFetchFailed
	}
	// The staging artifact must not outlive the upload attempt.
	defer func() {
		if err := staged.Remove(); err != nil {
			logger.Warn("staging cleanup failed", zap.Error(err))
		}
	}()

	fileID, err := o.store.Upload(ctx, folderID, staged.Path, staged.Name)
	if err != nil {
		expected.Release(name)
		uploadErr := &mirror.UploadError{Name: staged.Name, Err: err}
		logger.Warn("upload failed", zap.Error(uploadErr))
		if o.collectors != nil {
			o.collectors.ObserveUpload("error")
		}
		return outcomeUploadFailed
	}

	expected.Confirm(name)
	logger.Info("document uploaded",
		zap.String("name", staged.Name),
		zap.String("file_id", fileID),
		zap.String("source", candidate.FoundOn),
	)
	if o.collectors != nil {
		o.collectors.ObserveUpload("ok")
	}
	return outcomeUploaded
}

func (o *Orchestrator) finish(ctx context.Context, logger *zap.Logger, summary mirror.RunSummary) {
	logger.Info("synchronization pass finished",
		zap.Int("pages_scanned", summary.PagesScanned),
		zap.Int("pages_failed", summary.PagesFailed),
		zap.Int("documents_found", summary.DocumentsFound),
		zap.Int("uploaded", summary.Uploaded),
		zap.Int("fetch_failed", summary.FetchFailed),
		zap.Int("upload_failed", summary.UploadFailed),
		zap.Int("collisions", summary.Collisions),
		zap.Int("deleted", summary.Deleted),
		zap.Int("delete_failed", summary.DeleteFailed),
		zap.Duration("duration", summary.Duration),
	)
	if _, err := o.publisher.Publish(ctx, summary); err != nil {
		logger.Warn("run summary publish failed", zap.Error(err))
	}
}
