// Package metrics exposes Prometheus collectors for the mirror service.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors bundles the run metrics registered against one registry.
type Collectors struct {
	pagesScanned   prometheus.Counter
	pagesFailed    prometheus.Counter
	documentsFound prometheus.Counter
	uploads        *prometheus.CounterVec
	deletes        *prometheus.CounterVec
	runDuration    prometheus.Histogram

	registry *prometheus.Registry
}

// New registers the collectors on a fresh registry.
func New() (*Collectors, error) {
	reg := prometheus.NewRegistry()
	c := &Collectors{
		pagesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pdfmirror_pages_scanned_total",
			Help: "Pages fetched and scanned for document links.",
		}),
		pagesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pdfmirror_pages_failed_total",
			Help: "Pages that could not be fetched or parsed.",
		}),
		documentsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pdfmirror_documents_found_total",
			Help: "Document candidates discovered across all pages.",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdfmirror_uploads_total",
			Help: "Upload attempts partitioned by result.",
		}, []string{"result"}),
		deletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdfmirror_deletes_total",
			Help: "Remote deletions partitioned by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pdfmirror_run_duration_seconds",
			Help:    "Wall time per synchronization pass.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		registry: reg,
	}
	for _, collector := range []prometheus.Collector{
		c.pagesScanned, c.pagesFailed, c.documentsFound,
		c.uploads, c.deletes, c.runDuration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ObservePage counts one page scan attempt.
func (c *Collectors) ObservePage(failed bool) {
	if failed {
		c.pagesFailed.Inc()
		return
	}
	c.pagesScanned.Inc()
}

// ObserveDocuments adds discovered candidates.
func (c *Collectors) ObserveDocuments(n int) {
	c.documentsFound.Add(float64(n))
}

// ObserveUpload counts one upload attempt by result label.
func (c *Collectors) ObserveUpload(result string) {
	c.uploads.WithLabelValues(result).Inc()
}

// ObserveDeletes adds a reconciliation pass's deletion counts.
func (c *Collectors) ObserveDeletes(ok, failed int) {
	c.deletes.WithLabelValues("ok").Add(float64(ok))
	c.deletes.WithLabelValues("error").Add(float64(failed))
}

// ObserveRun records the duration of a completed pass.
func (c *Collectors) ObserveRun(d time.Duration) {
	c.runDuration.Observe(d.Seconds())
}

// Registry exposes the underlying registry for testing.
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the scrape handler for these collectors.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve runs /metrics and /healthz on addr until ctx finishes.
func (c *Collectors) Serve(ctx context.Context, addr string) error {
	router := chi.NewRouter()
	router.Handle("/metrics", c.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
