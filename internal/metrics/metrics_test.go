package metrics_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cirslinger/pdfmirror/internal/metrics"
)

func TestObserveDeletesAndRun(t *testing.T) {
	t.Parallel()

	c, err := metrics.New()
	require.NoError(t, err)

	c.ObserveDeletes(2, 1)
	c.ObserveRun(90 * time.Second)

	expected := strings.NewReader(`
# HELP pdfmirror_deletes_total Remote deletions partitioned by result.
# TYPE pdfmirror_deletes_total counter
pdfmirror_deletes_total{result="error"} 1
pdfmirror_deletes_total{result="ok"} 2
`)
	require.NoError(t, testutil.GatherAndCompare(c.Registry(), expected,
		"pdfmirror_deletes_total"))
}

func TestIncrementalObservers(t *testing.T) {
	t.Parallel()

	c, err := metrics.New()
	require.NoError(t, err)

	c.ObservePage(false)
	c.ObservePage(false)
	c.ObservePage(true)
	c.ObserveDocuments(3)
	c.ObserveUpload("ok")
	c.ObserveUpload("error")
	c.ObserveDeletes(1, 0)

	expected := strings.NewReader(`
# HELP pdfmirror_pages_scanned_total Pages fetched and scanned for document links.
# TYPE pdfmirror_pages_scanned_total counter
pdfmirror_pages_scanned_total 2
# HELP pdfmirror_pages_failed_total Pages that could not be fetched or parsed.
# TYPE pdfmirror_pages_failed_total counter
pdfmirror_pages_failed_total 1
# HELP pdfmirror_documents_found_total Document candidates discovered across all pages.
# TYPE pdfmirror_documents_found_total counter
pdfmirror_documents_found_total 3
# HELP pdfmirror_deletes_total Remote deletions partitioned by result.
# TYPE pdfmirror_deletes_total counter
pdfmirror_deletes_total{result="error"} 0
pdfmirror_deletes_total{result="ok"} 1
`)
	require.NoError(t, testutil.GatherAndCompare(c.Registry(), expected,
		"pdfmirror_pages_scanned_total",
		"pdfmirror_pages_failed_total",
		"pdfmirror_documents_found_total",
		"pdfmirror_deletes_total"))
}

func TestHandlerServesMetrics(t *testing.T) {
	t.Parallel()

	c, err := metrics.New()
	require.NoError(t, err)
	c.ObservePage(false)

	recorder := httptest.NewRecorder()
	c.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "pdfmirror_pages_scanned_total 1")
}
