package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cirslinger/pdfmirror/internal/app"
	"github.com/cirslinger/pdfmirror/internal/config"
	"github.com/cirslinger/pdfmirror/internal/remote/memory"
)

// newSiteServer serves a minimal site: a sitemap with one matching page, the
// page itself, and the document it links to.
func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>%s/en-US/page</loc></url>
  <url><loc>%s/fr-FR/page</loc></url>
</urlset>`, srv.URL, srv.URL)
	})
	mux.HandleFunc("/en-US/page", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/files/report.pdf">Report</a></body></html>`)
	})
	mux.HandleFunc("/files/report.pdf", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, "%PDF-1.4 fake")
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, sitemapURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`sitemap:
  url: %s
  locale_filter: en-US
staging:
  dir: %s
remote:
  provider: memory
  folder_name: documents
sync:
  concurrency: 2
  per_host_rps: 100
http:
  timeout_seconds: 5
`, sitemapURL, filepath.Join(dir, "staging"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSyncCommandMirrorsSite(t *testing.T) {
	srv := newSiteServer(t)

	var captured *app.App
	origNewApp := newApp
	newApp = func(ctx context.Context, cfg config.Config) (*app.App, error) {
		a, err := app.New(ctx, cfg)
		captured = a
		return a, err
	}
	defer func() { newApp = origNewApp }()

	root := newRootCmd()
	root.SetArgs([]string{"sync", "--config", writeConfig(t, srv.URL+"/sitemap.xml")})
	require.NoError(t, root.Execute())

	require.NotNil(t, captured)
	store, ok := captured.Store().(*memory.Store)
	require.True(t, ok)

	folderID, err := store.EnsureFolder(context.Background(), "documents")
	require.NoError(t, err)
	content, found := store.Content(folderID, "report.pdf")
	require.True(t, found, "report.pdf should have been mirrored")
	assert.Equal(t, []byte("%PDF-1.4 fake"), content)
}

func TestSyncCommandTearsDownOnFailedPass(t *testing.T) {
	// Unreachable sitemap: the pass aborts with an error before any remote
	// mutation, and teardown must still happen even though cobra skips
	// PersistentPostRun when RunE errors.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	var captured *app.App
	origNewApp := newApp
	newApp = func(ctx context.Context, cfg config.Config) (*app.App, error) {
		a, err := app.New(ctx, cfg)
		captured = a
		return a, err
	}
	defer func() { newApp = origNewApp }()

	root := newRootCmd()
	root.SetArgs([]string{"sync", "--config", writeConfig(t, srv.URL+"/sitemap.xml")})
	require.Error(t, root.Execute())

	require.NotNil(t, captured)
	// Already closed by the command; a second Close must be a no-op.
	assert.NotPanics(t, captured.Close)
}

func TestSyncCommandFailsOnBadConfig(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"sync", "--config", "/nonexistent/config.yaml"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load configuration")
}
