package stage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cirslinger/pdfmirror/internal/mirror"
	"github.com/cirslinger/pdfmirror/internal/stage"
)

type stubDownloader struct {
	body   io.Reader
	status int
	err    error
}

func (s *stubDownloader) Download(_ context.Context, _ string) (io.ReadCloser, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	body := s.body
	if body == nil {
		body = bytes.NewReader(nil)
	}
	return io.NopCloser(body), s.status, nil
}

// brokenReader fails partway through the body, like a connection dropping
// mid-transfer.
type brokenReader struct {
	prefix []byte
	read   bool
}

func (b *brokenReader) Read(p []byte) (int, error) {
	if !b.read {
		b.read = true
		return copy(p, b.prefix), nil
	}
	return 0, errors.New("connection reset mid-body")
}

func TestStageWritesAndRemoves(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dl := &stubDownloader{body: bytes.NewReader([]byte("%PDF-1.4 fake")), status: 200}
	stager, err := stage.New(dl, dir, zap.NewNop())
	require.NoError(t, err)

	staged, err := stager.Stage(context.Background(), mirror.DocumentCandidate{
		URL:     "https://example.com/files/manual.pdf?v=2",
		FoundOn: "https://example.com/page",
	})
	require.NoError(t, err)
	assert.Equal(t, "manual.pdf", staged.Name)
	assert.Equal(t, filepath.Join(dir, "manual.pdf"), staged.Path)

	data, err := os.ReadFile(staged.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), data)

	require.NoError(t, staged.Remove())
	_, err = os.Stat(staged.Path)
	assert.True(t, os.IsNotExist(err), "staging file should be gone after Remove")

	// Remove is idempotent.
	assert.NoError(t, staged.Remove())
}

func TestStageFetchFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dl := &stubDownloader{err: errors.New("connection reset")}
	stager, err := stage.New(dl, dir, zap.NewNop())
	require.NoError(t, err)

	_, err = stager.Stage(context.Background(), mirror.DocumentCandidate{URL: "https://example.com/a.pdf"})
	require.Error(t, err)
	var fetchErr *mirror.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "https://example.com/a.pdf", fetchErr.URL)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial files on failure")
}

func TestStageBodyFailureLeavesNoPartialFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dl := &stubDownloader{
		body:   &brokenReader{prefix: []byte("%PDF-1.4 trunc")},
		status: 200,
	}
	stager, err := stage.New(dl, dir, zap.NewNop())
	require.NoError(t, err)

	_, err = stager.Stage(context.Background(), mirror.DocumentCandidate{URL: "https://example.com/big.pdf"})
	require.Error(t, err)
	var fetchErr *mirror.FetchError
	require.True(t, errors.As(err, &fetchErr))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "a transfer that dies mid-body must not leave a truncated file")
}

func TestStageNon200(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dl := &stubDownloader{status: 403}
	stager, err := stage.New(dl, dir, zap.NewNop())
	require.NoError(t, err)

	_, err = stager.Stage(context.Background(), mirror.DocumentCandidate{URL: "https://example.com/a.pdf"})
	var fetchErr *mirror.FetchError
	require.True(t, errors.As(err, &fetchErr))
}

func TestStageRejectsURLWithoutFilename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stager, err := stage.New(&stubDownloader{}, dir, zap.NewNop())
	require.NoError(t, err)

	_, err = stager.Stage(context.Background(), mirror.DocumentCandidate{URL: "https://example.com/"})
	var fetchErr *mirror.FetchError
	require.True(t, errors.As(err, &fetchErr))
}

func TestNewCreatesStagingDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "staging")
	_, err := stage.New(&stubDownloader{}, dir, zap.NewNop())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
