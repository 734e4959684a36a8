// Package stage downloads candidate documents into transient local storage.
package stage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cirslinger/pdfmirror/internal/classify"
	"github.com/cirslinger/pdfmirror/internal/mirror"
)

// Stager materializes document URLs as files under a staging directory.
// Staged files are transient: the caller must Remove them once the upload
// attempt is resolved, success or not.
type Stager struct {
	downloader mirror.Downloader
	dir        string
	logger     *zap.Logger
}

// New builds a Stager, creating the staging directory if absent.
func New(downloader mirror.Downloader, dir string, logger *zap.Logger) (*Stager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir %s: %w", dir, err)
	}
	return &Stager{downloader: downloader, dir: dir, logger: logger}, nil
}

// Stage downloads one document and writes it under its derived filename.
// Every failure is a FetchError scoped to this URL; the caller continues
// with other documents. No partial files survive a failed download.
func (s *Stager) Stage(ctx context.Context, candidate mirror.DocumentCandidate) (mirror.StagedFile, error) {
	name := classify.Filename(candidate.URL)
	if name == "" {
		return mirror.StagedFile{}, &mirror.FetchError{
			URL: candidate.URL,
			Err: fmt.Errorf("no usable filename in URL path"),
		}
	}

	body, status, err := s.downloader.Download(ctx, candidate.URL)
	if err != nil {
		return mirror.StagedFile{}, &mirror.FetchError{URL: candidate.URL, Err: err}
	}
	defer body.Close()

	if status != 200 {
		return mirror.StagedFile{}, &mirror.FetchError{
			URL: candidate.URL,
			Err: fmt.Errorf("unexpected status %d", status),
		}
	}

	// Stream straight to disk; the document never has to fit in memory.
	localPath := filepath.Join(s.dir, name)
	out, err := os.Create(localPath)
	if err != nil {
		return mirror.StagedFile{}, &mirror.FetchError{
			URL: candidate.URL,
			Err: fmt.Errorf("create staging file: %w", err),
		}
	}
	written, err := io.Copy(out, body)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		// No partial files survive a failed download.
		_ = os.Remove(localPath)
		return mirror.StagedFile{}, &mirror.FetchError{
			URL: candidate.URL,
			Err: fmt.Errorf("write staging file: %w", err),
		}
	}

	s.logger.Debug("document staged",
		zap.String("url", candidate.URL),
		zap.String("path", localPath),
		zap.Int64("bytes", written),
	)

	remove := func() error {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove staging file %s: %w", localPath, err)
		}
		return nil
	}
	return mirror.NewStagedFile(name, localPath, remove), nil
}
