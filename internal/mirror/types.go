// Package mirror defines core types shared across subsystems.
package mirror

import (
	"time"
)

// DocumentCandidate is a URL believed to reference a document, with the page
// it was discovered on as provenance.
type DocumentCandidate struct {
	URL     string `json:"url"`
	FoundOn string `json:"found_on"`
}

// StagedFile is a document downloaded to transient local storage but not yet
// confirmed uploaded. Remove must be called once the upload attempt is
// resolved, whatever the outcome.
type StagedFile struct {
	Name string
	Path string

	remove func() error
}

// NewStagedFile wraps a staged download with its cleanup function.
func NewStagedFile(name, path string, remove func() error) StagedFile {
	return StagedFile{Name: name, Path: path, remove: remove}
}

// Remove deletes the local staging artifact. Safe to call when no cleanup
// function was attached.
func (s StagedFile) Remove() error {
	if s.remove == nil {
		return nil
	}
	return s.remove()
}

// RemoteFile is a single entry in the remote folder. Identity is the
// provider-assigned ID; Name is what reconciliation matches against.
type RemoteFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RunSummary aggregates the per-URL outcomes of one synchronization pass.
type RunSummary struct {
	RunID          string        `json:"run_id"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	PagesScanned   int           `json:"pages_scanned"`
	PagesFailed    int           `json:"pages_failed"`
	DocumentsFound int           `json:"documents_found"`
	Uploaded       int           `json:"uploaded"`
	FetchFailed    int           `json:"fetch_failed"`
	UploadFailed   int           `json:"upload_failed"`
	Collisions     int           `json:"collisions"`
	Deleted        int           `json:"deleted"`
	DeleteFailed   int           `json:"delete_failed"`
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using time.Now.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
