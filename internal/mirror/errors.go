package mirror

import "fmt"

// The error taxonomy below determines how far a failure propagates. Only
// FatalError and AuthError abort a run; every other kind is isolated to the
// page, document, or remote entry it names and surfaces through the summary.

// FatalError aborts the whole run before any remote mutation. It is reserved
// for the sitemap being unreachable or unparseable.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// AuthError signals that an authenticated remote store adapter could not be
// constructed. Nothing has been crawled or mutated when it occurs.
type AuthError struct {
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth %s: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// PageError marks one page as unreachable or unparseable. The page
// contributes zero documents and the run continues.
type PageError struct {
	URL string
	Err error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %s: %v", e.URL, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// FetchError marks one document that failed to download. The document is
// excluded from the expected set and the run continues.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// UploadError marks a staged file that failed to upload. The filename is
// excluded from the expected set; the staging artifact is still cleaned up.
type UploadError struct {
	Name string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Name, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// DeleteError marks one remote deletion the store rejected. Remaining
// deletions continue and the run does not fail overall.
type DeleteError struct {
	FileID string
	Name   string
	Err    error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete %s (%s): %v", e.Name, e.FileID, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }
