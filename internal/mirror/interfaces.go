package mirror

import (
	"context"
	"io"
)

// Fetcher fetches a URL and returns the body plus status metadata.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResponse, error)
}

// Downloader streams a resource body instead of buffering it, for documents
// whose size is unknown. The caller owns the reader and must close it; a
// non-nil reader accompanies any status code.
type Downloader interface {
	Download(ctx context.Context, url string) (body io.ReadCloser, statusCode int, err error)
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Store is the capability interface over the remote storage provider. All
// operations in a run target the single folder ID returned by EnsureFolder.
type Store interface {
	// EnsureFolder resolves the named folder, creating it if absent.
	// Idempotent.
	EnsureFolder(ctx context.Context, name string) (string, error)
	// ListFolder returns every file in the folder, paginating transparently.
	ListFolder(ctx context.Context, folderID string) ([]RemoteFile, error)
	// Upload transfers a local file into the folder under the given name and
	// returns the provider-assigned ID.
	Upload(ctx context.Context, folderID, localPath, name string) (string, error)
	// Delete removes a file by provider ID.
	Delete(ctx context.Context, fileID string) error
}

// Publisher pushes run completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, payload any) (string, error)
	Close() error
}
