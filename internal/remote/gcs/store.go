// Package gcs implements the remote store on Google Cloud Storage. A
// "folder" is an object name prefix inside one bucket; the file ID is the
// full object name.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/cirslinger/pdfmirror/internal/mirror"
)

// Store adapts a GCS bucket to the mirror.Store interface.
type Store struct {
	Client *storage.Client
	Bucket string
}

// New initializes a GCS client and verifies bucket access up front.
// Authentication uses Application Default Credentials; a failure here is an
// AuthError since nothing useful can proceed without the bucket.
func New(ctx context.Context, bucket string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, &mirror.AuthError{Provider: "gcs", Err: err}
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		_ = client.Close()
		return nil, &mirror.AuthError{
			Provider: "gcs",
			Err:      fmt.Errorf("bucket %q attrs: %w", bucket, err),
		}
	}
	return &Store{Client: client, Bucket: bucket}, nil
}

// EnsureFolder is trivially idempotent for GCS: prefixes need no creation.
// The returned id is the normalized prefix.
func (s *Store) EnsureFolder(_ context.Context, name string) (string, error) {
	return strings.Trim(name, "/") + "/", nil
}

// ListFolder returns every object under the prefix. The iterator pages
// transparently.
func (s *Store) ListFolder(ctx context.Context, folderID string) ([]mirror.RemoteFile, error) {
	var out []mirror.RemoteFile
	it := s.Client.Bucket(s.Bucket).Objects(ctx, &storage.Query{Prefix: folderID})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", folderID, err)
		}
		if attrs.Name == folderID {
			continue // placeholder object for the prefix itself
		}
		out = append(out, mirror.RemoteFile{
			ID:   attrs.Name,
			Name: path.Base(attrs.Name),
		})
	}
	return out, nil
}

// Upload streams the local file into bucket/prefix/name.
func (s *Store) Upload(ctx context.Context, folderID, localPath, name string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	objectName := folderID + name
	wc := s.Client.Bucket(s.Bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = "application/pdf"
	if _, err := io.Copy(wc, f); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("write object %s: %w", objectName, err)
	}
	// Close finalizes the upload; errors here mean the object does not exist.
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("close object writer %s: %w", objectName, err)
	}
	return objectName, nil
}

// Delete removes one object by full name.
func (s *Store) Delete(ctx context.Context, fileID string) error {
	if err := s.Client.Bucket(s.Bucket).Object(fileID).Delete(ctx); err != nil {
		return fmt.Errorf("delete object %s: %w", fileID, err)
	}
	return nil
}
