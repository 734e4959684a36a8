// Package drive implements the remote store on Google Drive v3.
package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/cirslinger/pdfmirror/internal/mirror"
)

const folderMIME = "application/vnd.google-apps.folder"

// Store adapts the Drive files API to the mirror.Store interface.
type Store struct {
	svc *drivev3.Service
}

// New builds a Store from Drive client options. Construction failure is an
// AuthError: the adapter is useless without an authenticated service.
func New(ctx context.Context, opts ...option.ClientOption) (*Store, error) {
	svc, err := drivev3.NewService(ctx, opts...)
	if err != nil {
		return nil, &mirror.AuthError{Provider: "drive", Err: err}
	}
	return &Store{svc: svc}, nil
}

// NewFromToken builds a Store from an OAuth client secrets file and a
// previously saved token. Interactive token acquisition is deliberately not
// handled here; a missing or unreadable token is an AuthError.
func NewFromToken(ctx context.Context, credentialsFile, tokenFile string) (*Store, error) {
	secrets, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, &mirror.AuthError{Provider: "drive", Err: fmt.Errorf("read credentials: %w", err)}
	}
	cfg, err := google.ConfigFromJSON(secrets, drivev3.DriveScope)
	if err != nil {
		return nil, &mirror.AuthError{Provider: "drive", Err: fmt.Errorf("parse credentials: %w", err)}
	}
	tokenData, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, &mirror.AuthError{Provider: "drive", Err: fmt.Errorf("read token: %w", err)}
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, &mirror.AuthError{Provider: "drive", Err: fmt.Errorf("parse token: %w", err)}
	}
	return New(ctx, option.WithHTTPClient(cfg.Client(ctx, &token)))
}

// EnsureFolder resolves the named folder at the Drive root, creating it if
// absent. Idempotent: the lookup runs before any create.
func (s *Store) EnsureFolder(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf("mimeType='%s' and name='%s' and trashed=false",
		folderMIME, escapeQuery(name))
	list, err := s.svc.Files.List().
		Q(query).
		Spaces("drive").
		Fields("files(id, name)").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("find folder %q: %w", name, err)
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	folder, err := s.svc.Files.Create(&drivev3.File{
		Name:     name,
		MimeType: folderMIME,
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	return folder.Id, nil
}

// ListFolder returns every non-trashed file in the folder, following page
// tokens until the listing is complete.
func (s *Store) ListFolder(ctx context.Context, folderID string) ([]mirror.RemoteFile, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(folderID))
	var out []mirror.RemoteFile
	pageToken := ""
	for {
		call := s.svc.Files.List().
			Q(query).
			Spaces("drive").
			Fields("nextPageToken, files(id, name)").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list folder %s: %w", folderID, err)
		}
		for _, f := range list.Files {
			out = append(out, mirror.RemoteFile{ID: f.Id, Name: f.Name})
		}
		pageToken = list.NextPageToken
		if pageToken == "" {
			return out, nil
		}
	}
}

// Upload creates a new Drive file under the folder from the staged local
// file. Drive allows duplicate names; reconciliation operates on whatever
// the listing reports.
func (s *Store) Upload(ctx context.Context, folderID, localPath, name string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	created, err := s.svc.Files.Create(&drivev3.File{
		Name:    name,
		Parents: []string{folderID},
	}).Media(f, googleapi.ContentType("application/pdf")).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return created.Id, nil
}

// Delete removes one file by id.
func (s *Store) Delete(ctx context.Context, fileID string) error {
	if err := s.svc.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete file %s: %w", fileID, err)
	}
	return nil
}

// escapeQuery escapes single quotes inside Drive query string literals.
func escapeQuery(s string) string {
	return strings.ReplaceAll(s, `'`, `\'`)
}
