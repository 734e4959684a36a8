// Package memory implements the remote store in-memory for tests and
// dry runs.
package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/cirslinger/pdfmirror/internal/mirror"
)

type object struct {
	name string
	data []byte
}

// Store keeps folders and files in process memory.
type Store struct {
	mu      sync.RWMutex
	folders map[string]string            // name -> folder id
	files   map[string]map[string]object // folder id -> file id -> object
	nextID  int
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		folders: make(map[string]string),
		files:   make(map[string]map[string]object),
	}
}

// EnsureFolder returns the folder's id, creating it on first use.
func (s *Store) EnsureFolder(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.folders[name]; ok {
		return id, nil
	}
	s.nextID++
	id := fmt.Sprintf("folder-%d", s.nextID)
	s.folders[name] = id
	s.files[id] = make(map[string]object)
	return id, nil
}

// ListFolder returns the folder's files in unspecified order.
func (s *Store) ListFolder(_ context.Context, folderID string) ([]mirror.RemoteFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, ok := s.files[folderID]
	if !ok {
		return nil, fmt.Errorf("unknown folder %q", folderID)
	}
	out := make([]mirror.RemoteFile, 0, len(objects))
	for id, obj := range objects {
		out = append(out, mirror.RemoteFile{ID: id, Name: obj.name})
	}
	return out, nil
}

// Upload reads the local file and stores its content under name.
func (s *Store) Upload(_ context.Context, folderID, localPath, name string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("read local file: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	objects, ok := s.files[folderID]
	if !ok {
		return "", fmt.Errorf("unknown folder %q", folderID)
	}
	s.nextID++
	id := fmt.Sprintf("file-%d", s.nextID)
	objects[id] = object{name: name, data: append([]byte(nil), data...)}
	return id, nil
}

// Delete removes a file by id.
func (s *Store) Delete(_ context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, objects := range s.files {
		if _, ok := objects[fileID]; ok {
			delete(objects, fileID)
			return nil
		}
	}
	return fmt.Errorf("unknown file %q", fileID)
}

// Put seeds a file directly, bypassing the staging path. Test helper.
func (s *Store) Put(folderID, name string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("file-%d", s.nextID)
	if s.files[folderID] == nil {
		s.files[folderID] = make(map[string]object)
	}
	s.files[folderID][id] = object{name: name, data: append([]byte(nil), data...)}
	return id
}

// Content returns a stored file's bytes by folder and name. Test helper.
func (s *Store) Content(folderID, name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, obj := range s.files[folderID] {
		if obj.name == name {
			return append([]byte(nil), obj.data...), true
		}
	}
	return nil, false
}
