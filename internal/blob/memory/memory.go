// Package memory provides an in-process blob store for local development and
// tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"sothuchi/internal/blob"
)

type file struct {
	name   string
	data   []byte
	public bool
}

type Store struct {
	mu    sync.Mutex
	next  int
	files map[string]*file
}

var _ blob.Store = (*Store)(nil)

func New() *Store {
	return &Store{files: make(map[string]*file)}
}

func (s *Store) Upload(_ context.Context, name, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := fmt.Sprintf("blob-%d", s.next)
	s.files[id] = &file{name: name, data: append([]byte(nil), data...)}
	return id, nil
}

func (s *Store) MakePublic(_ context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[fileID]
	if !ok {
		return fmt.Errorf("file %s not found", fileID)
	}
	f.public = true
	return nil
}

func (s *Store) GetLinks(_ context.Context, fileID string) (blob.Links, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[fileID]; !ok {
		return blob.Links{}, fmt.Errorf("file %s not found", fileID)
	}
	return blob.Links{
		ViewLink:      "mem://view/" + fileID,
		DownloadLink:  "mem://download/" + fileID,
		ThumbnailLink: "mem://thumb/" + fileID,
	}, nil
}

// IsPublic reports whether MakePublic was called for the file. Test helper.
func (s *Store) IsPublic(fileID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[fileID]
	return ok && f.public
}
