package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/s3"
)

// InMemoryBlobStore implements s3.Service against a map for tests.
type InMemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// Uploads records every storage path written, in order.
	Uploads []string
}

func NewInMemoryBlobStore() *InMemoryBlobStore {
	return &InMemoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *InMemoryBlobStore) Upload(ctx context.Context, object *s3.Object) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := fmt.Sprintf("%s/%s-%s", object.OwnerID, ulid.Make().String(), object.FileName)
	data := make([]byte, len(object.Data))
	copy(data, object.Data)
	s.blobs[path] = data
	s.Uploads = append(s.Uploads, path)
	return path, nil
}

func (s *InMemoryBlobStore) Download(ctx context.Context, storagePath string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[storagePath]
	if !ok {
		return nil, ierr.NewError("blob not found").
			WithReportableDetails(map[string]any{"storage_path": storagePath}).
			Mark(ierr.ErrNotFound)
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}

func (s *InMemoryBlobStore) GetPresignedURL(ctx context.Context, storagePath string) (string, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.blobs[storagePath]; !ok {
		return "", time.Time{}, ierr.NewError("blob not found").
			WithReportableDetails(map[string]any{"storage_path": storagePath}).
			Mark(ierr.ErrNotFound)
	}
	return "https://blobs.test/" + storagePath, time.Now().Add(30 * time.Minute), nil
}

func (s *InMemoryBlobStore) Delete(ctx context.Context, storagePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, storagePath)
	return nil
}

func (s *InMemoryBlobStore) Exists(ctx context.Context, storagePath string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.blobs[storagePath]
	return ok, nil
}
