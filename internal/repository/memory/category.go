package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/segal-ziv/smartbill/internal/domain/category"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/types"
)

type categoryStore struct {
	mu         sync.RWMutex
	categories map[string]*category.Category
}

func NewCategoryRepository() category.Repository {
	return &categoryStore{categories: make(map[string]*category.Category)}
}

func (s *categoryStore) Create(ctx context.Context, cat *category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.categories[cat.ID]; exists {
		return ierr.NewError("category already exists").
			WithReportableDetails(map[string]any{"category_id": cat.ID}).
			Mark(ierr.ErrAlreadyExists)
	}

	copied := *cat
	s.categories[cat.ID] = &copied
	return nil
}

func (s *categoryStore) Get(ctx context.Context, id string) (*category.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cat, ok := s.categories[id]
	if !ok || !visibleTo(ctx, cat.OwnerID) || cat.Status == types.StatusDeleted {
		return nil, ierr.NewError("category not found").
			WithReportableDetails(map[string]any{"category_id": id}).
			Mark(ierr.ErrNotFound)
	}

	copied := *cat
	return &copied, nil
}

func (s *categoryStore) List(ctx context.Context) ([]*category.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*category.Category
	for _, cat := range s.categories {
		if !visibleTo(ctx, cat.OwnerID) || cat.Status == types.StatusDeleted {
			continue
		}
		copied := *cat
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
	})
	return matched, nil
}

func (s *categoryStore) Update(ctx context.Context, cat *category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.categories[cat.ID]
	if !ok || !visibleTo(ctx, existing.OwnerID) {
		return ierr.NewError("category not found").
			WithReportableDetails(map[string]any{"category_id": cat.ID}).
			Mark(ierr.ErrNotFound)
	}

	copied := *cat
	s.categories[cat.ID] = &copied
	return nil
}

func (s *categoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, ok := s.categories[id]
	if !ok || !visibleTo(ctx, cat.OwnerID) || cat.Status == types.StatusDeleted {
		return ierr.NewError("category not found").
			WithReportableDetails(map[string]any{"category_id": id}).
			Mark(ierr.ErrNotFound)
	}

	cat.Status = types.StatusDeleted
	return nil
}
