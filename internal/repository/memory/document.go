package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/segal-ziv/smartbill/internal/domain/document"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/types"
)

// documentStore is an in-memory document repository. All reads and
// writes are owner-scoped through the context.
type documentStore struct {
	mu   sync.RWMutex
	docs map[string]*document.Document
}

func NewDocumentRepository() document.Repository {
	return &documentStore{docs: make(map[string]*document.Document)}
}

func (s *documentStore) Create(ctx context.Context, doc *document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[doc.ID]; exists {
		return ierr.NewError("document already exists").
			WithReportableDetails(map[string]any{"document_id": doc.ID}).
			Mark(ierr.ErrAlreadyExists)
	}

	copied := *doc
	s.docs[doc.ID] = &copied
	return nil
}

func (s *documentStore) Get(ctx context.Context, id string) (*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok || !visibleTo(ctx, doc.OwnerID) || doc.Status == types.StatusDeleted {
		return nil, ierr.NewError("document not found").
			WithReportableDetails(map[string]any{"document_id": id}).
			Mark(ierr.ErrNotFound)
	}

	copied := *doc
	return &copied, nil
}

func (s *documentStore) List(ctx context.Context, filter *types.DocumentFilter) ([]*document.Document, error) {
	matched := s.match(ctx, filter)

	asc := filter.GetOrder() == "asc"
	sort.Slice(matched, func(i, j int) bool {
		if asc {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	offset := filter.GetOffset()
	if offset >= len(matched) {
		return []*document.Document{}, nil
	}
	matched = matched[offset:]

	limit := filter.GetLimit()
	if limit > len(matched) {
		limit = len(matched)
	}
	return matched[:limit], nil
}

func (s *documentStore) Count(ctx context.Context, filter *types.DocumentFilter) (int, error) {
	return len(s.match(ctx, filter)), nil
}

func (s *documentStore) Update(ctx context.Context, doc *document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.docs[doc.ID]
	if !ok || !visibleTo(ctx, existing.OwnerID) {
		return ierr.NewError("document not found").
			WithReportableDetails(map[string]any{"document_id": doc.ID}).
			Mark(ierr.ErrNotFound)
	}

	copied := *doc
	s.docs[doc.ID] = &copied
	return nil
}

func (s *documentStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok || !visibleTo(ctx, doc.OwnerID) || doc.Status == types.StatusDeleted {
		return ierr.NewError("document not found").
			WithReportableDetails(map[string]any{"document_id": id}).
			Mark(ierr.ErrNotFound)
	}

	doc.Status = types.StatusDeleted
	return nil
}

func (s *documentStore) ListBySupplier(ctx context.Context, supplierID string) ([]*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*document.Document
	for _, doc := range s.docs {
		if !visibleTo(ctx, doc.OwnerID) || doc.Status == types.StatusDeleted {
			continue
		}
		if doc.SupplierID == nil || *doc.SupplierID != supplierID {
			continue
		}
		copied := *doc
		matched = append(matched, &copied)
	}
	return matched, nil
}

func (s *documentStore) match(ctx context.Context, filter *types.DocumentFilter) []*document.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*document.Document
	for _, doc := range s.docs {
		if !visibleTo(ctx, doc.OwnerID) || doc.Status == types.StatusDeleted {
			continue
		}
		if !matchesFilter(doc, filter) {
			continue
		}
		copied := *doc
		matched = append(matched, &copied)
	}
	return matched
}

func matchesFilter(doc *document.Document, filter *types.DocumentFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Status != nil && doc.DocumentStatus != *filter.Status {
		return false
	}
	if filter.OCRStatus != nil && doc.OCRStatus != *filter.OCRStatus {
		return false
	}
	if filter.Source != nil && doc.Source != *filter.Source {
		return false
	}
	if filter.SupplierID != nil {
		if doc.SupplierID == nil || *doc.SupplierID != *filter.SupplierID {
			return false
		}
	}
	if filter.CategoryID != nil {
		if doc.CategoryID == nil || *doc.CategoryID != *filter.CategoryID {
			return false
		}
	}

	// Date filters apply to the invoice issue date, falling back to the
	// ingestion time when extraction found none.
	when := doc.CreatedAt
	if doc.IssueDate != nil {
		when = *doc.IssueDate
	}
	if filter.StartDate != nil && when.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && when.After(*filter.EndDate) {
		return false
	}
	return true
}

// visibleTo reports whether the context's owner may see the record.
// Contexts without an owner (workers resolving webhook deliveries) see
// everything.
func visibleTo(ctx context.Context, ownerID string) bool {
	ctxOwner := types.GetOwnerID(ctx)
	return ctxOwner == "" || ctxOwner == ownerID
}
