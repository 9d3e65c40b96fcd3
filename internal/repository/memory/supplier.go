package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/segal-ziv/smartbill/internal/domain/supplier"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/types"
)

type supplierStore struct {
	mu        sync.RWMutex
	suppliers map[string]*supplier.Supplier
}

func NewSupplierRepository() supplier.Repository {
	return &supplierStore{suppliers: make(map[string]*supplier.Supplier)}
}

func (s *supplierStore) Create(ctx context.Context, sup *supplier.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.suppliers[sup.ID]; exists {
		return ierr.NewError("supplier already exists").
			WithReportableDetails(map[string]any{"supplier_id": sup.ID}).
			Mark(ierr.ErrAlreadyExists)
	}

	copied := *sup
	s.suppliers[sup.ID] = &copied
	return nil
}

func (s *supplierStore) Get(ctx context.Context, id string) (*supplier.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sup, ok := s.suppliers[id]
	if !ok || !visibleTo(ctx, sup.OwnerID) || sup.Status == types.StatusDeleted {
		return nil, ierr.NewError("supplier not found").
			WithReportableDetails(map[string]any{"supplier_id": id}).
			Mark(ierr.ErrNotFound)
	}

	copied := *sup
	return &copied, nil
}

func (s *supplierStore) List(ctx context.Context) ([]*supplier.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*supplier.Supplier
	for _, sup := range s.suppliers {
		if !visibleTo(ctx, sup.OwnerID) || sup.Status == types.StatusDeleted {
			continue
		}
		copied := *sup
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
	})
	return matched, nil
}

func (s *supplierStore) Update(ctx context.Context, sup *supplier.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.suppliers[sup.ID]
	if !ok || !visibleTo(ctx, existing.OwnerID) {
		return ierr.NewError("supplier not found").
			WithReportableDetails(map[string]any{"supplier_id": sup.ID}).
			Mark(ierr.ErrNotFound)
	}

	copied := *sup
	s.suppliers[sup.ID] = &copied
	return nil
}

func (s *supplierStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sup, ok := s.suppliers[id]
	if !ok || !visibleTo(ctx, sup.OwnerID) || sup.Status == types.StatusDeleted {
		return ierr.NewError("supplier not found").
			WithReportableDetails(map[string]any{"supplier_id": id}).
			Mark(ierr.ErrNotFound)
	}

	sup.Status = types.StatusDeleted
	return nil
}

func (s *supplierStore) FindByEmailDomain(ctx context.Context, domain string) (*supplier.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sup := range s.suppliers {
		if !visibleTo(ctx, sup.OwnerID) || sup.Status == types.StatusDeleted {
			continue
		}
		if sup.MatchesDomain(domain) {
			copied := *sup
			return &copied, nil
		}
	}
	return nil, nil
}
