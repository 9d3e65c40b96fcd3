package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segal-ziv/smartbill/internal/cache"
	"github.com/segal-ziv/smartbill/internal/domain/supplier"
	"github.com/segal-ziv/smartbill/internal/types"
)

// supplierListCacheTTL bounds how stale the reconciliation supplier
// list may get during an ingestion burst.
const supplierListCacheTTL = 2 * time.Minute

// SupplierService owns supplier CRUD, OCR-candidate reconciliation and
// the eventually-consistent aggregate stats.
type SupplierService interface {
	Create(ctx context.Context, sup *supplier.Supplier) error
	Get(ctx context.Context, id string) (*supplier.Supplier, error)
	List(ctx context.Context) ([]*supplier.Supplier, error)
	Update(ctx context.Context, sup *supplier.Supplier) error
	Delete(ctx context.Context, id string) error

	// Reconcile matches an extracted supplier-name candidate against the
	// owner's suppliers: case-insensitive substring of the stored name,
	// or exact equality with one of the keywords. First match wins;
	// suppliers are ordered by name so the result is deterministic.
	// Returns nil when nothing matches.
	Reconcile(ctx context.Context, candidate string) (*supplier.Supplier, error)

	// RecomputeStats re-reads all of the supplier's documents and
	// rewrites the display aggregates. Last writer wins.
	RecomputeStats(ctx context.Context, supplierID string) error
}

type supplierService struct {
	ServiceParams
}

func NewSupplierService(params ServiceParams) SupplierService {
	return &supplierService{ServiceParams: params}
}

func (s *supplierService) Create(ctx context.Context, sup *supplier.Supplier) error {
	if sup.ID == "" {
		sup.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUPPLIER)
	}
	if sup.OwnerID == "" {
		sup.BaseModel = types.GetDefaultBaseModel(ctx)
	}
	if err := sup.Validate(); err != nil {
		return err
	}
	if err := s.SupplierRepo.Create(ctx, sup); err != nil {
		return err
	}
	s.invalidateList(ctx)
	return nil
}

func (s *supplierService) Get(ctx context.Context, id string) (*supplier.Supplier, error) {
	return s.SupplierRepo.Get(ctx, id)
}

// List returns the owner's suppliers, memoized briefly so repeated
// reconciliations during a sync pass hit the store once.
func (s *supplierService) List(ctx context.Context) ([]*supplier.Supplier, error) {
	key := cache.GenerateKey(cache.PrefixSupplier, types.GetOwnerID(ctx), "list")
	if cached, ok := s.Cache.Get(ctx, key); ok {
		if suppliers, ok := cached.([]*supplier.Supplier); ok {
			return suppliers, nil
		}
	}

	suppliers, err := s.SupplierRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	s.Cache.Set(ctx, key, suppliers, supplierListCacheTTL)
	return suppliers, nil
}

func (s *supplierService) Update(ctx context.Context, sup *supplier.Supplier) error {
	if err := sup.Validate(); err != nil {
		return err
	}
	sup.UpdatedAt = time.Now().UTC()
	if err := s.SupplierRepo.Update(ctx, sup); err != nil {
		return err
	}
	s.invalidateList(ctx)
	return nil
}

func (s *supplierService) Delete(ctx context.Context, id string) error {
	if err := s.SupplierRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateList(ctx)
	return nil
}

func (s *supplierService) Reconcile(ctx context.Context, candidate string) (*supplier.Supplier, error) {
	if candidate == "" {
		return nil, nil
	}

	suppliers, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, sup := range suppliers {
		if sup.MatchesName(candidate) || sup.MatchesKeyword(candidate) {
			return sup, nil
		}
	}
	return nil, nil
}

func (s *supplierService) RecomputeStats(ctx context.Context, supplierID string) error {
	sup, err := s.SupplierRepo.Get(ctx, supplierID)
	if err != nil {
		return err
	}

	docs, err := s.DocumentRepo.ListBySupplier(ctx, supplierID)
	if err != nil {
		return err
	}

	total := decimal.Zero
	for _, doc := range docs {
		if doc.TotalAmount != nil {
			total = total.Add(*doc.TotalAmount)
		}
	}

	sup.TotalDocuments = len(docs)
	sup.TotalAmount = total
	sup.UpdatedAt = time.Now().UTC()

	if err := s.SupplierRepo.Update(ctx, sup); err != nil {
		return err
	}
	s.invalidateList(ctx)
	return nil
}

func (s *supplierService) invalidateList(ctx context.Context) {
	s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixSupplier, types.GetOwnerID(ctx), "list"))
}
