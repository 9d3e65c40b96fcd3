package service

import (
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/segal-ziv/smartbill/internal/cache"
	"github.com/segal-ziv/smartbill/internal/domain/document"
	"github.com/segal-ziv/smartbill/internal/domain/supplier"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/httpclient"
	"github.com/segal-ziv/smartbill/internal/testutil"
	"github.com/segal-ziv/smartbill/internal/types"
)

type SupplierServiceSuite struct {
	testutil.BaseServiceTestSuite
	params ServiceParams
	svc    SupplierService
}

func TestSupplierServiceSuite(t *testing.T) {
	suite.Run(t, new(SupplierServiceSuite))
}

func (s *SupplierServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.params = ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		S3:           s.GetBlobStore(),
		DocumentRepo: stores.DocumentRepo,
		SupplierRepo: stores.SupplierRepo,
		CategoryRepo: stores.CategoryRepo,
		SettingsRepo: stores.SettingsRepo,
		AuditLogRepo: stores.AuditLogRepo,
		Enqueuer:     s.GetEnqueuer(),
		OCRProvider:  &testutil.StubOCRProvider{},
		Encryption:   s.GetEncryption(),
		Cache:        cache.NewInMemoryCache(),
		Client:       httpclient.NewDefaultClient(),
	}
	s.svc = NewSupplierService(s.params)
}

func (s *SupplierServiceSuite) createSupplier(name string, keywords ...string) *supplier.Supplier {
	sup := &supplier.Supplier{
		Name:      name,
		Keywords:  keywords,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.svc.Create(s.GetContext(), sup))
	return sup
}

func (s *SupplierServiceSuite) TestCreateValidates() {
	err := s.svc.Create(s.GetContext(), &supplier.Supplier{
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SupplierServiceSuite) TestReconcileBySubstring() {
	sup := s.createSupplier("Bezeq International Ltd")

	got, err := s.svc.Reconcile(s.GetContext(), "bezeq international")
	s.NoError(err)
	s.Require().NotNil(got)
	s.Equal(sup.ID, got.ID)
}

func (s *SupplierServiceSuite) TestReconcileByKeyword() {
	sup := s.createSupplier("Electric Company of Israel", "חברת החשמל")

	got, err := s.svc.Reconcile(s.GetContext(), "חברת החשמל")
	s.NoError(err)
	s.Require().NotNil(got)
	s.Equal(sup.ID, got.ID)
}

func (s *SupplierServiceSuite) TestReconcileNoMatch() {
	s.createSupplier("Bezeq International Ltd")

	got, err := s.svc.Reconcile(s.GetContext(), "Partner Communications")
	s.NoError(err)
	s.Nil(got)
}

func (s *SupplierServiceSuite) TestReconcileEmptyCandidate() {
	s.createSupplier("Bezeq International Ltd")

	got, err := s.svc.Reconcile(s.GetContext(), "")
	s.NoError(err)
	s.Nil(got)
}

func (s *SupplierServiceSuite) TestReconcileIsDeterministic() {
	// both match; list order is by name so "Acme A" wins every time
	first := s.createSupplier("Acme A Networks")
	s.createSupplier("Acme B Networks")

	for i := 0; i < 3; i++ {
		got, err := s.svc.Reconcile(s.GetContext(), "Networks")
		s.NoError(err)
		s.Require().NotNil(got)
		s.Equal(first.ID, got.ID)
	}
}

func (s *SupplierServiceSuite) TestRecomputeStats() {
	sup := s.createSupplier("Bezeq International Ltd")

	amounts := []*string{lo.ToPtr("100.50"), lo.ToPtr("200.25"), nil}
	for _, a := range amounts {
		doc := &document.Document{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DOCUMENT),
			SupplierID:     &sup.ID,
			FileName:       "invoice.pdf",
			Source:         types.IngestionSourceManual,
			DocumentStatus: types.DocumentStatusPending,
			OCRStatus:      types.OCRStatusCompleted,
			BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
		}
		if a != nil {
			amount := decimal.RequireFromString(*a)
			doc.TotalAmount = &amount
		}
		s.Require().NoError(s.GetStores().DocumentRepo.Create(s.GetContext(), doc))
	}

	s.NoError(s.svc.RecomputeStats(s.GetContext(), sup.ID))

	// the amountless document counts but contributes nothing to the sum
	got, err := s.GetStores().SupplierRepo.Get(s.GetContext(), sup.ID)
	s.NoError(err)
	s.Equal(3, got.TotalDocuments)
	s.True(got.TotalAmount.Equal(decimal.RequireFromString("300.75")))
}

func (s *SupplierServiceSuite) TestListInvalidatedAfterUpdate() {
	sup := s.createSupplier("Bezeq International Ltd")

	// warm the cache
	listed, err := s.svc.List(s.GetContext())
	s.NoError(err)
	s.Len(listed, 1)

	sup.Name = "Bezeq International"
	s.Require().NoError(s.svc.Update(s.GetContext(), sup))

	listed, err = s.svc.List(s.GetContext())
	s.NoError(err)
	s.Require().Len(listed, 1)
	s.Equal("Bezeq International", listed[0].Name)
}

func (s *SupplierServiceSuite) TestDeleteRemovesFromList() {
	sup := s.createSupplier("Bezeq International Ltd")
	s.Require().NoError(s.svc.Delete(s.GetContext(), sup.ID))

	listed, err := s.svc.List(s.GetContext())
	s.NoError(err)
	s.Empty(listed)

	_, err = s.svc.Get(s.GetContext(), sup.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
