package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/segal-ziv/smartbill/internal/cache"
	"github.com/segal-ziv/smartbill/internal/domain/document"
	"github.com/segal-ziv/smartbill/internal/domain/supplier"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/httpclient"
	"github.com/segal-ziv/smartbill/internal/queue"
	"github.com/segal-ziv/smartbill/internal/testutil"
	"github.com/segal-ziv/smartbill/internal/types"
)

const acmeInvoiceText = "Acme Hosting Ltd\n" +
	"Invoice #INV-4401\n" +
	"Date: 12.01.2023\n" +
	"VAT 41.99\n" +
	"Total: 289.99\n"

type OCRServiceSuite struct {
	testutil.BaseServiceTestSuite
	params    ServiceParams
	provider  *testutil.StubOCRProvider
	ingestion IngestionService
	suppliers SupplierService
	svc       OCRService
}

func TestOCRServiceSuite(t *testing.T) {
	suite.Run(t, new(OCRServiceSuite))
}

func (s *OCRServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.provider = &testutil.StubOCRProvider{
		Text:       acmeInvoiceText,
		Confidence: 0.92,
	}

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
		OCRProvider:  s.provider,
		Encryption:   s.GetEncryption(),
		Cache:        cache.NewInMemoryCache(),
		Client:       httpclient.NewDefaultClient(),
	}
	s.ingestion = NewIngestionService(s.params)
	s.suppliers = NewSupplierService(s.params)
	s.svc = NewOCRService(s.params, s.suppliers)
}

// uploadDocument creates a pending document with its bytes in blob
// storage, the way the ingestion pipeline leaves it for the worker.
func (s *OCRServiceSuite) uploadDocument() *document.Document {
	doc, err := s.ingestion.Upload(s.GetContext(), "invoice.png", "image/png", pngBytes)
	s.Require().NoError(err)
	return doc
}

func (s *OCRServiceSuite) TestProcessExtractsAndCompletes() {
	doc := s.uploadDocument()

	err := s.svc.Process(s.GetContext(), doc.ID)
	s.NoError(err)

	got, err := s.GetStores().DocumentRepo.Get(s.GetContext(), doc.ID)
	s.NoError(err)

	s.Equal(types.OCRStatusCompleted, got.OCRStatus)
	s.Equal("INV-4401", got.InvoiceNumber)
	s.Require().NotNil(got.IssueDate)
	s.Equal(time.Date(2023, time.January, 12, 0, 0, 0, 0, time.UTC), *got.IssueDate)
	s.Require().NotNil(got.TotalAmount)
	s.True(got.TotalAmount.Equal(decimal.RequireFromString("289.99")))
	s.Require().NotNil(got.VATAmount)
	s.True(got.VATAmount.Equal(decimal.RequireFromString("41.99")))
	s.Require().NotNil(got.OCRConfidence)
	s.InDelta(0.92, *got.OCRConfidence, 0.001)
	s.NotEmpty(got.OCRData)
}

func (s *OCRServiceSuite) TestProcessReconcilesSupplier() {
	sup := &supplier.Supplier{
		Name:      "Acme Hosting Ltd",
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	sup.ID = "sup_acme"
	s.Require().NoError(s.suppliers.Create(s.GetContext(), sup))

	doc := s.uploadDocument()
	s.NoError(s.svc.Process(s.GetContext(), doc.ID))

	got, err := s.GetStores().DocumentRepo.Get(s.GetContext(), doc.ID)
	s.NoError(err)
	s.Require().NotNil(got.SupplierID)
	s.Equal("sup_acme", *got.SupplierID)

	// stats on the matched supplier were recomputed
	refreshed, err := s.GetStores().SupplierRepo.Get(s.GetContext(), "sup_acme")
	s.NoError(err)
	s.Equal(1, refreshed.TotalDocuments)
	s.True(refreshed.TotalAmount.Equal(decimal.RequireFromString("289.99")))
}

func (s *OCRServiceSuite) TestProcessKeepsUserEditedFields() {
	doc := s.uploadDocument()

	// the user corrected these before extraction finished
	total := decimal.RequireFromString("100.00")
	issued := time.Date(2022, time.June, 1, 0, 0, 0, 0, time.UTC)
	doc.InvoiceNumber = "MANUAL-7"
	doc.TotalAmount = &total
	doc.IssueDate = &issued
	s.Require().NoError(s.GetStores().DocumentRepo.Update(s.GetContext(), doc))

	s.NoError(s.svc.Process(s.GetContext(), doc.ID))

	got, err := s.GetStores().DocumentRepo.Get(s.GetContext(), doc.ID)
	s.NoError(err)
	s.Equal("MANUAL-7", got.InvoiceNumber)
	s.True(got.TotalAmount.Equal(total))
	s.Equal(issued, *got.IssueDate)
	// blank fields still get filled from extraction
	s.Require().NotNil(got.VATAmount)
	s.True(got.VATAmount.Equal(decimal.RequireFromString("41.99")))
}

func (s *OCRServiceSuite) TestProcessCompletedDocumentIsNoOp() {
	doc := s.uploadDocument()
	s.NoError(s.svc.Process(s.GetContext(), doc.ID))
	s.Equal(1, s.provider.Calls)

	// a redelivered job must not touch the provider again
	s.NoError(s.svc.Process(s.GetContext(), doc.ID))
	s.Equal(1, s.provider.Calls)
}

func (s *OCRServiceSuite) TestProcessFailureMarksDocumentFailed() {
	s.provider.FailuresLeft = 1
	s.provider.Permanent = true

	doc := s.uploadDocument()
	err := s.svc.Process(s.GetContext(), doc.ID)
	s.Error(err)
	s.True(ierr.IsExtraction(err))

	got, repoErr := s.GetStores().DocumentRepo.Get(s.GetContext(), doc.ID)
	s.NoError(repoErr)
	s.Equal(types.OCRStatusFailed, got.OCRStatus)
	s.Equal("no text detected", got.OCRData["error"])
}

func (s *OCRServiceSuite) TestRequeueOnlyFromFailed() {
	doc := s.uploadDocument()

	err := s.svc.Requeue(s.GetContext(), doc.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	s.provider.FailuresLeft = 1
	s.provider.Permanent = true
	s.Error(s.svc.Process(s.GetContext(), doc.ID))

	// the failed document can be requeued even though the original
	// job's key was acquired by a different process
	before := len(s.GetPublisher().ByTopic(queue.QueueOCR.Topic()))
	s.NoError(s.svc.Requeue(s.GetContext(), doc.ID))
	jobs := s.GetPublisher().ByTopic(queue.QueueOCR.Topic())
	s.Len(jobs, before+1)
	s.Equal("ocr-"+doc.ID, jobs[len(jobs)-1].Key)
}

func (s *OCRServiceSuite) TestProcessUnknownDocument() {
	err := s.svc.Process(s.GetContext(), "doc_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
