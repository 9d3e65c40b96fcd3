package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"

	"github.com/segal-ziv/smartbill/internal/cache"
	"github.com/segal-ziv/smartbill/internal/domain/document"
	"github.com/segal-ziv/smartbill/internal/domain/supplier"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/httpclient"
	"github.com/segal-ziv/smartbill/internal/queue"
	"github.com/segal-ziv/smartbill/internal/testutil"
	"github.com/segal-ziv/smartbill/internal/types"
)

type ExportServiceSuite struct {
	testutil.BaseServiceTestSuite
	params ServiceParams
	svc    ExportService
}

func TestExportServiceSuite(t *testing.T) {
	suite.Run(t, new(ExportServiceSuite))
}

func (s *ExportServiceSuite) SetupTest() {
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
	s.svc = NewExportService(s.params)
}

func (s *ExportServiceSuite) seedDocument(invoiceNumber, total string, supplierID *string) {
	amount := decimal.RequireFromString(total)
	issued := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	doc := &document.Document{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DOCUMENT),
		SupplierID:     supplierID,
		InvoiceNumber:  invoiceNumber,
		IssueDate:      &issued,
		TotalAmount:    &amount,
		Currency:       "ILS",
		FileName:       invoiceNumber + ".pdf",
		Source:         types.IngestionSourceGmail,
		DocumentStatus: types.DocumentStatusPending,
		OCRStatus:      types.OCRStatusCompleted,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().DocumentRepo.Create(s.GetContext(), doc))
}

func (s *ExportServiceSuite) TestGenerateBuildsWorkbook() {
	sup := &supplier.Supplier{
		Name:      "Bezeq International Ltd",
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	sup.ID = "sup_bezeq"
	s.Require().NoError(s.GetStores().SupplierRepo.Create(s.GetContext(), sup))

	s.seedDocument("INV-1", "100.50", &sup.ID)
	s.seedDocument("INV-2", "200.00", nil)

	result, err := s.svc.Generate(s.GetContext(), nil)
	s.NoError(err)
	s.Require().NotNil(result)

	s.Equal(2, result.RecordCount)
	s.True(strings.HasSuffix(result.FileName, ".xlsx"))
	s.NotEmpty(result.URL)
	s.True(result.ExpiresAt.After(time.Now()))

	// the uploaded workbook has a header row plus one row per document
	s.Require().Len(s.GetBlobStore().Uploads, 1)
	data, err := s.GetBlobStore().Download(s.GetContext(), s.GetBlobStore().Uploads[0])
	s.Require().NoError(err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	s.Require().NoError(err)
	defer f.Close()

	rows, err := f.GetRows("Documents")
	s.Require().NoError(err)
	s.Require().Len(rows, 3)

	s.Equal("Date", rows[0][0])
	s.Equal("Supplier", rows[0][1])
	s.Equal("Total", rows[0][4])

	byInvoice := map[string][]string{}
	for _, row := range rows[1:] {
		byInvoice[row[3]] = row
	}
	s.Require().Contains(byInvoice, "INV-1")
	s.Equal("2024-03-05", byInvoice["INV-1"][0])
	s.Equal("Bezeq International Ltd", byInvoice["INV-1"][1])
	s.Equal("100.50", byInvoice["INV-1"][4])
	s.Equal("", byInvoice["INV-2"][1])
}

func (s *ExportServiceSuite) TestGenerateEmptyResultStillUploads() {
	result, err := s.svc.Generate(s.GetContext(), nil)
	s.NoError(err)
	s.Equal(0, result.RecordCount)
	s.Len(s.GetBlobStore().Uploads, 1)
}

func (s *ExportServiceSuite) TestGenerateWithoutBlobStore() {
	params := s.params
	params.S3 = nil
	svc := NewExportService(params)

	_, err := svc.Generate(s.GetContext(), nil)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *ExportServiceSuite) TestGenerateRequiresOwner() {
	_, err := s.svc.Generate(s.T().Context(), nil)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *ExportServiceSuite) TestEnqueuePublishesJob() {
	status := types.DocumentStatusPending
	filter := types.NewDefaultDocumentFilter()
	filter.Status = &status

	s.NoError(s.svc.Enqueue(s.GetContext(), &filter))

	jobs := s.GetPublisher().ByTopic(queue.QueueExport.Topic())
	s.Require().Len(jobs, 1)

	var payload queue.ExportJobPayload
	s.Require().NoError(json.Unmarshal(jobs[0].Payload, &payload))
	s.Equal(testutil.TestOwnerID, payload.OwnerID)
	s.NotZero(payload.RequestedAt)
	s.Require().NotNil(payload.Filter.Status)
	s.Equal(status, *payload.Filter.Status)
}
