package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/segal-ziv/smartbill/internal/cache"
	"github.com/segal-ziv/smartbill/internal/config"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/httpclient"
	"github.com/segal-ziv/smartbill/internal/ingestion"
	"github.com/segal-ziv/smartbill/internal/queue"
	"github.com/segal-ziv/smartbill/internal/testutil"
	"github.com/segal-ziv/smartbill/internal/types"
)

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 1, 2, 3, 4}

type IngestionServiceSuite struct {
	testutil.BaseServiceTestSuite
	params ServiceParams
	svc    IngestionService
}

func TestIngestionServiceSuite(t *testing.T) {
	suite.Run(t, new(IngestionServiceSuite))
}

func (s *IngestionServiceSuite) SetupTest() {
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
	s.svc = NewIngestionService(s.params)
}

func (s *IngestionServiceSuite) TestUploadCreatesDocumentAndSchedulesOCR() {
	doc, err := s.svc.Upload(s.GetContext(), "invoice.png", "image/png", pngBytes)
	s.NoError(err)
	s.NotNil(doc)

	s.Equal(testutil.TestOwnerID, doc.OwnerID)
	s.Equal(types.IngestionSourceManual, doc.Source)
	s.Equal(types.DocumentStatusPending, doc.DocumentStatus)
	s.Equal(types.OCRStatusPending, doc.OCRStatus)
	s.Equal("invoice.png", doc.FileName)
	s.NotEmpty(doc.StoragePath)

	// the file bytes landed in blob storage
	stored, err := s.GetBlobStore().Download(s.GetContext(), doc.StoragePath)
	s.NoError(err)
	s.Equal(pngBytes, stored)

	// exactly one OCR job, keyed by the document
	jobs := s.GetPublisher().ByTopic(queue.QueueOCR.Topic())
	s.Len(jobs, 1)
	s.Equal("ocr-"+doc.ID, jobs[0].Key)

	var payload queue.OCRJobPayload
	s.NoError(json.Unmarshal(jobs[0].Payload, &payload))
	s.Equal(doc.ID, payload.DocumentID)
	s.Equal(doc.OwnerID, payload.OwnerID)
}

func (s *IngestionServiceSuite) TestUploadRejectsUnsupportedExtension() {
	_, err := s.svc.Upload(s.GetContext(), "invoice.exe", "application/octet-stream", pngBytes)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	// nothing was stored or scheduled
	s.Empty(s.GetBlobStore().Uploads)
	s.Empty(s.GetPublisher().Messages)
}

func (s *IngestionServiceSuite) TestUploadRejectsOversizedFile() {
	s.GetConfig().Upload.MaxSizeBytes = 4
	defer func() { s.GetConfig().Upload.MaxSizeBytes = config.DefaultMaxUploadBytes }()

	_, err := s.svc.Upload(s.GetContext(), "invoice.png", "image/png", pngBytes)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *IngestionServiceSuite) TestIngestRequiresOwner() {
	_, err := s.svc.Ingest(s.T().Context(), &ingestion.RawIntake{
		Source:   types.IngestionSourceWhatsApp,
		FileName: "media.jpg",
		Data:     pngBytes,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *IngestionServiceSuite) TestIngestKeepsAdapterSupplierMatch() {
	supplierID := "sup_mail"
	doc, err := s.svc.Ingest(s.GetContext(), &ingestion.RawIntake{
		Source:     types.IngestionSourceGmail,
		FileName:   "invoice.pdf",
		Data:       []byte("%PDF-1.4 test"),
		SupplierID: &supplierID,
		Provenance: map[string]interface{}{"message_id": "m1"},
	})
	s.NoError(err)
	s.NotNil(doc.SupplierID)
	s.Equal(supplierID, *doc.SupplierID)
	s.Equal(types.IngestionSourceGmail, doc.Source)
	s.Equal("m1", doc.SourceMetadata["message_id"])
}

func (s *IngestionServiceSuite) TestRepeatedEnqueueCarriesSameKey() {
	doc, err := s.svc.Upload(s.GetContext(), "invoice.png", "image/png", pngBytes)
	s.NoError(err)

	// a re-enqueue publishes again; both deliveries carry the document
	// key so the consumer can collapse them
	err = s.GetEnqueuer().Enqueue(s.GetContext(), queue.QueueOCR, "ocr-"+doc.ID, queue.OCRJobPayload{
		DocumentID: doc.ID,
		OwnerID:    doc.OwnerID,
	})
	s.NoError(err)

	jobs := s.GetPublisher().ByTopic(queue.QueueOCR.Topic())
	s.Require().Len(jobs, 2)
	s.Equal(jobs[0].Key, jobs[1].Key)
}
