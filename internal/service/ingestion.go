package service

import (
	"context"

	"github.com/segal-ziv/smartbill/internal/domain/auditlog"
	"github.com/segal-ziv/smartbill/internal/domain/document"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/idempotency"
	"github.com/segal-ziv/smartbill/internal/ingestion"
	"github.com/segal-ziv/smartbill/internal/queue"
	"github.com/segal-ziv/smartbill/internal/s3"
	"github.com/segal-ziv/smartbill/internal/types"
)

// IngestionService is the single entry point turning a RawIntake into a
// persisted Document plus one enqueued OCR job.
type IngestionService interface {
	ingestion.Ingester

	// Upload validates a direct upload and ingests it synchronously.
	Upload(ctx context.Context, fileName, mimeType string, data []byte) (*document.Document, error)
}

type ingestionService struct {
	ServiceParams
}

func NewIngestionService(params ServiceParams) IngestionService {
	return &ingestionService{ServiceParams: params}
}

// Upload implements the direct-upload adapter: allow-list and size
// checks run before any storage write.
func (s *ingestionService) Upload(ctx context.Context, fileName, mimeType string, data []byte) (*document.Document, error) {
	if err := ingestion.ValidateUpload(fileName, data, s.Config.Upload.MaxSizeBytes); err != nil {
		return nil, err
	}

	if mimeType == "" {
		mimeType = ingestion.ContentTypeForExtension(fileName)
	}

	return s.Ingest(ctx, &ingestion.RawIntake{
		Source:   types.IngestionSourceManual,
		OwnerID:  types.GetOwnerID(ctx),
		FileName: fileName,
		MimeType: mimeType,
		Data:     data,
	})
}

// Ingest uploads the raw bytes under an owner-scoped path, persists the
// Document with ocr status PENDING and enqueues the OCR job keyed by
// the document id. Storage upload and record insert are not
// transactional: a failure in between leaves an orphaned blob.
func (s *ingestionService) Ingest(ctx context.Context, intake *ingestion.RawIntake) (*document.Document, error) {
	if intake.OwnerID == "" {
		intake.OwnerID = types.GetOwnerID(ctx)
	}
	if intake.OwnerID == "" {
		return nil, ierr.NewError("intake has no owning user").
			Mark(ierr.ErrValidation)
	}
	ctx = types.SetOwnerID(ctx, intake.OwnerID)

	contentType := intake.MimeType
	if contentType == "" {
		contentType = ingestion.ContentTypeForExtension(intake.FileName)
	}

	if s.S3 == nil {
		return nil, ierr.NewError("blob storage is not configured").
			WithHint("enable S3 before ingesting documents").
			Mark(ierr.ErrInvalidOperation)
	}

	storagePath, err := s.S3.Upload(ctx, s3.NewObject(intake.OwnerID, intake.FileName, contentType, intake.Data))
	if err != nil {
		return nil, err
	}

	doc := &document.Document{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DOCUMENT),
		FileName:       intake.FileName,
		StoragePath:    storagePath,
		FileSize:       int64(len(intake.Data)),
		MimeType:       contentType,
		Source:         intake.Source,
		SourceMetadata: intake.Provenance,
		SupplierID:     intake.SupplierID,
		DocumentStatus: types.DocumentStatusPending,
		OCRStatus:      types.OCRStatusPending,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	doc.OwnerID = intake.OwnerID

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	if err := s.DocumentRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.AuditLogRepo.Create(ctx, auditlog.New(
		intake.OwnerID, "document", doc.ID, types.AuditActionCreate,
		map[string]interface{}{
			"source":    string(intake.Source),
			"file_name": intake.FileName,
		},
	)); err != nil {
		s.Logger.Errorw("failed to write audit entry", "document_id", doc.ID, "error", err)
	}

	if err := s.enqueueOCR(ctx, doc); err != nil {
		return nil, err
	}

	s.Logger.Infow("document ingested",
		"document_id", doc.ID,
		"source", doc.Source,
		"file_name", doc.FileName,
		"size", doc.FileSize,
	)
	return doc, nil
}

func (s *ingestionService) enqueueOCR(ctx context.Context, doc *document.Document) error {
	return s.Enqueuer.Enqueue(ctx, queue.QueueOCR, idempotency.OCRJobKey(doc.ID), queue.OCRJobPayload{
		DocumentID: doc.ID,
		OwnerID:    doc.OwnerID,
	})
}
