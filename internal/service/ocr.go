package service

import (
	"context"
	"time"

	"github.com/segal-ziv/smartbill/internal/domain/auditlog"
	"github.com/segal-ziv/smartbill/internal/domain/document"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/idempotency"
	"github.com/segal-ziv/smartbill/internal/ocr"
	"github.com/segal-ziv/smartbill/internal/queue"
	"github.com/segal-ziv/smartbill/internal/types"
)

// OCRService runs the extraction pipeline for a single document and
// owns the document's ocr-status state machine.
type OCRService interface {
	// Process is the worker entry point: download, recognize, parse,
	// reconcile, persist. Re-running it on a COMPLETED document is a
	// no-op.
	Process(ctx context.Context, documentID string) error

	// Requeue re-enqueues a FAILED document for another extraction
	// attempt. This is the only path back from FAILED.
	Requeue(ctx context.Context, documentID string) error
}

type ocrService struct {
	ServiceParams
	suppliers SupplierService
}

func NewOCRService(params ServiceParams, suppliers SupplierService) OCRService {
	return &ocrService{
		ServiceParams: params,
		suppliers:     suppliers,
	}
}

func (s *ocrService) Process(ctx context.Context, documentID string) error {
	doc, err := s.DocumentRepo.Get(ctx, documentID)
	if err != nil {
		return err
	}
	ctx = types.SetOwnerID(ctx, doc.OwnerID)

	// A completed document is never reprocessed; this keeps retries and
	// duplicate deliveries from clobbering user edits.
	if doc.OCRStatus == types.OCRStatusCompleted {
		s.Logger.Infow("skipping ocr for completed document", "document_id", doc.ID)
		return nil
	}

	if err := s.markProcessing(ctx, doc); err != nil {
		return err
	}

	result, err := s.extract(ctx, doc)
	if err != nil {
		return s.markFailed(ctx, doc, err)
	}

	if err := s.complete(ctx, doc, result); err != nil {
		return s.markFailed(ctx, doc, err)
	}

	return nil
}

func (s *ocrService) Requeue(ctx context.Context, documentID string) error {
	doc, err := s.DocumentRepo.Get(ctx, documentID)
	if err != nil {
		return err
	}

	if doc.OCRStatus != types.OCRStatusFailed {
		return ierr.NewError("only failed documents can be requeued").
			WithReportableDetails(map[string]any{
				"document_id": doc.ID,
				"ocr_status":  doc.OCRStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	return s.Enqueuer.Enqueue(ctx, queue.QueueOCR, idempotency.OCRJobKey(doc.ID), queue.OCRJobPayload{
		DocumentID: doc.ID,
		OwnerID:    doc.OwnerID,
	})
}

func (s *ocrService) markProcessing(ctx context.Context, doc *document.Document) error {
	if doc.OCRStatus == types.OCRStatusProcessing {
		// Redelivery of an interrupted run; continue in place.
		return nil
	}

	if !doc.OCRStatus.CanTransitionTo(types.OCRStatusProcessing) {
		return ierr.NewError("invalid ocr status transition").
			WithReportableDetails(map[string]any{
				"document_id": doc.ID,
				"from":        doc.OCRStatus,
				"to":          types.OCRStatusProcessing,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	doc.OCRStatus = types.OCRStatusProcessing
	doc.UpdatedAt = time.Now().UTC()
	return s.DocumentRepo.Update(ctx, doc)
}

func (s *ocrService) extract(ctx context.Context, doc *document.Document) (*ocr.Result, error) {
	data, err := s.S3.Download(ctx, doc.StoragePath)
	if err != nil {
		return nil, err
	}

	recognition, err := s.OCRProvider.Recognize(ctx, data, doc.MimeType)
	if err != nil {
		return nil, err
	}

	result := ocr.Parse(recognition.FullText)
	result.RawText = recognition.FullText
	result.Provider = s.OCRProvider.Name()
	result.Confidence = recognition.Confidence

	return result, nil
}

// complete writes the extraction into the document. Fields the user
// already set keep their values; OCR only fills blanks.
func (s *ocrService) complete(ctx context.Context, doc *document.Document, result *ocr.Result) error {
	if doc.InvoiceNumber == "" && result.InvoiceNumber != "" {
		doc.InvoiceNumber = result.InvoiceNumber
	}
	if doc.IssueDate == nil && result.IssueDate != nil {
		doc.IssueDate = result.IssueDate
	}
	if doc.TotalAmount == nil && result.TotalAmount != nil && !result.TotalAmount.IsNegative() {
		doc.TotalAmount = result.TotalAmount
	}
	if doc.VATAmount == nil && result.VATAmount != nil {
		doc.VATAmount = result.VATAmount
	}

	var matchedSupplierID string
	if doc.SupplierID == nil && result.Supplier != nil {
		matched, err := s.suppliers.Reconcile(ctx, result.Supplier.Name)
		if err != nil {
			return err
		}
		if matched != nil {
			doc.SupplierID = &matched.ID
			matchedSupplierID = matched.ID
		}
	}

	doc.OCRStatus = types.OCRStatusCompleted
	doc.OCRData = result.ToMap()
	confidence := result.Confidence
	doc.OCRConfidence = &confidence
	doc.UpdatedAt = time.Now().UTC()

	if err := s.DocumentRepo.Update(ctx, doc); err != nil {
		return err
	}

	if err := s.AuditLogRepo.Create(ctx, auditlog.New(
		doc.OwnerID, "document", doc.ID, types.AuditActionOCRProcess,
		map[string]interface{}{
			"provider":       string(result.Provider),
			"confidence":     result.Confidence,
			"invoice_number": result.InvoiceNumber,
			"supplier_id":    matchedSupplierID,
		},
	)); err != nil {
		s.Logger.Errorw("failed to write audit entry", "document_id", doc.ID, "error", err)
	}

	if doc.SupplierID != nil {
		if err := s.suppliers.RecomputeStats(ctx, *doc.SupplierID); err != nil {
			s.Logger.Errorw("failed to recompute supplier stats",
				"supplier_id", *doc.SupplierID,
				"error", err,
			)
		}
	}

	s.Logger.Infow("ocr extraction completed",
		"document_id", doc.ID,
		"confidence", result.Confidence,
		"supplier_matched", doc.SupplierID != nil,
	)
	return nil
}

// markFailed records the failure on the document and re-raises the
// error so the queue layer applies its retry policy.
func (s *ocrService) markFailed(ctx context.Context, doc *document.Document, cause error) error {
	doc.OCRStatus = types.OCRStatusFailed
	if doc.OCRData == nil {
		doc.OCRData = map[string]interface{}{}
	}
	doc.OCRData["error"] = cause.Error()
	doc.UpdatedAt = time.Now().UTC()

	if err := s.DocumentRepo.Update(ctx, doc); err != nil {
		s.Logger.Errorw("failed to record ocr failure",
			"document_id", doc.ID,
			"error", err,
		)
	}

	s.Logger.Errorw("ocr extraction failed",
		"document_id", doc.ID,
		"error", cause,
	)
	return cause
}
