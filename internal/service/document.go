package service

import (
	"context"
	"time"

	"github.com/segal-ziv/smartbill/internal/domain/auditlog"
	"github.com/segal-ziv/smartbill/internal/domain/document"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/types"
)

// DocumentService covers read, update and delete operations on ingested
// documents. Creation happens through IngestionService.
type DocumentService interface {
	Get(ctx context.Context, id string) (*document.Document, error)
	List(ctx context.Context, filter *types.DocumentFilter) ([]*document.Document, error)
	Count(ctx context.Context, filter *types.DocumentFilter) (int, error)
	Update(ctx context.Context, doc *document.Document) (*document.Document, error)
	Delete(ctx context.Context, id string) error

	// GetFileURL returns a presigned download URL for the stored file
	// together with its expiry.
	GetFileURL(ctx context.Context, id string) (string, time.Time, error)
}

type documentService struct {
	ServiceParams
	suppliers SupplierService
}

func NewDocumentService(params ServiceParams, suppliers SupplierService) DocumentService {
	return &documentService{
		ServiceParams: params,
		suppliers:     suppliers,
	}
}

func (s *documentService) Get(ctx context.Context, id string) (*document.Document, error) {
	return s.DocumentRepo.Get(ctx, id)
}

func (s *documentService) List(ctx context.Context, filter *types.DocumentFilter) ([]*document.Document, error) {
	if filter == nil {
		f := types.NewDefaultDocumentFilter()
		filter = &f
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.DocumentRepo.List(ctx, filter)
}

func (s *documentService) Count(ctx context.Context, filter *types.DocumentFilter) (int, error) {
	if filter == nil {
		f := types.NewDefaultDocumentFilter()
		filter = &f
	}
	if err := filter.Validate(); err != nil {
		return 0, err
	}
	return s.DocumentRepo.Count(ctx, filter)
}

func (s *documentService) Update(ctx context.Context, doc *document.Document) (*document.Document, error) {
	if doc == nil || doc.ID == "" {
		return nil, ierr.NewError("document id is required").
			Mark(ierr.ErrValidation)
	}

	existing, err := s.DocumentRepo.Get(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	previousSupplier := existing.SupplierID

	doc.UpdatedAt = time.Now().UTC()
	if err := s.DocumentRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.AuditLogRepo.Create(ctx, auditlog.New(
		doc.OwnerID, "document", doc.ID, types.AuditActionUpdate, nil,
	)); err != nil {
		s.Logger.Errorw("failed to write audit entry", "document_id", doc.ID, "error", err)
	}

	s.recomputeTouchedSuppliers(ctx, previousSupplier, doc.SupplierID)
	return doc, nil
}

// Delete removes the document, its stored file and its supplier's share
// of the aggregate stats.
func (s *documentService) Delete(ctx context.Context, id string) error {
	doc, err := s.DocumentRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.DocumentRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.S3 != nil && doc.StoragePath != "" {
		if err := s.S3.Delete(ctx, doc.StoragePath); err != nil {
			s.Logger.Errorw("failed to delete stored file",
				"document_id", id,
				"storage_path", doc.StoragePath,
				"error", err,
			)
		}
	}

	if err := s.AuditLogRepo.Create(ctx, auditlog.New(
		doc.OwnerID, "document", doc.ID, types.AuditActionDelete,
		map[string]interface{}{"file_name": doc.FileName},
	)); err != nil {
		s.Logger.Errorw("failed to write audit entry", "document_id", id, "error", err)
	}

	s.recomputeTouchedSuppliers(ctx, doc.SupplierID, nil)
	return nil
}

func (s *documentService) GetFileURL(ctx context.Context, id string) (string, time.Time, error) {
	doc, err := s.DocumentRepo.Get(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	if doc.StoragePath == "" {
		return "", time.Time{}, ierr.NewError("document has no stored file").
			WithReportableDetails(map[string]any{"document_id": id}).
			Mark(ierr.ErrNotFound)
	}
	if s.S3 == nil {
		return "", time.Time{}, ierr.NewError("blob storage is not configured").
			WithHint("enable S3 before requesting download links").
			Mark(ierr.ErrInvalidOperation)
	}
	return s.S3.GetPresignedURL(ctx, doc.StoragePath)
}

// recomputeTouchedSuppliers refreshes stats on every supplier whose
// document set changed. Failures are logged; the write already landed.
func (s *documentService) recomputeTouchedSuppliers(ctx context.Context, before, after *string) {
	touched := map[string]struct{}{}
	if before != nil {
		touched[*before] = struct{}{}
	}
	if after != nil {
		touched[*after] = struct{}{}
	}
	for supplierID := range touched {
		if err := s.suppliers.RecomputeStats(ctx, supplierID); err != nil {
			s.Logger.Errorw("failed to recompute supplier stats",
				"supplier_id", supplierID,
				"error", err,
			)
		}
	}
}
