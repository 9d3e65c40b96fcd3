package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/segal-ziv/smartbill/internal/domain/auditlog"
	"github.com/segal-ziv/smartbill/internal/domain/document"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/idempotency"
	"github.com/segal-ziv/smartbill/internal/queue"
	"github.com/segal-ziv/smartbill/internal/s3"
	"github.com/segal-ziv/smartbill/internal/types"
)

const exportSheetName = "Documents"

// ExportResult describes a generated spreadsheet: where to fetch it and
// how many rows made it in.
type ExportResult struct {
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
	RecordCount int       `json:"record_count"`
	FileName    string    `json:"file_name"`
}

// ExportService builds Excel exports of the owner's documents.
type ExportService interface {
	// Enqueue schedules an export job for async generation.
	Enqueue(ctx context.Context, filter *types.DocumentFilter) error

	// Generate builds the spreadsheet synchronously, uploads it and
	// returns a presigned download link.
	Generate(ctx context.Context, filter *types.DocumentFilter) (*ExportResult, error)
}

type exportService struct {
	ServiceParams
}

func NewExportService(params ServiceParams) ExportService {
	return &exportService{ServiceParams: params}
}

func (s *exportService) Enqueue(ctx context.Context, filter *types.DocumentFilter) error {
	ownerID := types.GetOwnerID(ctx)
	if ownerID == "" {
		return ierr.NewError("owner is required for export").
			Mark(ierr.ErrValidation)
	}

	if filter == nil {
		f := types.NewDefaultDocumentFilter()
		filter = &f
	}
	if err := filter.Validate(); err != nil {
		return err
	}

	requestedAt := time.Now().UTC().Unix()
	return s.Enqueuer.Enqueue(ctx, queue.QueueExport,
		idempotency.ExportJobKey(ownerID, requestedAt),
		queue.ExportJobPayload{
			OwnerID:     ownerID,
			RequestedAt: requestedAt,
			Filter:      *filter,
		})
}

func (s *exportService) Generate(ctx context.Context, filter *types.DocumentFilter) (*ExportResult, error) {
	ownerID := types.GetOwnerID(ctx)
	if ownerID == "" {
		return nil, ierr.NewError("owner is required for export").
			Mark(ierr.ErrValidation)
	}

	if filter == nil {
		f := types.NewDefaultDocumentFilter()
		filter = &f
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	if s.S3 == nil {
		return nil, ierr.NewError("blob storage is not configured").
			WithHint("enable S3 before generating exports").
			Mark(ierr.ErrInvalidOperation)
	}

	// Exports are not paginated; pull up to the hard cap.
	limit := types.FilterMaxLimit
	filter.Limit = &limit

	docs, err := s.DocumentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	supplierNames, err := s.supplierNames(ctx)
	if err != nil {
		return nil, err
	}
	categoryNames, err := s.categoryNames(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.buildWorkbook(docs, supplierNames, categoryNames)
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("documents-%s.xlsx", time.Now().UTC().Format("2006-01-02-150405"))
	storagePath, err := s.S3.Upload(ctx, s3.NewObject(
		ownerID,
		fileName,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		data,
	))
	if err != nil {
		return nil, err
	}

	url, expiresAt, err := s.S3.GetPresignedURL(ctx, storagePath)
	if err != nil {
		return nil, err
	}

	if err := s.AuditLogRepo.Create(ctx, auditlog.New(
		ownerID, "export", storagePath, types.AuditActionExport,
		map[string]interface{}{"record_count": len(docs), "file_name": fileName},
	)); err != nil {
		s.Logger.Errorw("failed to write audit entry", "owner_id", ownerID, "error", err)
	}

	s.Logger.Infow("export generated",
		"owner_id", ownerID,
		"record_count", len(docs),
		"file_name", fileName,
	)

	return &ExportResult{
		URL:         url,
		ExpiresAt:   expiresAt,
		RecordCount: len(docs),
		FileName:    fileName,
	}, nil
}

func (s *exportService) buildWorkbook(docs []*document.Document, supplierNames, categoryNames map[string]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to create export sheet").
			Mark(ierr.ErrSystem)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Date", "Supplier", "Category", "Invoice Number",
		"Total", "VAT", "Currency", "Status", "Source", "File Name",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheetName, cell, h); err != nil {
			return nil, ierr.WithError(err).
				WithHint("failed to write export header").
				Mark(ierr.ErrSystem)
		}
	}

	for rowIdx, doc := range docs {
		row := []interface{}{
			formatDate(doc.IssueDate),
			lookupName(supplierNames, doc.SupplierID),
			lookupName(categoryNames, doc.CategoryID),
			doc.InvoiceNumber,
			decimalString(doc.TotalAmount),
			decimalString(doc.VATAmount),
			doc.Currency,
			string(doc.DocumentStatus),
			string(doc.Source),
			doc.FileName,
		}
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
				return nil, ierr.WithError(err).
					WithHint("failed to write export row").
					Mark(ierr.ErrSystem)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to serialize export workbook").
			Mark(ierr.ErrSystem)
	}
	return buf.Bytes(), nil
}

func (s *exportService) supplierNames(ctx context.Context) (map[string]string, error) {
	suppliers, err := s.SupplierRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(suppliers))
	for _, sp := range suppliers {
		names[sp.ID] = sp.Name
	}
	return names, nil
}

func (s *exportService) categoryNames(ctx context.Context) (map[string]string, error) {
	categories, err := s.CategoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func lookupName(names map[string]string, id *string) string {
	if id == nil {
		return ""
	}
	return names[*id]
}

func decimalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}
