package document

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/types"
)

// Document is the canonical record for an ingested invoice file. It is
// created once by the ingestion coordinator (or manual entry) and then
// mutated by the OCR engine and by user edits.
type Document struct {
	ID            string           `json:"id"`
	SupplierID    *string          `json:"supplier_id,omitempty"`
	CategoryID    *string          `json:"category_id,omitempty"`
	InvoiceNumber string           `json:"invoice_number,omitempty"`
	IssueDate     *time.Time       `json:"issue_date,omitempty"`
	DueDate       *time.Time       `json:"due_date,omitempty"`
	TotalAmount   *decimal.Decimal `json:"total_amount,omitempty"`
	VATAmount     *decimal.Decimal `json:"vat_amount,omitempty"`
	Currency      string           `json:"currency,omitempty"`

	FileName    string `json:"file_name"`
	StoragePath string `json:"storage_path"`
	FileSize    int64  `json:"file_size"`
	MimeType    string `json:"mime_type"`

	Source         types.IngestionSource  `json:"source"`
	SourceMetadata map[string]interface{} `json:"source_metadata,omitempty"`

	DocumentStatus types.DocumentStatus `json:"document_status"`

	OCRStatus     types.OCRStatus        `json:"ocr_status"`
	OCRData       map[string]interface{} `json:"ocr_data,omitempty"`
	OCRConfidence *float64               `json:"ocr_confidence,omitempty"`

	Tags  []string `json:"tags,omitempty"`
	Notes string   `json:"notes,omitempty"`

	types.BaseModel
}

// Validate validates the document
func (d *Document) Validate() error {
	if d.OwnerID == "" {
		return ierr.NewError("document must belong to a user").
			Mark(ierr.ErrValidation)
	}
	if err := d.Source.Validate(); err != nil {
		return err
	}
	if err := d.DocumentStatus.Validate(); err != nil {
		return err
	}
	if err := d.OCRStatus.Validate(); err != nil {
		return err
	}
	if d.TotalAmount != nil && d.TotalAmount.IsNegative() {
		return ierr.NewError("total amount cannot be negative").
			WithReportableDetails(map[string]any{
				"total_amount": d.TotalAmount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
