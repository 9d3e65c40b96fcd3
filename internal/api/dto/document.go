package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segal-ziv/smartbill/internal/domain/document"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/types"
)

// UpdateDocumentRequest carries the user-editable document fields. Nil
// fields are left untouched.
type UpdateDocumentRequest struct {
	SupplierID     *string          `json:"supplier_id,omitempty"`
	CategoryID     *string          `json:"category_id,omitempty"`
	InvoiceNumber  *string          `json:"invoice_number,omitempty"`
	IssueDate      *time.Time       `json:"issue_date,omitempty"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	TotalAmount    *decimal.Decimal `json:"total_amount,omitempty"`
	VATAmount      *decimal.Decimal `json:"vat_amount,omitempty"`
	Currency       *string          `json:"currency,omitempty"`
	DocumentStatus *string          `json:"status,omitempty"`
	Tags           []string         `json:"tags,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
}

// Apply copies the set fields onto the document.
func (r *UpdateDocumentRequest) Apply(doc *document.Document) error {
	if r.SupplierID != nil {
		if *r.SupplierID == "" {
			doc.SupplierID = nil
		} else {
			doc.SupplierID = r.SupplierID
		}
	}
	if r.CategoryID != nil {
		if *r.CategoryID == "" {
			doc.CategoryID = nil
		} else {
			doc.CategoryID = r.CategoryID
		}
	}
	if r.InvoiceNumber != nil {
		doc.InvoiceNumber = *r.InvoiceNumber
	}
	if r.IssueDate != nil {
		doc.IssueDate = r.IssueDate
	}
	if r.DueDate != nil {
		doc.DueDate = r.DueDate
	}
	if r.TotalAmount != nil {
		doc.TotalAmount = r.TotalAmount
	}
	if r.VATAmount != nil {
		doc.VATAmount = r.VATAmount
	}
	if r.Currency != nil {
		doc.Currency = *r.Currency
	}
	if r.DocumentStatus != nil {
		status := types.DocumentStatus(*r.DocumentStatus)
		if err := status.Validate(); err != nil {
			return err
		}
		doc.DocumentStatus = status
	}
	if r.Tags != nil {
		doc.Tags = r.Tags
	}
	if r.Notes != nil {
		doc.Notes = *r.Notes
	}
	return nil
}

// DocumentResponse is the API shape of a document.
type DocumentResponse struct {
	*document.Document
}

// ListDocumentsResponse wraps a page of documents with the total count.
type ListDocumentsResponse struct {
	Items []*document.Document `json:"items"`
	Total int                  `json:"total"`
}

// FileURLResponse carries a presigned download link.
type FileURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func ToDocumentResponse(doc *document.Document) *DocumentResponse {
	return &DocumentResponse{Document: doc}
}

// ValidateDocumentID guards path parameters.
func ValidateDocumentID(id string) error {
	if id == "" {
		return ierr.NewError("document id is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}
