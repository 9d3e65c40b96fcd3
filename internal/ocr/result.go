package ocr

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segal-ziv/smartbill/internal/types"
)

// SupplierCandidate is the extracted issuer guess with its heuristic
// confidence.
type SupplierCandidate struct {
	Name       string  `json:"name"`
	TaxID      string  `json:"tax_id,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Result is the structured extraction embedded into Document.OCRData on
// completion.
type Result struct {
	Supplier      *SupplierCandidate `json:"supplier,omitempty"`
	InvoiceNumber string             `json:"invoice_number,omitempty"`
	IssueDate     *time.Time         `json:"issue_date,omitempty"`
	TotalAmount   *decimal.Decimal   `json:"total_amount,omitempty"`
	VATAmount     *decimal.Decimal   `json:"vat_amount,omitempty"`
	LineItems     []LineItem         `json:"line_items"`
	Confidence    float64            `json:"confidence"`
	RawText       string             `json:"raw_text,omitempty"`
	Provider      types.OCRProvider  `json:"provider,omitempty"`
	ProcessedAt   time.Time          `json:"processed_at"`
}

// LineItem is a single invoice line. Line-item extraction is not
// attempted by the current heuristics; the slice stays empty.
type LineItem struct {
	Description string           `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

// ToMap flattens the result for storage in the document's opaque
// ocr_data field.
func (r *Result) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"confidence":   r.Confidence,
		"line_items":   r.LineItems,
		"provider":     string(r.Provider),
		"processed_at": r.ProcessedAt.Format(time.RFC3339),
	}
	if r.Supplier != nil {
		m["supplier"] = map[string]interface{}{
			"name":       r.Supplier.Name,
			"tax_id":     r.Supplier.TaxID,
			"confidence": r.Supplier.Confidence,
		}
	}
	if r.InvoiceNumber != "" {
		m["invoice_number"] = r.InvoiceNumber
	}
	if r.IssueDate != nil {
		m["issue_date"] = r.IssueDate.Format("2006-01-02")
	}
	if r.TotalAmount != nil {
		m["total_amount"] = r.TotalAmount.String()
	}
	if r.VATAmount != nil {
		m["vat_amount"] = r.VATAmount.String()
	}
	if r.RawText != "" {
		m["raw_text"] = r.RawText
	}
	return m
}
