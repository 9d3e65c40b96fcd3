package supplier

import (
	"strings"

	"github.com/shopspring/decimal"

	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/types"
)

// Supplier is a vendor the user receives invoices from. EmailDomains and
// Keywords drive automatic matching during ingestion and OCR
// reconciliation. TotalDocuments and TotalAmount are display aggregates
// recomputed after document mutations, not transactional counters.
type Supplier struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	TaxID        string   `json:"tax_id,omitempty"`
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Address      string   `json:"address,omitempty"`
	EmailDomains []string `json:"email_domains,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`

	TotalDocuments int             `json:"total_documents"`
	TotalAmount    decimal.Decimal `json:"total_amount"`

	types.BaseModel
}

// Validate validates the supplier
func (s *Supplier) Validate() error {
	if s.Name == "" {
		return ierr.NewError("supplier name is required").
			Mark(ierr.ErrValidation)
	}
	if s.OwnerID == "" {
		return ierr.NewError("supplier must belong to a user").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// MatchesName reports whether the candidate appears as a
// case-insensitive substring of the supplier name.
func (s *Supplier) MatchesName(candidate string) bool {
	if candidate == "" {
		return false
	}
	return strings.Contains(
		strings.ToLower(s.Name),
		strings.ToLower(candidate),
	)
}

// MatchesKeyword reports whether the candidate exactly equals one of the
// supplier's keywords.
func (s *Supplier) MatchesKeyword(candidate string) bool {
	for _, keyword := range s.Keywords {
		if candidate == keyword {
			return true
		}
	}
	return false
}

// MatchesDomain reports whether the given sender domain is one of the
// supplier's known email domains (case-insensitive).
func (s *Supplier) MatchesDomain(domain string) bool {
	if domain == "" {
		return false
	}
	for _, d := range s.EmailDomains {
		if strings.EqualFold(d, domain) {
			return true
		}
	}
	return false
}
