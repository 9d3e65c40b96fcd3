package dto

import (
	"github.com/segal-ziv/smartbill/internal/domain/supplier"
)

// CreateSupplierRequest carries the fields a user sets when creating a
// supplier.
type CreateSupplierRequest struct {
	Name         string   `json:"name" binding:"required"`
	TaxID        string   `json:"tax_id,omitempty"`
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Address      string   `json:"address,omitempty"`
	EmailDomains []string `json:"email_domains,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

func (r *CreateSupplierRequest) ToSupplier() *supplier.Supplier {
	return &supplier.Supplier{
		Name:         r.Name,
		TaxID:        r.TaxID,
		Email:        r.Email,
		Phone:        r.Phone,
		Address:      r.Address,
		EmailDomains: r.EmailDomains,
		Keywords:     r.Keywords,
	}
}

// UpdateSupplierRequest carries the editable supplier fields. Nil slices
// leave the stored value untouched.
type UpdateSupplierRequest struct {
	Name         *string  `json:"name,omitempty"`
	TaxID        *string  `json:"tax_id,omitempty"`
	Email        *string  `json:"email,omitempty"`
	Phone        *string  `json:"phone,omitempty"`
	Address      *string  `json:"address,omitempty"`
	EmailDomains []string `json:"email_domains,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

func (r *UpdateSupplierRequest) Apply(sup *supplier.Supplier) {
	if r.Name != nil {
		sup.Name = *r.Name
	}
	if r.TaxID != nil {
		sup.TaxID = *r.TaxID
	}
	if r.Email != nil {
		sup.Email = *r.Email
	}
	if r.Phone != nil {
		sup.Phone = *r.Phone
	}
	if r.Address != nil {
		sup.Address = *r.Address
	}
	if r.EmailDomains != nil {
		sup.EmailDomains = r.EmailDomains
	}
	if r.Keywords != nil {
		sup.Keywords = r.Keywords
	}
}

// ListSuppliersResponse wraps the owner's suppliers.
type ListSuppliersResponse struct {
	Items []*supplier.Supplier `json:"items"`
	Total int                  `json:"total"`
}
