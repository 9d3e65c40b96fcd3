package category

import (
	"github.com/shopspring/decimal"

	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/types"
)

// Category is a user-defined expense bucket documents get filed under.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`

	TotalDocuments int             `json:"total_documents"`
	TotalAmount    decimal.Decimal `json:"total_amount"`

	types.BaseModel
}

func (c *Category) Validate() error {
	if c.Name == "" {
		return ierr.NewError("category name is required").
			Mark(ierr.ErrValidation)
	}
	if c.OwnerID == "" {
		return ierr.NewError("category must belong to a user").
			Mark(ierr.ErrValidation)
	}
	return nil
}
