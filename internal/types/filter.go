package types

import (
	"time"

	"github.com/samber/lo"
)

const (
	FilterDefaultLimit  = 50
	FilterMaxLimit      = 500
	FilterDefaultOffset = 0
	FilterDefaultOrder  = "desc"
)

// QueryFilter carries common pagination and ordering fields.
type QueryFilter struct {
	Limit  *int    `json:"limit,omitempty" form:"limit" validate:"omitempty,min=1,max=500"`
	Offset *int    `json:"offset,omitempty" form:"offset" validate:"omitempty,min=0"`
	Order  *string `json:"order,omitempty" form:"order" validate:"omitempty,oneof=asc desc"`
}

func NewDefaultQueryFilter() QueryFilter {
	return QueryFilter{
		Limit:  lo.ToPtr(FilterDefaultLimit),
		Offset: lo.ToPtr(FilterDefaultOffset),
		Order:  lo.ToPtr(FilterDefaultOrder),
	}
}

func (f QueryFilter) GetLimit() int {
	if f.Limit == nil {
		return FilterDefaultLimit
	}
	return *f.Limit
}

func (f QueryFilter) GetOffset() int {
	if f.Offset == nil {
		return FilterDefaultOffset
	}
	return *f.Offset
}

func (f QueryFilter) GetOrder() string {
	if f.Order == nil {
		return FilterDefaultOrder
	}
	return *f.Order
}

// DocumentFilter narrows document listing and export queries.
type DocumentFilter struct {
	QueryFilter
	Status     *DocumentStatus  `json:"status,omitempty" form:"status"`
	OCRStatus  *OCRStatus       `json:"ocr_status,omitempty" form:"ocr_status"`
	Source     *IngestionSource `json:"source,omitempty" form:"source"`
	SupplierID *string          `json:"supplier_id,omitempty" form:"supplier_id"`
	CategoryID *string          `json:"category_id,omitempty" form:"category_id"`
	StartDate  *time.Time       `json:"start_date,omitempty" form:"start_date"`
	EndDate    *time.Time       `json:"end_date,omitempty" form:"end_date"`
}

func NewDefaultDocumentFilter() DocumentFilter {
	return DocumentFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f DocumentFilter) Validate() error {
	if f.Status != nil {
		if err := f.Status.Validate(); err != nil {
			return err
		}
	}
	if f.OCRStatus != nil {
		if err := f.OCRStatus.Validate(); err != nil {
			return err
		}
	}
	if f.Source != nil {
		if err := f.Source.Validate(); err != nil {
			return err
		}
	}
	return nil
}
