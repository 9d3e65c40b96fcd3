package dto

import (
	"github.com/segal-ziv/smartbill/internal/domain/category"
)

// CreateCategoryRequest carries the fields for a new expense category.
type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color,omitempty"`
}

func (r *CreateCategoryRequest) ToCategory() *category.Category {
	return &category.Category{
		Name:  r.Name,
		Color: r.Color,
	}
}

// UpdateCategoryRequest carries the editable category fields.
type UpdateCategoryRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

func (r *UpdateCategoryRequest) Apply(cat *category.Category) {
	if r.Name != nil {
		cat.Name = *r.Name
	}
	if r.Color != nil {
		cat.Color = *r.Color
	}
}

// ListCategoriesResponse wraps the owner's categories.
type ListCategoriesResponse struct {
	Items []*category.Category `json:"items"`
	Total int                  `json:"total"`
}
