package document

import (
	"context"

	"github.com/segal-ziv/smartbill/internal/types"
)

// Repository defines the interface for document operations
type Repository interface {
	Create(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context, filter *types.DocumentFilter) ([]*Document, error)
	Count(ctx context.Context, filter *types.DocumentFilter) (int, error)
	Update(ctx context.Context, doc *Document) error
	Delete(ctx context.Context, id string) error

	// ListBySupplier returns every active document linked to the supplier,
	// used for aggregate stats recomputation.
	ListBySupplier(ctx context.Context, supplierID string) ([]*Document, error)
}
