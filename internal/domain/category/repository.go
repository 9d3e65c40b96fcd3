package category

import "context"

// Repository defines the interface for category operations
type Repository interface {
	Create(ctx context.Context, category *Category) error
	Get(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id string) error
}
