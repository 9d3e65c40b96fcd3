package supplier

import "context"

// Repository defines the interface for supplier operations.
// List returns the owner's suppliers sorted by name ascending so the
// first-match-wins reconciliation is deterministic.
type Repository interface {
	Create(ctx context.Context, supplier *Supplier) error
	Get(ctx context.Context, id string) (*Supplier, error)
	List(ctx context.Context) ([]*Supplier, error)
	Update(ctx context.Context, supplier *Supplier) error
	Delete(ctx context.Context, id string) error

	// FindByEmailDomain returns the first supplier whose EmailDomains
	// contains the given domain, or nil when none matches.
	FindByEmailDomain(ctx context.Context, domain string) (*Supplier, error)
}
