package settings

import "context"

// Repository defines the interface for settings operations
type Repository interface {
	Create(ctx context.Context, settings *Settings) error
	GetByOwner(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, settings *Settings) error

	// FindByWhatsAppPhoneNumberID resolves the owning user of an inbound
	// webhook delivery. Runs outside any user context.
	FindByWhatsAppPhoneNumberID(ctx context.Context, phoneNumberID string) (*Settings, error)
}
