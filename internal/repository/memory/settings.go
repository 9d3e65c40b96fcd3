package memory

import (
	"context"
	"sync"

	"github.com/segal-ziv/smartbill/internal/domain/settings"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/types"
)

// settingsStore keys settings by owner; each user has exactly one
// record.
type settingsStore struct {
	mu      sync.RWMutex
	byOwner map[string]*settings.Settings
}

func NewSettingsRepository() settings.Repository {
	return &settingsStore{byOwner: make(map[string]*settings.Settings)}
}

func (s *settingsStore) Create(ctx context.Context, record *settings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byOwner[record.OwnerID]; exists {
		return ierr.NewError("settings already exist for user").
			WithReportableDetails(map[string]any{"owner_id": record.OwnerID}).
			Mark(ierr.ErrAlreadyExists)
	}

	copied := *record
	s.byOwner[record.OwnerID] = &copied
	return nil
}

func (s *settingsStore) GetByOwner(ctx context.Context) (*settings.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ownerID := types.GetOwnerID(ctx)
	record, ok := s.byOwner[ownerID]
	if !ok {
		return nil, ierr.NewError("settings not found").
			WithReportableDetails(map[string]any{"owner_id": ownerID}).
			Mark(ierr.ErrNotFound)
	}

	copied := *record
	return &copied, nil
}

func (s *settingsStore) Update(ctx context.Context, record *settings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byOwner[record.OwnerID]; !ok {
		return ierr.NewError("settings not found").
			WithReportableDetails(map[string]any{"owner_id": record.OwnerID}).
			Mark(ierr.ErrNotFound)
	}

	copied := *record
	s.byOwner[record.OwnerID] = &copied
	return nil
}

func (s *settingsStore) FindByWhatsAppPhoneNumberID(ctx context.Context, phoneNumberID string) (*settings.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.byOwner {
		if record.WhatsApp.Enabled && record.WhatsApp.PhoneNumberID == phoneNumberID {
			copied := *record
			return &copied, nil
		}
	}
	return nil, ierr.NewError("no user linked to phone number").
		WithReportableDetails(map[string]any{"phone_number_id": phoneNumberID}).
		Mark(ierr.ErrNotFound)
}
