package service

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/segal-ziv/smartbill/internal/domain/settings"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/types"
)

// SettingsService manages the user's business profile and integration
// credentials. Secrets are encrypted before they reach the repository.
type SettingsService interface {
	// Get returns the owner's settings, creating an empty record on
	// first access.
	Get(ctx context.Context) (*settings.Settings, error)

	// UpdateProfile sets the business name and tax id.
	UpdateProfile(ctx context.Context, businessName, businessTaxID string) (*settings.Settings, error)

	// ConnectGmail stores the OAuth tokens obtained from the consent
	// flow and enables the integration.
	ConnectGmail(ctx context.Context, token *oauth2.Token) error

	// ConfigureIMAP stores mailbox credentials. An empty password keeps
	// the previously stored one.
	ConfigureIMAP(ctx context.Context, host string, port int, username, password string, useTLS bool) error

	// ConnectWhatsApp links the user to a WhatsApp Business phone number
	// so inbound webhook deliveries can be attributed.
	ConnectWhatsApp(ctx context.Context, phoneNumberID string) error

	// Disconnect disables an integration and drops its credentials.
	Disconnect(ctx context.Context, source types.IngestionSource) error
}

type settingsService struct {
	ServiceParams
}

func NewSettingsService(params ServiceParams) SettingsService {
	return &settingsService{ServiceParams: params}
}

func (s *settingsService) Get(ctx context.Context) (*settings.Settings, error) {
	record, err := s.SettingsRepo.GetByOwner(ctx)
	if err == nil {
		return record, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	record = &settings.Settings{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SETTINGS),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	if err := s.SettingsRepo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *settingsService) UpdateProfile(ctx context.Context, businessName, businessTaxID string) (*settings.Settings, error) {
	record, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	record.BusinessName = businessName
	record.BusinessTaxID = businessTaxID
	record.UpdatedAt = time.Now().UTC()

	if err := s.SettingsRepo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *settingsService) ConnectGmail(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.RefreshToken == "" {
		return ierr.NewError("oauth exchange returned no refresh token").
			WithHint("revoke the app's access in Google and reconnect").
			Mark(ierr.ErrInvalidOperation)
	}

	record, err := s.Get(ctx)
	if err != nil {
		return err
	}

	encrypted, err := s.Encryption.Encrypt(token.RefreshToken)
	if err != nil {
		return err
	}

	expiry := token.Expiry
	record.Gmail = settings.GmailSettings{
		Enabled:               true,
		AccessToken:           token.AccessToken,
		EncryptedRefreshToken: encrypted,
		TokenExpiry:           &expiry,
	}
	record.UpdatedAt = time.Now().UTC()

	return s.SettingsRepo.Update(ctx, record)
}

func (s *settingsService) ConfigureIMAP(ctx context.Context, host string, port int, username, password string, useTLS bool) error {
	record, err := s.Get(ctx)
	if err != nil {
		return err
	}

	encrypted := record.IMAP.EncryptedPassword
	if password != "" {
		encrypted, err = s.Encryption.Encrypt(password)
		if err != nil {
			return err
		}
	}

	record.IMAP = settings.IMAPSettings{
		Enabled:           true,
		Host:              host,
		Port:              port,
		Username:          username,
		EncryptedPassword: encrypted,
		UseTLS:            useTLS,
		LastSyncAt:        record.IMAP.LastSyncAt,
	}
	record.UpdatedAt = time.Now().UTC()

	if err := record.Validate(); err != nil {
		return err
	}
	return s.SettingsRepo.Update(ctx, record)
}

func (s *settingsService) ConnectWhatsApp(ctx context.Context, phoneNumberID string) error {
	if phoneNumberID == "" {
		return ierr.NewError("phone number id is required").
			Mark(ierr.ErrValidation)
	}

	record, err := s.Get(ctx)
	if err != nil {
		return err
	}

	record.WhatsApp = settings.WhatsAppSettings{
		Enabled:       true,
		PhoneNumberID: phoneNumberID,
	}
	record.UpdatedAt = time.Now().UTC()

	return s.SettingsRepo.Update(ctx, record)
}

func (s *settingsService) Disconnect(ctx context.Context, source types.IngestionSource) error {
	record, err := s.Get(ctx)
	if err != nil {
		return err
	}

	switch source {
	case types.IngestionSourceGmail:
		record.Gmail = settings.GmailSettings{}
	case types.IngestionSourceIMAP:
		record.IMAP = settings.IMAPSettings{}
	case types.IngestionSourceWhatsApp:
		record.WhatsApp = settings.WhatsAppSettings{}
	default:
		return ierr.NewError("source has no integration to disconnect").
			WithReportableDetails(map[string]any{"source": source}).
			Mark(ierr.ErrValidation)
	}
	record.UpdatedAt = time.Now().UTC()

	return s.SettingsRepo.Update(ctx, record)
}
