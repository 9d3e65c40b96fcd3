package settings

import (
	"time"

	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/types"
)

// Settings holds a user's business profile and integration credentials.
// Secret fields (OAuth refresh token, IMAP password) are stored
// encrypted; the security.EncryptionService owns the key material.
type Settings struct {
	ID            string `json:"id"`
	BusinessName  string `json:"business_name,omitempty"`
	BusinessTaxID string `json:"business_tax_id,omitempty"`

	Gmail    GmailSettings    `json:"gmail"`
	IMAP     IMAPSettings     `json:"imap"`
	WhatsApp WhatsAppSettings `json:"whatsapp"`

	types.BaseModel
}

// GmailSettings carries per-user OAuth state for the Gmail integration.
type GmailSettings struct {
	Enabled               bool       `json:"enabled"`
	AccessToken           string     `json:"-"`
	EncryptedRefreshToken string     `json:"-"`
	TokenExpiry           *time.Time `json:"token_expiry,omitempty"`
	LastSyncAt            *time.Time `json:"last_sync_at,omitempty"`
}

// IMAPSettings carries per-user mailbox credentials for the IMAP
// integration. Password is encrypted at rest.
type IMAPSettings struct {
	Enabled           bool       `json:"enabled"`
	Host              string     `json:"host,omitempty"`
	Port              int        `json:"port,omitempty"`
	Username          string     `json:"username,omitempty"`
	EncryptedPassword string     `json:"-"`
	UseTLS            bool       `json:"use_tls"`
	LastSyncAt        *time.Time `json:"last_sync_at,omitempty"`
}

// WhatsAppSettings links the user to their WhatsApp Business number.
type WhatsAppSettings struct {
	Enabled       bool   `json:"enabled"`
	PhoneNumberID string `json:"phone_number_id,omitempty"`
}

func (s *Settings) Validate() error {
	if s.OwnerID == "" {
		return ierr.NewError("settings must belong to a user").
			Mark(ierr.ErrValidation)
	}
	if s.IMAP.Enabled {
		if s.IMAP.Host == "" || s.IMAP.Username == "" {
			return ierr.NewError("imap integration is missing host or username").
				WithHint("configure the mailbox connection before enabling sync").
				Mark(ierr.ErrInvalidOperation)
		}
	}
	return nil
}
