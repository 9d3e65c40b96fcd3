package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/oauth2"

	"github.com/segal-ziv/smartbill/internal/cache"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/httpclient"
	"github.com/segal-ziv/smartbill/internal/testutil"
	"github.com/segal-ziv/smartbill/internal/types"
)

type SettingsServiceSuite struct {
	testutil.BaseServiceTestSuite
	params ServiceParams
	svc    SettingsService
}

func TestSettingsServiceSuite(t *testing.T) {
	suite.Run(t, new(SettingsServiceSuite))
}

func (s *SettingsServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.params = ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		S3:           s.GetBlobStore(),
		DocumentRepo: stores.DocumentRepo,
		SupplierRepo: stores.SupplierRepo,
		CategoryRepo: stores.CategoryRepo,
		SettingsRepo: stores.SettingsRepo,
		AuditLogRepo: stores.AuditLogRepo,
		Enqueuer:     s.GetEnqueuer(),
		OCRProvider:  &testutil.StubOCRProvider{},
		Encryption:   s.GetEncryption(),
		Cache:        cache.NewInMemoryCache(),
		Client:       httpclient.NewDefaultClient(),
	}
	s.svc = NewSettingsService(s.params)
}

func (s *SettingsServiceSuite) TestGetCreatesEmptyRecord() {
	got, err := s.svc.Get(s.GetContext())
	s.NoError(err)
	s.Require().NotNil(got)
	s.NotEmpty(got.ID)
	s.Equal(testutil.TestOwnerID, got.OwnerID)
	s.False(got.Gmail.Enabled)
	s.False(got.IMAP.Enabled)
	s.False(got.WhatsApp.Enabled)

	// a second Get returns the same record
	again, err := s.svc.Get(s.GetContext())
	s.NoError(err)
	s.Equal(got.ID, again.ID)
}

func (s *SettingsServiceSuite) TestUpdateProfile() {
	got, err := s.svc.UpdateProfile(s.GetContext(), "My Business Ltd", "514455667")
	s.NoError(err)
	s.Equal("My Business Ltd", got.BusinessName)
	s.Equal("514455667", got.BusinessTaxID)
}

func (s *SettingsServiceSuite) TestConnectGmailStoresEncryptedRefreshToken() {
	expiry := time.Now().Add(time.Hour)
	err := s.svc.ConnectGmail(s.GetContext(), &oauth2.Token{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		Expiry:       expiry,
	})
	s.NoError(err)

	got, err := s.svc.Get(s.GetContext())
	s.NoError(err)
	s.True(got.Gmail.Enabled)
	s.NotEmpty(got.Gmail.EncryptedRefreshToken)
	s.NotEqual("refresh-token", got.Gmail.EncryptedRefreshToken)

	decrypted, err := s.GetEncryption().Decrypt(got.Gmail.EncryptedRefreshToken)
	s.NoError(err)
	s.Equal("refresh-token", decrypted)
}

func (s *SettingsServiceSuite) TestConnectGmailRequiresRefreshToken() {
	err := s.svc.ConnectGmail(s.GetContext(), &oauth2.Token{AccessToken: "access-only"})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SettingsServiceSuite) TestConfigureIMAP() {
	err := s.svc.ConfigureIMAP(s.GetContext(), "imap.example.com", 993, "billing@example.com", "hunter2", true)
	s.NoError(err)

	got, err := s.svc.Get(s.GetContext())
	s.NoError(err)
	s.True(got.IMAP.Enabled)
	s.Equal("imap.example.com", got.IMAP.Host)
	s.Equal(993, got.IMAP.Port)
	s.NotEqual("hunter2", got.IMAP.EncryptedPassword)

	decrypted, err := s.GetEncryption().Decrypt(got.IMAP.EncryptedPassword)
	s.NoError(err)
	s.Equal("hunter2", decrypted)
}

func (s *SettingsServiceSuite) TestConfigureIMAPKeepsStoredPassword() {
	s.Require().NoError(s.svc.ConfigureIMAP(s.GetContext(), "imap.example.com", 993, "billing@example.com", "hunter2", true))

	before, err := s.svc.Get(s.GetContext())
	s.Require().NoError(err)

	// blank password on re-save keeps the stored credential
	s.NoError(s.svc.ConfigureIMAP(s.GetContext(), "imap.example.com", 143, "billing@example.com", "", false))

	after, err := s.svc.Get(s.GetContext())
	s.NoError(err)
	s.Equal(143, after.IMAP.Port)
	s.False(after.IMAP.UseTLS)
	s.Equal(before.IMAP.EncryptedPassword, after.IMAP.EncryptedPassword)
}

func (s *SettingsServiceSuite) TestConfigureIMAPRequiresHost() {
	err := s.svc.ConfigureIMAP(s.GetContext(), "", 993, "billing@example.com", "hunter2", true)
	s.Error(err)
}

func (s *SettingsServiceSuite) TestConnectAndDisconnectWhatsApp() {
	s.NoError(s.svc.ConnectWhatsApp(s.GetContext(), "1234567890"))

	got, err := s.svc.Get(s.GetContext())
	s.NoError(err)
	s.True(got.WhatsApp.Enabled)
	s.Equal("1234567890", got.WhatsApp.PhoneNumberID)

	s.NoError(s.svc.Disconnect(s.GetContext(), types.IngestionSourceWhatsApp))

	got, err = s.svc.Get(s.GetContext())
	s.NoError(err)
	s.False(got.WhatsApp.Enabled)
	s.Empty(got.WhatsApp.PhoneNumberID)
}

func (s *SettingsServiceSuite) TestDisconnectGmailDropsTokens() {
	s.Require().NoError(s.svc.ConnectGmail(s.GetContext(), &oauth2.Token{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
	}))

	s.NoError(s.svc.Disconnect(s.GetContext(), types.IngestionSourceGmail))

	got, err := s.svc.Get(s.GetContext())
	s.NoError(err)
	s.False(got.Gmail.Enabled)
	s.Empty(got.Gmail.EncryptedRefreshToken)
	s.Empty(got.Gmail.AccessToken)
}

func (s *SettingsServiceSuite) TestDisconnectUnknownSource() {
	err := s.svc.Disconnect(s.GetContext(), types.IngestionSource("carrier-pigeon"))
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
