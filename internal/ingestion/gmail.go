package ingestion

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/segal-ziv/smartbill/internal/config"
	"github.com/segal-ziv/smartbill/internal/domain/settings"
	"github.com/segal-ziv/smartbill/internal/domain/supplier"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/security"
	"github.com/segal-ziv/smartbill/internal/types"
)

const gmailMaxResults = 50

// GmailAdapter polls a user's Gmail inbox for invoice-bearing
// attachments using their stored OAuth credentials.
type GmailAdapter struct {
	cfg          *config.Configuration
	settingsRepo settings.Repository
	supplierRepo supplier.Repository
	encryption   security.EncryptionService
	ingester     Ingester
	logger       *logger.Logger
}

func NewGmailAdapter(
	cfg *config.Configuration,
	settingsRepo settings.Repository,
	supplierRepo supplier.Repository,
	encryption security.EncryptionService,
	ingester Ingester,
	log *logger.Logger,
) *GmailAdapter {
	return &GmailAdapter{
		cfg:          cfg,
		settingsRepo: settingsRepo,
		supplierRepo: supplierRepo,
		encryption:   encryption,
		ingester:     ingester,
		logger:       log,
	}
}

func (a *GmailAdapter) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.cfg.Gmail.ClientID,
		ClientSecret: a.cfg.Gmail.ClientSecret,
		RedirectURL:  a.cfg.Gmail.RedirectURL,
		Scopes:       []string{gmail.GmailReadonlyScope},
		Endpoint:     google.Endpoint,
	}
}

// AuthURL returns the consent-screen URL for the settings flow.
func (a *GmailAdapter) AuthURL(state string) string {
	return a.oauthConfig().AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// ExchangeCode trades the consent code for a token triple.
func (a *GmailAdapter) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := a.oauthConfig().Exchange(ctx, code)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to exchange authorization code").
			Mark(ierr.ErrHTTPClient)
	}
	return token, nil
}

// Sync runs one inbox pass: refresh credentials, list messages with
// invoice-like attachments since the last sync, ingest each attachment.
// Per-message errors are logged and skipped; the last-sync timestamp
// advances only after the full pass completes.
func (a *GmailAdapter) Sync(ctx context.Context) (int, error) {
	record, err := a.settingsRepo.GetByOwner(ctx)
	if err != nil {
		return 0, err
	}

	if !record.Gmail.Enabled || record.Gmail.EncryptedRefreshToken == "" {
		return 0, ierr.NewError("gmail integration is not configured").
			WithHint("connect a Google account before syncing").
			Mark(ierr.ErrInvalidOperation)
	}

	refreshToken, err := a.encryption.Decrypt(record.Gmail.EncryptedRefreshToken)
	if err != nil {
		return 0, err
	}

	token := &oauth2.Token{
		AccessToken:  record.Gmail.AccessToken,
		RefreshToken: refreshToken,
	}
	if record.Gmail.TokenExpiry != nil {
		token.Expiry = *record.Gmail.TokenExpiry
	}

	tokenSource := a.oauthConfig().TokenSource(ctx, token)
	fresh, err := tokenSource.Token()
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("failed to refresh gmail credentials").
			Mark(ierr.ErrHTTPClient)
	}

	if fresh.AccessToken != token.AccessToken {
		if err := a.persistToken(ctx, record, fresh); err != nil {
			return 0, err
		}
	}

	svc, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("failed to create gmail client").
			Mark(ierr.ErrHTTPClient)
	}

	query := "has:attachment (filename:pdf OR filename:jpg OR filename:png OR filename:jpeg)"
	if record.Gmail.LastSyncAt != nil {
		query = fmt.Sprintf("has:attachment after:%d (filename:pdf OR filename:jpg OR filename:png OR filename:jpeg)",
			record.Gmail.LastSyncAt.Unix())
	}

	listResp, err := svc.Users.Messages.List("me").Q(query).MaxResults(gmailMaxResults).Do()
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("failed to list gmail messages").
			Mark(ierr.ErrHTTPClient)
	}

	processed := 0
	for _, ref := range listResp.Messages {
		count, err := a.processMessage(ctx, svc, ref.Id)
		if err != nil {
			a.logger.Errorw("failed to process gmail message",
				"message_id", ref.Id,
				"error", err,
			)
			continue
		}
		processed += count
	}

	now := time.Now().UTC()
	record.Gmail.LastSyncAt = &now
	if err := a.settingsRepo.Update(ctx, record); err != nil {
		return processed, err
	}

	a.logger.Infow("gmail sync pass completed",
		"messages", len(listResp.Messages),
		"attachments_ingested", processed,
	)
	return processed, nil
}

func (a *GmailAdapter) persistToken(ctx context.Context, record *settings.Settings, token *oauth2.Token) error {
	record.Gmail.AccessToken = token.AccessToken
	expiry := token.Expiry
	record.Gmail.TokenExpiry = &expiry

	if token.RefreshToken != "" {
		encrypted, err := a.encryption.Encrypt(token.RefreshToken)
		if err != nil {
			return err
		}
		record.Gmail.EncryptedRefreshToken = encrypted
	}

	return a.settingsRepo.Update(ctx, record)
}

func (a *GmailAdapter) processMessage(ctx context.Context, svc *gmail.Service, messageID string) (int, error) {
	msg, err := svc.Users.Messages.Get("me", messageID).Format("full").Do()
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("failed to fetch gmail message").
			Mark(ierr.ErrHTTPClient)
	}

	from := headerValue(msg, "From")
	subject := headerValue(msg, "Subject")
	date := headerValue(msg, "Date")

	var supplierID *string
	if domain := DomainFromAddress(from); domain != "" {
		matched, err := a.supplierRepo.FindByEmailDomain(ctx, domain)
		if err == nil && matched != nil {
			supplierID = &matched.ID
		}
	}

	processed := 0
	for _, part := range collectAttachmentParts(msg.Payload) {
		if !IsInvoiceAttachment(part.Filename) {
			continue
		}

		attachment, err := svc.Users.Messages.Attachments.Get("me", messageID, part.Body.AttachmentId).Do()
		if err != nil {
			a.logger.Errorw("failed to fetch gmail attachment",
				"message_id", messageID,
				"file_name", part.Filename,
				"error", err,
			)
			continue
		}

		data, err := base64.URLEncoding.DecodeString(attachment.Data)
		if err != nil {
			a.logger.Errorw("failed to decode gmail attachment",
				"message_id", messageID,
				"file_name", part.Filename,
				"error", err,
			)
			continue
		}

		intake := &RawIntake{
			Source:   types.IngestionSourceGmail,
			OwnerID:  types.GetOwnerID(ctx),
			FileName: part.Filename,
			MimeType: ContentTypeForExtension(part.Filename),
			Data:     data,
			Provenance: map[string]interface{}{
				"message_id": messageID,
				"sender":     from,
				"subject":    subject,
				"date":       date,
			},
			SupplierID: supplierID,
		}

		if _, err := a.ingester.Ingest(ctx, intake); err != nil {
			a.logger.Errorw("failed to ingest gmail attachment",
				"message_id", messageID,
				"file_name", part.Filename,
				"error", err,
			)
			continue
		}
		processed++
	}

	return processed, nil
}

func headerValue(msg *gmail.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

// collectAttachmentParts walks the (possibly nested) MIME tree and
// returns every part carrying a downloadable attachment.
func collectAttachmentParts(payload *gmail.MessagePart) []*gmail.MessagePart {
	if payload == nil {
		return nil
	}

	var parts []*gmail.MessagePart
	var walk func(part *gmail.MessagePart)
	walk = func(part *gmail.MessagePart) {
		if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
			parts = append(parts, part)
		}
		for _, child := range part.Parts {
			walk(child)
		}
	}
	walk(payload)
	return parts
}
