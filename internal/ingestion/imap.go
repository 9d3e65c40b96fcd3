package ingestion

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"

	"github.com/segal-ziv/smartbill/internal/domain/settings"
	"github.com/segal-ziv/smartbill/internal/domain/supplier"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/security"
	"github.com/segal-ziv/smartbill/internal/types"
)

// IMAPAdapter polls a generic mailbox over IMAP/TLS for invoice-bearing
// attachments. Credentials are decrypted from the user's settings.
type IMAPAdapter struct {
	settingsRepo settings.Repository
	supplierRepo supplier.Repository
	encryption   security.EncryptionService
	ingester     Ingester
	logger       *logger.Logger
}

func NewIMAPAdapter(
	settingsRepo settings.Repository,
	supplierRepo supplier.Repository,
	encryption security.EncryptionService,
	ingester Ingester,
	log *logger.Logger,
) *IMAPAdapter {
	return &IMAPAdapter{
		settingsRepo: settingsRepo,
		supplierRepo: supplierRepo,
		encryption:   encryption,
		ingester:     ingester,
		logger:       log,
	}
}

// Sync runs one mailbox pass: connect, search unseen messages since the
// last sync, ingest matching attachments. The connection is closed even
// when a fetch fails; per-message errors are logged and skipped.
func (a *IMAPAdapter) Sync(ctx context.Context) (int, error) {
	record, err := a.settingsRepo.GetByOwner(ctx)
	if err != nil {
		return 0, err
	}

	if !record.IMAP.Enabled || record.IMAP.Host == "" {
		return 0, ierr.NewError("imap integration is not configured").
			WithHint("configure the mailbox connection before syncing").
			Mark(ierr.ErrInvalidOperation)
	}

	password, err := a.encryption.Decrypt(record.IMAP.EncryptedPassword)
	if err != nil {
		return 0, err
	}

	port := record.IMAP.Port
	if port == 0 {
		port = 993
	}

	c, err := imapclient.DialTLS(fmt.Sprintf("%s:%d", record.IMAP.Host, port), nil)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("failed to connect to the mailbox").
			Mark(ierr.ErrHTTPClient)
	}
	defer c.Logout()

	if err := c.Login(record.IMAP.Username, password); err != nil {
		return 0, ierr.WithError(err).
			WithHint("mailbox rejected the credentials").
			Mark(ierr.ErrPermissionDenied)
	}

	if _, err := c.Select("INBOX", true); err != nil {
		return 0, ierr.WithError(err).
			WithHint("failed to open the inbox").
			Mark(ierr.ErrHTTPClient)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	if record.IMAP.LastSyncAt != nil {
		criteria.Since = *record.IMAP.LastSyncAt
	}

	ids, err := c.Search(criteria)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("mailbox search failed").
			Mark(ierr.ErrHTTPClient)
	}

	processed := 0
	if len(ids) > 0 {
		processed = a.fetchAndIngest(ctx, c, ids)
	}

	now := time.Now().UTC()
	record.IMAP.LastSyncAt = &now
	if err := a.settingsRepo.Update(ctx, record); err != nil {
		return processed, err
	}

	a.logger.Infow("imap sync pass completed",
		"messages", len(ids),
		"attachments_ingested", processed,
	)
	return processed, nil
}

func (a *IMAPAdapter) fetchAndIngest(ctx context.Context, c *imapclient.Client, ids []uint32) int {
	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{}
	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{section.FetchItem(), imap.FetchEnvelope}, messages)
	}()

	processed := 0
	for msg := range messages {
		count, err := a.processMessage(ctx, msg, section)
		if err != nil {
			a.logger.Errorw("failed to process imap message",
				"seq_num", msg.SeqNum,
				"error", err,
			)
			continue
		}
		processed += count
	}

	if err := <-done; err != nil {
		a.logger.Errorw("imap fetch finished with error", "error", err)
	}

	return processed
}

func (a *IMAPAdapter) processMessage(ctx context.Context, msg *imap.Message, section *imap.BodySectionName) (int, error) {
	body := msg.GetBody(section)
	if body == nil {
		return 0, ierr.NewError("message has no body section").
			Mark(ierr.ErrHTTPClient)
	}

	mr, err := mail.CreateReader(body)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("failed to parse message mime structure").
			Mark(ierr.ErrValidation)
	}

	from := mr.Header.Get("From")
	subject := mr.Header.Get("Subject")

	var supplierID *string
	if domain := DomainFromAddress(from); domain != "" {
		matched, err := a.supplierRepo.FindByEmailDomain(ctx, domain)
		if err == nil && matched != nil {
			supplierID = &matched.ID
		}
	}

	processed := 0
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			a.logger.Errorw("failed to read mime part", "error", err)
			break
		}

		header, ok := part.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}

		fileName, err := header.Filename()
		if err != nil || !IsInvoiceAttachment(fileName) {
			continue
		}

		data, err := io.ReadAll(part.Body)
		if err != nil {
			a.logger.Errorw("failed to read attachment body",
				"file_name", fileName,
				"error", err,
			)
			continue
		}

		intake := &RawIntake{
			Source:   types.IngestionSourceIMAP,
			OwnerID:  types.GetOwnerID(ctx),
			FileName: fileName,
			MimeType: ContentTypeForExtension(fileName),
			Data:     data,
			Provenance: map[string]interface{}{
				"seq_num": msg.SeqNum,
				"sender":  from,
				"subject": subject,
			},
			SupplierID: supplierID,
		}

		if _, err := a.ingester.Ingest(ctx, intake); err != nil {
			a.logger.Errorw("failed to ingest imap attachment",
				"file_name", fileName,
				"error", err,
			)
			continue
		}
		processed++
	}

	return processed, nil
}
