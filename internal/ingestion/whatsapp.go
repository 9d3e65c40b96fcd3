package ingestion

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/segal-ziv/smartbill/internal/config"
	"github.com/segal-ziv/smartbill/internal/domain/settings"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/types"
)

// WebhookPayload mirrors the nested entry/changes/messages structure
// pushed by the WhatsApp Business API.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Metadata         WebhookMetadata  `json:"metadata"`
	Messages         []WebhookMessage `json:"messages"`
	Contacts         []WebhookContact `json:"contacts"`
}

type WebhookMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type WebhookContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type WebhookMessage struct {
	From      string        `json:"from"`
	ID        string        `json:"id"`
	Timestamp string        `json:"timestamp"`
	Type      string        `json:"type"`
	Image     *WebhookMedia `json:"image,omitempty"`
	Document  *WebhookMedia `json:"document,omitempty"`
}

type WebhookMedia struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	SHA256   string `json:"sha256"`
	Filename string `json:"filename,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

// mediaResolution is the first step of the two-step media download.
type mediaResolution struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

// WhatsAppAdapter receives provider-pushed messages, downloads their
// media and hands the bytes to the ingestion coordinator.
type WhatsAppAdapter struct {
	cfg          *config.Configuration
	settingsRepo settings.Repository
	ingester     Ingester
	client       *retryablehttp.Client
	logger       *logger.Logger
}

func NewWhatsAppAdapter(
	cfg *config.Configuration,
	settingsRepo settings.Repository,
	ingester Ingester,
	log *logger.Logger,
) *WhatsAppAdapter {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	return &WhatsAppAdapter{
		cfg:          cfg,
		settingsRepo: settingsRepo,
		ingester:     ingester,
		client:       client,
		logger:       log,
	}
}

// VerifyChallenge implements the webhook ownership handshake. The
// challenge is echoed back only for mode "subscribe" with the correct
// token.
func (a *WhatsAppAdapter) VerifyChallenge(mode, token, challenge string) (string, bool) {
	if mode == "subscribe" && token != "" && token == a.cfg.WhatsApp.VerifyToken {
		return challenge, true
	}
	return "", false
}

// VerifySignature checks the X-Hub-Signature-256 header against the raw
// request body. An empty configured secret disables verification.
func (a *WhatsAppAdapter) VerifySignature(body []byte, signatureHeader string) bool {
	if a.cfg.WhatsApp.AppSecret == "" {
		return true
	}

	expected := strings.TrimPrefix(signatureHeader, "sha256=")
	mac := hmac.New(sha256.New, []byte(a.cfg.WhatsApp.AppSecret))
	mac.Write(body)
	computed := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(computed))
}

// ProcessWebhook walks the delivery payload and ingests every media
// message. Per-message failures are logged and skipped so one bad
// message never aborts the batch; the caller still acks the channel.
func (a *WhatsAppAdapter) ProcessWebhook(ctx context.Context, payload *WebhookPayload) (int, error) {
	processed := 0

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if len(change.Value.Messages) == 0 {
				continue
			}

			ownerCtx, err := a.resolveOwner(ctx, change.Value.Metadata.PhoneNumberID)
			if err != nil {
				a.logger.Errorw("failed to resolve webhook owner",
					"phone_number_id", change.Value.Metadata.PhoneNumberID,
					"error", err,
				)
				continue
			}

			for _, msg := range change.Value.Messages {
				if err := a.processMessage(ownerCtx, &msg); err != nil {
					a.logger.Errorw("failed to process whatsapp message",
						"message_id", msg.ID,
						"type", msg.Type,
						"error", err,
					)
					continue
				}
				processed++
			}
		}
	}

	return processed, nil
}

func (a *WhatsAppAdapter) resolveOwner(ctx context.Context, phoneNumberID string) (context.Context, error) {
	if phoneNumberID == "" {
		return nil, ierr.NewError("webhook delivery is missing phone number id").
			Mark(ierr.ErrValidation)
	}

	record, err := a.settingsRepo.FindByWhatsAppPhoneNumberID(ctx, phoneNumberID)
	if err != nil {
		return nil, err
	}

	return types.SetOwnerID(ctx, record.OwnerID), nil
}

func (a *WhatsAppAdapter) processMessage(ctx context.Context, msg *WebhookMessage) error {
	var media *WebhookMedia
	switch msg.Type {
	case "image":
		media = msg.Image
	case "document":
		media = msg.Document
	default:
		// Text and other message types carry no invoice.
		return nil
	}

	if media == nil || media.ID == "" {
		return ierr.NewError("media message has no media reference").
			Mark(ierr.ErrValidation)
	}

	data, mimeType, err := a.downloadMedia(ctx, media.ID)
	if err != nil {
		return err
	}

	fileName := media.Filename
	if fileName == "" {
		fileName = fmt.Sprintf("whatsapp-%s%s", msg.ID, extensionForMime(mimeType))
	}

	intake := &RawIntake{
		Source:   types.IngestionSourceWhatsApp,
		OwnerID:  types.GetOwnerID(ctx),
		FileName: fileName,
		MimeType: mimeType,
		Data:     data,
		Provenance: map[string]interface{}{
			"message_id": msg.ID,
			"sender":     msg.From,
			"timestamp":  msg.Timestamp,
			"media_id":   media.ID,
			"caption":    media.Caption,
		},
	}

	_, err = a.ingester.Ingest(ctx, intake)
	return err
}

// downloadMedia performs the two-step token-based media fetch: resolve
// the media id to a short-lived signed URL, then fetch the bytes.
func (a *WhatsAppAdapter) downloadMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	resolveURL := fmt.Sprintf("%s/%s", a.cfg.WhatsApp.GraphAPIURL, mediaID)

	body, err := a.get(ctx, resolveURL)
	if err != nil {
		return nil, "", ierr.WithError(err).
			WithHint("failed to resolve whatsapp media url").
			Mark(ierr.ErrHTTPClient)
	}

	var resolution mediaResolution
	if err := json.Unmarshal(body, &resolution); err != nil {
		return nil, "", ierr.WithError(err).
			WithHint("unexpected media resolution response").
			Mark(ierr.ErrHTTPClient)
	}
	if resolution.URL == "" {
		return nil, "", ierr.NewError("media resolution returned no url").
			Mark(ierr.ErrHTTPClient)
	}

	data, err := a.get(ctx, resolution.URL)
	if err != nil {
		return nil, "", ierr.WithError(err).
			WithHint("failed to download whatsapp media").
			Mark(ierr.ErrHTTPClient)
	}

	return data, resolution.MimeType, nil
}

func (a *WhatsAppAdapter) get(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.cfg.WhatsApp.AccessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("graph api returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func extensionForMime(mimeType string) string {
	switch mimeType {
	case "application/pdf":
		return ".pdf"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
