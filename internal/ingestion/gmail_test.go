package ingestion

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/segal-ziv/smartbill/internal/config"
	"github.com/segal-ziv/smartbill/internal/domain/document"
	"github.com/segal-ziv/smartbill/internal/domain/supplier"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/repository/memory"
	"github.com/segal-ziv/smartbill/internal/types"
)

var pdfBytes = []byte("%PDF-1.4 test invoice body")

// captureIngester records every intake instead of persisting it.
type captureIngester struct {
	intakes []*RawIntake
}

func (c *captureIngester) Ingest(ctx context.Context, intake *RawIntake) (*document.Document, error) {
	c.intakes = append(c.intakes, intake)
	return &document.Document{ID: "doc_captured"}, nil
}

func newTestGmailAdapter(t *testing.T, ingester Ingester, supplierRepo supplier.Repository) *GmailAdapter {
	t.Helper()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelError
	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)

	return NewGmailAdapter(cfg, memory.NewSettingsRepository(), supplierRepo, nil, ingester, log)
}

// newTestGmailService serves a canned message and its attachments over
// the real REST wire format, so the decode path runs end to end.
func newTestGmailService(t *testing.T, msg *gmail.Message, attachments map[string]*gmail.MessagePartBody) *gmail.Service {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "/attachments/") {
			body, ok := attachments[path.Base(r.URL.Path)]
			if !ok {
				http.NotFound(w, r)
				return
			}
			require.NoError(t, json.NewEncoder(w).Encode(body))
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(msg))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	svc, err := gmail.NewService(context.Background(),
		option.WithEndpoint(server.URL),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return svc
}

func TestGmailProcessMessageIngestsAttachments(t *testing.T) {
	ctx := types.SetOwnerID(context.Background(), "owner_gmail")

	supplierRepo := memory.NewSupplierRepository()
	sup := &supplier.Supplier{
		Name:         "ACME Ltd",
		EmailDomains: []string{"acme.co.il"},
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	sup.ID = "sup_acme"
	require.NoError(t, supplierRepo.Create(ctx, sup))

	msg := &gmail.Message{
		Id: "msg-1",
		Payload: &gmail.MessagePart{
			MimeType: "multipart/mixed",
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: `"ACME Ltd" <billing@acme.co.il>`},
				{Name: "Subject", Value: "Invoice 4401"},
				{Name: "Date", Value: "Mon, 12 Aug 2024 10:00:00 +0300"},
			},
			Parts: []*gmail.MessagePart{
				{
					MimeType: "multipart/alternative",
					Parts: []*gmail.MessagePart{
						{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: "aGVsbG8="}},
					},
				},
				{
					Filename: "invoice.pdf",
					MimeType: "application/pdf",
					Body:     &gmail.MessagePartBody{AttachmentId: "att-1"},
				},
				{
					Filename: "terms.txt",
					MimeType: "text/plain",
					Body:     &gmail.MessagePartBody{AttachmentId: "att-2"},
				},
			},
		},
	}
	attachments := map[string]*gmail.MessagePartBody{
		"att-1": {Data: base64.URLEncoding.EncodeToString(pdfBytes)},
		"att-2": {Data: base64.URLEncoding.EncodeToString([]byte("terms and conditions"))},
	}

	ingester := &captureIngester{}
	adapter := newTestGmailAdapter(t, ingester, supplierRepo)
	svc := newTestGmailService(t, msg, attachments)

	count, err := adapter.processMessage(ctx, svc, "msg-1")
	require.NoError(t, err)

	// only the invoice-like attachment is ingested
	assert.Equal(t, 1, count)
	require.Len(t, ingester.intakes, 1)

	intake := ingester.intakes[0]
	assert.Equal(t, types.IngestionSourceGmail, intake.Source)
	assert.Equal(t, "owner_gmail", intake.OwnerID)
	assert.Equal(t, "invoice.pdf", intake.FileName)
	assert.Equal(t, "application/pdf", intake.MimeType)
	assert.Equal(t, pdfBytes, intake.Data)
	assert.Equal(t, "msg-1", intake.Provenance["message_id"])
	assert.Equal(t, `"ACME Ltd" <billing@acme.co.il>`, intake.Provenance["sender"])
	assert.Equal(t, "Invoice 4401", intake.Provenance["subject"])
	require.NotNil(t, intake.SupplierID)
	assert.Equal(t, "sup_acme", *intake.SupplierID)
}

func TestGmailProcessMessageUnknownSender(t *testing.T) {
	ctx := types.SetOwnerID(context.Background(), "owner_gmail")

	msg := &gmail.Message{
		Id: "msg-2",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "billing@nowhere.example"},
			},
			Parts: []*gmail.MessagePart{
				{
					Filename: "scan.jpg",
					MimeType: "image/jpeg",
					Body:     &gmail.MessagePartBody{AttachmentId: "att-1"},
				},
			},
		},
	}
	attachments := map[string]*gmail.MessagePartBody{
		"att-1": {Data: base64.URLEncoding.EncodeToString([]byte("jpeg bytes"))},
	}

	ingester := &captureIngester{}
	adapter := newTestGmailAdapter(t, ingester, memory.NewSupplierRepository())
	svc := newTestGmailService(t, msg, attachments)

	count, err := adapter.processMessage(ctx, svc, "msg-2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, ingester.intakes, 1)
	assert.Nil(t, ingester.intakes[0].SupplierID)
	assert.Equal(t, "image/jpeg", ingester.intakes[0].MimeType)
}

func TestCollectAttachmentParts(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: "aGVsbG8="}},
			{
				MimeType: "multipart/related",
				Parts: []*gmail.MessagePart{
					{
						Filename: "nested.pdf",
						Body:     &gmail.MessagePartBody{AttachmentId: "att-nested"},
					},
					// inline image without a downloadable attachment id
					{Filename: "logo.png", Body: &gmail.MessagePartBody{Data: "aW1n"}},
				},
			},
			{
				Filename: "top.png",
				Body:     &gmail.MessagePartBody{AttachmentId: "att-top"},
			},
		},
	}

	parts := collectAttachmentParts(payload)
	require.Len(t, parts, 2)
	assert.Equal(t, "nested.pdf", parts[0].Filename)
	assert.Equal(t, "top.png", parts[1].Filename)

	assert.Nil(t, collectAttachmentParts(nil))
}

func TestHeaderValue(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Invoice"},
			},
		},
	}
	assert.Equal(t, "Invoice", headerValue(msg, "Subject"))
	assert.Empty(t, headerValue(msg, "From"))
	assert.Empty(t, headerValue(&gmail.Message{}, "Subject"))
}
