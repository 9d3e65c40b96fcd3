package v1

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/segal-ziv/smartbill/internal/ingestion"
	"github.com/segal-ziv/smartbill/internal/logger"
)

// WebhookHandler receives WhatsApp Business webhook traffic: the
// ownership handshake on GET and message deliveries on POST.
type WebhookHandler struct {
	whatsapp *ingestion.WhatsAppAdapter
	log      *logger.Logger
}

func NewWebhookHandler(whatsapp *ingestion.WhatsAppAdapter, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{whatsapp: whatsapp, log: log}
}

// Verify answers the provider's subscription handshake.
func (h *WebhookHandler) Verify(c *gin.Context) {
	challenge, ok := h.whatsapp.VerifyChallenge(
		c.Query("hub.mode"),
		c.Query("hub.verify_token"),
		c.Query("hub.challenge"),
	)
	if !ok {
		c.String(http.StatusForbidden, "forbidden")
		return
	}
	c.String(http.StatusOK, challenge)
}

// Receive handles a message delivery. The provider retries on non-2xx,
// so every delivery is acked; bad payloads are logged and dropped.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Errorw("failed to read webhook body", "error", err)
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	if !h.whatsapp.VerifySignature(body, c.GetHeader("X-Hub-Signature-256")) {
		h.log.Warnw("webhook signature mismatch, dropping delivery")
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	var payload ingestion.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.log.Errorw("malformed webhook payload", "error", err)
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	processed, err := h.whatsapp.ProcessWebhook(c.Request.Context(), &payload)
	if err != nil {
		h.log.Errorw("webhook processing failed", "error", err)
	} else if processed > 0 {
		h.log.Infow("webhook processed", "ingested", processed)
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
