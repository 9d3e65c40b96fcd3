package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/segal-ziv/smartbill/internal/api/dto"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/ingestion"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/service"
	"github.com/segal-ziv/smartbill/internal/types"
)

type SettingsHandler struct {
	service service.SettingsService
	gmail   *ingestion.GmailAdapter
	log     *logger.Logger
}

func NewSettingsHandler(
	service service.SettingsService,
	gmail *ingestion.GmailAdapter,
	log *logger.Logger,
) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		gmail:   gmail,
		log:     log,
	}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	record, err := h.service.Get(ctx)
	if err != nil {
		h.log.Error("Failed to load settings", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *SettingsHandler) UpdateProfile(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	record, err := h.service.UpdateProfile(ctx, req.BusinessName, req.BusinessTaxID)
	if err != nil {
		h.log.Error("Failed to update profile", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// GmailAuthURL starts the OAuth consent flow. The state parameter is
// echoed back on the callback.
func (h *SettingsHandler) GmailAuthURL(c *gin.Context) {
	state := c.Query("state")
	c.JSON(http.StatusOK, dto.GmailAuthURLResponse{URL: h.gmail.AuthURL(state)})
}

// GmailCallback completes the OAuth consent flow and stores the
// resulting tokens.
func (h *SettingsHandler) GmailCallback(c *gin.Context) {
	ctx := c.Request.Context()

	code := c.Query("code")
	if code == "" {
		c.Error(ierr.NewError("missing authorization code").
			WithHint("The consent flow did not return a code").
			Mark(ierr.ErrValidation))
		return
	}

	token, err := h.gmail.ExchangeCode(ctx, code)
	if err != nil {
		h.log.Error("Failed to exchange authorization code", "error", err)
		c.Error(err)
		return
	}

	if err := h.service.ConnectGmail(ctx, token); err != nil {
		h.log.Error("Failed to store gmail tokens", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Gmail connected"})
}

func (h *SettingsHandler) ConfigureIMAP(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ConfigureIMAPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.ConfigureIMAP(ctx, req.Host, req.Port, req.Username, req.Password, req.UseTLS); err != nil {
		h.log.Error("Failed to configure imap", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "IMAP configured"})
}

func (h *SettingsHandler) ConnectWhatsApp(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ConnectWhatsAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.ConnectWhatsApp(ctx, req.PhoneNumberID); err != nil {
		h.log.Error("Failed to connect whatsapp", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "WhatsApp connected"})
}

func (h *SettingsHandler) Disconnect(c *gin.Context) {
	ctx := c.Request.Context()

	source := types.IngestionSource(c.Param("source"))
	if err := source.Validate(); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Unknown ingestion source").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.Disconnect(ctx, source); err != nil {
		h.log.Error("Failed to disconnect integration", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Integration disconnected"})
}
