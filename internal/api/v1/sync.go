package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/service"
	"github.com/segal-ziv/smartbill/internal/types"
)

type SyncHandler struct {
	service service.SyncService
	log     *logger.Logger
}

func NewSyncHandler(service service.SyncService, log *logger.Logger) *SyncHandler {
	return &SyncHandler{service: service, log: log}
}

// Trigger schedules an async mailbox sync for the given source.
func (h *SyncHandler) Trigger(c *gin.Context) {
	ctx := c.Request.Context()

	source := types.IngestionSource(c.Param("source"))
	if err := source.Validate(); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Unknown ingestion source").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.Enqueue(ctx, source); err != nil {
		h.log.Error("Failed to enqueue sync", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Sync scheduled"})
}
