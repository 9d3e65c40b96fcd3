package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/service"
	"github.com/segal-ziv/smartbill/internal/types"
)

type ExportHandler struct {
	service service.ExportService
	log     *logger.Logger
}

func NewExportHandler(service service.ExportService, log *logger.Logger) *ExportHandler {
	return &ExportHandler{service: service, log: log}
}

// Create builds an export synchronously and returns the download link.
func (h *ExportHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var filter types.DocumentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	result, err := h.service.Generate(ctx, &filter)
	if err != nil {
		h.log.Error("Failed to generate export", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Schedule enqueues an async export job.
func (h *ExportHandler) Schedule(c *gin.Context) {
	ctx := c.Request.Context()

	var filter types.DocumentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.Enqueue(ctx, &filter); err != nil {
		h.log.Error("Failed to enqueue export", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Export scheduled"})
}
