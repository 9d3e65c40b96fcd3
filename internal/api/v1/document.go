package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/segal-ziv/smartbill/internal/api/dto"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/service"
	"github.com/segal-ziv/smartbill/internal/types"
)

type DocumentHandler struct {
	documents service.DocumentService
	ingestion service.IngestionService
	ocr       service.OCRService
	log       *logger.Logger
}

func NewDocumentHandler(
	documents service.DocumentService,
	ingestion service.IngestionService,
	ocr service.OCRService,
	log *logger.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		ingestion: ingestion,
		ocr:       ocr,
		log:       log,
	}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("A file is required under the 'file' form field").
			Mark(ierr.ErrValidation))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Failed to read uploaded file").
			Mark(ierr.ErrValidation))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Failed to read uploaded file").
			Mark(ierr.ErrValidation))
		return
	}

	doc, err := h.ingestion.Upload(ctx, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		h.log.Error("Failed to ingest upload", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToDocumentResponse(doc))
}

func (h *DocumentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var filter types.DocumentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	docs, err := h.documents.List(ctx, &filter)
	if err != nil {
		h.log.Error("Failed to list documents", "error", err)
		c.Error(err)
		return
	}

	total, err := h.documents.Count(ctx, &filter)
	if err != nil {
		h.log.Error("Failed to count documents", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ListDocumentsResponse{Items: docs, Total: total})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := dto.ValidateDocumentID(id); err != nil {
		c.Error(err)
		return
	}

	doc, err := h.documents.Get(ctx, id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

func (h *DocumentHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := dto.ValidateDocumentID(id); err != nil {
		c.Error(err)
		return
	}

	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	doc, err := h.documents.Get(ctx, id)
	if err != nil {
		c.Error(err)
		return
	}
	if err := req.Apply(doc); err != nil {
		c.Error(err)
		return
	}

	updated, err := h.documents.Update(ctx, doc)
	if err != nil {
		h.log.Error("Failed to update document", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDocumentResponse(updated))
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := dto.ValidateDocumentID(id); err != nil {
		c.Error(err)
		return
	}

	if err := h.documents.Delete(ctx, id); err != nil {
		h.log.Error("Failed to delete document", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}

func (h *DocumentHandler) GetFileURL(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := dto.ValidateDocumentID(id); err != nil {
		c.Error(err)
		return
	}

	url, expiresAt, err := h.documents.GetFileURL(ctx, id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.FileURLResponse{URL: url, ExpiresAt: expiresAt})
}

// RequeueOCR schedules another extraction attempt for a failed
// document.
func (h *DocumentHandler) RequeueOCR(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := dto.ValidateDocumentID(id); err != nil {
		c.Error(err)
		return
	}

	if err := h.ocr.Requeue(ctx, id); err != nil {
		h.log.Error("Failed to requeue ocr", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "OCR requeued"})
}
