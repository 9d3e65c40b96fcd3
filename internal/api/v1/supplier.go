package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/segal-ziv/smartbill/internal/api/dto"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/service"
)

type SupplierHandler struct {
	service service.SupplierService
	log     *logger.Logger
}

func NewSupplierHandler(service service.SupplierService, log *logger.Logger) *SupplierHandler {
	return &SupplierHandler{service: service, log: log}
}

func (h *SupplierHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	sup := req.ToSupplier()
	if err := h.service.Create(ctx, sup); err != nil {
		h.log.Error("Failed to create supplier", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, sup)
}

func (h *SupplierHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	suppliers, err := h.service.List(ctx)
	if err != nil {
		h.log.Error("Failed to list suppliers", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ListSuppliersResponse{Items: suppliers, Total: len(suppliers)})
}

func (h *SupplierHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	sup, err := h.service.Get(ctx, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, sup)
}

func (h *SupplierHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	sup, err := h.service.Get(ctx, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	req.Apply(sup)

	if err := h.service.Update(ctx, sup); err != nil {
		h.log.Error("Failed to update supplier", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, sup)
}

func (h *SupplierHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.service.Delete(ctx, c.Param("id")); err != nil {
		h.log.Error("Failed to delete supplier", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Supplier deleted successfully"})
}
