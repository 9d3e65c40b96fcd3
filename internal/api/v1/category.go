package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/segal-ziv/smartbill/internal/api/dto"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/service"
)

type CategoryHandler struct {
	service service.CategoryService
	log     *logger.Logger
}

func NewCategoryHandler(service service.CategoryService, log *logger.Logger) *CategoryHandler {
	return &CategoryHandler{service: service, log: log}
}

func (h *CategoryHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	cat := req.ToCategory()
	if err := h.service.Create(ctx, cat); err != nil {
		h.log.Error("Failed to create category", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	categories, err := h.service.List(ctx)
	if err != nil {
		h.log.Error("Failed to list categories", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ListCategoriesResponse{Items: categories, Total: len(categories)})
}

func (h *CategoryHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	cat, err := h.service.Get(ctx, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	cat, err := h.service.Get(ctx, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	req.Apply(cat)

	if err := h.service.Update(ctx, cat); err != nil {
		h.log.Error("Failed to update category", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.service.Delete(ctx, c.Param("id")); err != nil {
		h.log.Error("Failed to delete category", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
