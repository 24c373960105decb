package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vova4o/goschool-api/internal/dto"
	"github.com/vova4o/goschool-api/internal/middleware"
	"github.com/vova4o/goschool-api/internal/models"
	"github.com/vova4o/goschool-api/pkg/response"
)

type exampleService interface {
	List(ctx context.Context, category string) ([]models.Example, error)
	Get(ctx context.Context, id string) (*models.Example, error)
	GetBySlug(ctx context.Context, slug string) (*models.Example, error)
	Create(ctx context.Context, req dto.CreateExampleRequest) (*models.Example, error)
	Update(ctx context.Context, id string, patch dto.ExamplePatch) (*models.Example, error)
	Delete(ctx context.Context, id string) error
}

// ExampleHandler serves code examples. Examples are public.
type ExampleHandler struct {
	service exampleService
}

func NewExampleHandler(svc exampleService) *ExampleHandler {
	return &ExampleHandler{service: svc}
}

// List godoc
// @Summary List examples
// @Tags Examples
// @Produce json
// @Param category query string false "Category filter"
// @Success 200 {object} response.Envelope
// @Router /examples [get]
func (h *ExampleHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, nil, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get example
// @Tags Examples
// @Produce json
// @Param slug path string true "Example slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /examples/{slug} [get]
func (h *ExampleHandler) Get(c *gin.Context) {
	item, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, item)
}

// AdminGet godoc
// @Summary Get example by id
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Example ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/examples/{id} [get]
func (h *ExampleHandler) AdminGet(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, item)
}

// Create godoc
// @Summary Create example
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateExampleRequest true "Example"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/examples [post]
func (h *ExampleHandler) Create(c *gin.Context) {
	var req dto.CreateExampleRequest
	if !bindJSON(c, &req, "invalid example payload") {
		return
	}

	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, item)
}

// Update godoc
// @Summary Partially update example
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Example ID"
// @Param payload body dto.ExamplePatch true "Changed fields"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/examples/{id} [patch]
func (h *ExampleHandler) Update(c *gin.Context) {
	var patch dto.ExamplePatch
	if !bindJSON(c, &patch, "invalid example patch") {
		return
	}

	item, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, item)
}

// Delete godoc
// @Summary Delete example
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Example ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /admin/examples/{id} [delete]
func (h *ExampleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
