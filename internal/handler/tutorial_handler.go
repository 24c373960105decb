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

type tutorialService interface {
	List(ctx context.Context, filter models.TutorialFilter) ([]models.TutorialSummary, error)
	ListFull(ctx context.Context) ([]models.Tutorial, error)
	Get(ctx context.Context, id string) (*models.Tutorial, error)
	Create(ctx context.Context, req dto.CreateTutorialRequest) (*models.Tutorial, error)
	Update(ctx context.Context, id string, patch dto.TutorialPatch) (*models.Tutorial, error)
	Delete(ctx context.Context, id string) error
}

type accessService interface {
	CheckTutorial(ctx context.Context, viewer *models.Viewer, tutorialID string) (models.AccessDecision, error)
	TutorialPage(ctx context.Context, viewer *models.Viewer, slug string) (*models.TutorialPage, error)
}

// TutorialHandler serves the public catalog and the admin tutorial CRUD.
type TutorialHandler struct {
	tutorials tutorialService
	access    accessService
}

func NewTutorialHandler(tutorials tutorialService, access accessService) *TutorialHandler {
	return &TutorialHandler{tutorials: tutorials, access: access}
}

// List godoc
// @Summary List tutorials
// @Description Catalog summaries without bodies
// @Tags Tutorials
// @Produce json
// @Param category query string false "Category filter"
// @Param is_free query bool false "Free filter"
// @Success 200 {object} response.Envelope
// @Router /tutorials [get]
func (h *TutorialHandler) List(c *gin.Context) {
	filter := models.TutorialFilter{Category: c.Query("category"), IsFree: optionalBool(c, "is_free")}

	items, err := h.tutorials.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, nil, middleware.ExtractMeta(c))
}

// Page godoc
// @Summary Tutorial page
// @Description Full tutorial when the viewer may read it; otherwise metadata plus an access block
// @Tags Tutorials
// @Produce json
// @Param slug path string true "Tutorial slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutorials/{slug} [get]
func (h *TutorialHandler) Page(c *gin.Context) {
	page, err := h.access.TutorialPage(c.Request.Context(), viewerFromContext(c), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, page)
}

// Access godoc
// @Summary Check tutorial access
// @Description Evaluate the access policy for the caller against a tutorial id
// @Tags Tutorials
// @Produce json
// @Param id path string true "Tutorial ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /access/tutorials/{id} [get]
func (h *TutorialHandler) Access(c *gin.Context) {
	decision, err := h.access.CheckTutorial(c.Request.Context(), viewerFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, decision)
}

// AdminList godoc
// @Summary List tutorials with bodies
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/tutorials [get]
func (h *TutorialHandler) AdminList(c *gin.Context) {
	items, err := h.tutorials.ListFull(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, items)
}

// AdminGet godoc
// @Summary Get tutorial
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tutorial ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/tutorials/{id} [get]
func (h *TutorialHandler) AdminGet(c *gin.Context) {
	item, err := h.tutorials.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, item)
}

// Create godoc
// @Summary Create tutorial
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateTutorialRequest true "Tutorial"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/tutorials [post]
func (h *TutorialHandler) Create(c *gin.Context) {
	var req dto.CreateTutorialRequest
	if !bindJSON(c, &req, "invalid tutorial payload") {
		return
	}

	item, err := h.tutorials.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, item)
}

// Update godoc
// @Summary Partially update tutorial
// @Description Only supplied fields are written
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tutorial ID"
// @Param payload body dto.TutorialPatch true "Changed fields"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/tutorials/{id} [patch]
func (h *TutorialHandler) Update(c *gin.Context) {
	var patch dto.TutorialPatch
	if !bindJSON(c, &patch, "invalid tutorial patch") {
		return
	}

	item, err := h.tutorials.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, item)
}

// Delete godoc
// @Summary Delete tutorial
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Tutorial ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /admin/tutorials/{id} [delete]
func (h *TutorialHandler) Delete(c *gin.Context) {
	if err := h.tutorials.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
