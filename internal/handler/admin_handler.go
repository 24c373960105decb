package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/vova4o/goschool-api/internal/models"
	"github.com/vova4o/goschool-api/internal/service"
	"github.com/vova4o/goschool-api/pkg/response"
)

type dashboardService interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

type bootstrapService interface {
	Status(ctx context.Context) (*models.SchemaStatus, error)
	Seed(ctx context.Context) (*models.SeedReport, error)
}

type exportService interface {
	Users(ctx context.Context, format service.ExportFormat) (*service.ExportFile, error)
	Tutorials(ctx context.Context, format service.ExportFormat) (*service.ExportFile, error)
}

// AdminHandler serves dashboard, export and database maintenance endpoints.
type AdminHandler struct {
	dashboard dashboardService
	bootstrap bootstrapService
	exports   exportService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(dashboard dashboardService, bootstrap bootstrapService, exports exportService) *AdminHandler {
	return &AdminHandler{dashboard: dashboard, bootstrap: bootstrap, exports: exports}
}

// Stats godoc
// @Summary Dashboard counters
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, stats)
}

// InitDB godoc
// @Summary Initialise database
// @Description Create missing tables and insert baseline content. Safe to repeat.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /admin/init-db [post]
func (h *AdminHandler) InitDB(c *gin.Context) {
	report, err := h.bootstrap.Seed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, report)
}

// DBStatus godoc
// @Summary Schema readiness
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/db-status [get]
func (h *AdminHandler) DBStatus(c *gin.Context) {
	status, err := h.bootstrap.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, status)
}

// ExportUsers godoc
// @Summary Export users
// @Tags Admin
// @Produce text/csv,application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/users/export [get]
func (h *AdminHandler) ExportUsers(c *gin.Context) {
	file, err := h.exports.Users(c.Request.Context(), exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// ExportTutorials godoc
// @Summary Export tutorials
// @Tags Admin
// @Produce text/csv,application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/tutorials/export [get]
func (h *AdminHandler) ExportTutorials(c *gin.Context) {
	file, err := h.exports.Tutorials(c.Request.Context(), exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func exportFormat(c *gin.Context) service.ExportFormat {
	return service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
}
