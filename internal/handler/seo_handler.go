package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vova4o/goschool-api/pkg/response"
)

type sitemapService interface {
	Sitemap(ctx context.Context) ([]byte, error)
	Robots() []byte
}

// SEOHandler serves crawler-facing documents.
type SEOHandler struct {
	service sitemapService
}

func NewSEOHandler(svc sitemapService) *SEOHandler {
	return &SEOHandler{service: svc}
}

// Sitemap godoc
// @Summary sitemap.xml
// @Tags SEO
// @Produce xml
// @Success 200 {string} string
// @Router /sitemap.xml [get]
func (h *SEOHandler) Sitemap(c *gin.Context) {
	body, err := h.service.Sitemap(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

// Robots godoc
// @Summary robots.txt
// @Tags SEO
// @Produce plain
// @Success 200 {string} string
// @Router /robots.txt [get]
func (h *SEOHandler) Robots(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", h.service.Robots())
}
