package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vova4o/goschool-api/internal/models"
)

type sitemapTutorialsStub struct {
	items []models.TutorialSummary
	err   error
}

func (s sitemapTutorialsStub) List(context.Context, models.TutorialFilter) ([]models.TutorialSummary, error) {
	return s.items, s.err
}

type sitemapExamplesStub struct {
	items []models.Example
	err   error
}

func (s sitemapExamplesStub) List(context.Context, string) ([]models.Example, error) {
	return s.items, s.err
}

func TestSitemapIncludesCatalog(t *testing.T) {
	updated := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewSitemapService("https://school.example.com/",
		sitemapTutorialsStub{items: []models.TutorialSummary{{Slug: "getting-started", UpdatedAt: updated}}},
		sitemapExamplesStub{items: []models.Example{{Slug: "hello-world", UpdatedAt: updated}}},
		nil,
	)

	body, err := svc.Sitemap(context.Background())
	require.NoError(t, err)

	out := string(body)
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, out, "<loc>https://school.example.com</loc>")
	assert.Contains(t, out, "<loc>https://school.example.com/tutorials/getting-started</loc>")
	assert.Contains(t, out, "<loc>https://school.example.com/examples/hello-world</loc>")
	assert.Contains(t, out, "<lastmod>2025-03-01T12:00:00Z</lastmod>")
	assert.Contains(t, out, "<priority>0.8</priority>")
}

func TestSitemapSurvivesStoreFailure(t *testing.T) {
	svc := NewSitemapService("https://school.example.com",
		sitemapTutorialsStub{err: errors.New("down")},
		sitemapExamplesStub{err: errors.New("down")},
		nil,
	)

	body, err := svc.Sitemap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(sitemapStaticPages), strings.Count(string(body), "<url>"))
}

func TestRobots(t *testing.T) {
	out := string(NewSitemapService("https://school.example.com", nil, nil, nil).Robots())
	assert.Contains(t, out, "User-agent: *")
	for _, p := range []string{"/api/", "/admin/", "/initialize/", "/_next/", "/static/"} {
		assert.Contains(t, out, "Disallow: "+p+"\n")
	}
	assert.Contains(t, out, "Sitemap: https://school.example.com/sitemap.xml")
}
