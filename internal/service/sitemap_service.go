package service

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vova4o/goschool-api/internal/models"
)

type sitemapTutorialSource interface {
	List(ctx context.Context, filter models.TutorialFilter) ([]models.TutorialSummary, error)
}

type sitemapExampleSource interface {
	List(ctx context.Context, category string) ([]models.Example, error)
}

// robotsDisallow lists paths crawlers should skip.
var robotsDisallow = []string{"/api/", "/admin/", "/initialize/", "/_next/", "/static/"}

type staticPage struct {
	path     string
	freq     string
	priority float64
}

var sitemapStaticPages = []staticPage{
	{"", "daily", 1},
	{"/tutorials", "daily", 0.9},
	{"/examples", "daily", 0.9},
	{"/reference", "weekly", 0.8},
	{"/pricing", "weekly", 0.7},
	{"/auth/login", "monthly", 0.5},
	{"/auth/register", "monthly", 0.5},
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// SitemapService renders sitemap.xml and robots.txt for the public site.
type SitemapService struct {
	baseURL   string
	tutorials sitemapTutorialSource
	examples  sitemapExampleSource
	logger    *zap.Logger
	now       func() time.Time
}

// NewSitemapService constructs a SitemapService for baseURL.
func NewSitemapService(baseURL string, tutorials sitemapTutorialSource, examples sitemapExampleSource, logger *zap.Logger) *SitemapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SitemapService{
		baseURL:   strings.TrimRight(baseURL, "/"),
		tutorials: tutorials,
		examples:  examples,
		logger:    logger,
		now:       time.Now,
	}
}

// Sitemap renders the XML sitemap. A failing catalog read drops its section
// and is logged; static pages are always present.
func (s *SitemapService) Sitemap(ctx context.Context) ([]byte, error) {
	now := s.now().UTC().Format(time.RFC3339)
	set := sitemapURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}

	for _, p := range sitemapStaticPages {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.baseURL + p.path,
			LastMod:    now,
			ChangeFreq: p.freq,
			Priority:   formatPriority(p.priority),
		})
	}

	tutorials, err := s.tutorials.List(ctx, models.TutorialFilter{})
	if err != nil {
		s.logger.Warn("sitemap: failed to load tutorials", zap.Error(err))
	}
	for _, t := range tutorials {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.baseURL + "/tutorials/" + t.Slug,
			LastMod:    t.UpdatedAt.UTC().Format(time.RFC3339),
			ChangeFreq: "weekly",
			Priority:   formatPriority(0.8),
		})
	}

	examples, err := s.examples.List(ctx, "")
	if err != nil {
		s.logger.Warn("sitemap: failed to load examples", zap.Error(err))
	}
	for _, e := range examples {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.baseURL + "/examples/" + e.Slug,
			LastMod:    e.UpdatedAt.UTC().Format(time.RFC3339),
			ChangeFreq: "weekly",
			Priority:   formatPriority(0.7),
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return buf.Bytes(), nil
}

// Robots renders robots.txt.
func (s *SitemapService) Robots() []byte {
	var b strings.Builder
	b.WriteString("User-agent: *\nAllow: /\n")
	for _, path := range robotsDisallow {
		b.WriteString("Disallow: " + path + "\n")
	}
	b.WriteString("\nSitemap: " + s.baseURL + "/sitemap.xml\n")
	return []byte(b.String())
}

func formatPriority(p float64) string {
	return fmt.Sprintf("%.1f", p)
}
