package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstore/internal/logo"
	"github.com/cristianadrielbraun/qrstore/internal/render"
	"github.com/cristianadrielbraun/qrstore/internal/service"
	"github.com/cristianadrielbraun/qrstore/internal/storage"
	"github.com/cristianadrielbraun/qrstore/web/components"
	"github.com/cristianadrielbraun/qrstore/web/pages"
)

// Generator is the part of the service the handlers call.
type Generator interface {
	Generate(ctx context.Context, req service.Request) (service.Result, error)
	CheckCached(ctx context.Context, payload string) (string, bool, error)
	PublicURL(path, baseURL string) string
}

// Uploader adopts uploaded logo bytes. *logo.Fetcher satisfies it.
type Uploader interface {
	FromReader(r io.Reader, name string) (*logo.Resource, error)
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	svc       Generator
	store     storage.Store
	uploads   Uploader
	baseURL   string
	env       string
	maxUpload int64
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithBaseURL fixes the public base URL instead of deriving it per request.
func WithBaseURL(u string) Option { return func(h *Handler) { h.baseURL = u } }

// WithEnvironment sets the name reported by /health.
func WithEnvironment(env string) Option { return func(h *Handler) { h.env = env } }

// WithMaxUpload caps uploaded logo size in bytes.
func WithMaxUpload(n int64) Option { return func(h *Handler) { h.maxUpload = n } }

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option { return func(h *Handler) { h.now = now } }

// New returns a Handler instance.
func New(svc Generator, store storage.Store, uploads Uploader, opts ...Option) *Handler {
	h := &Handler{
		svc:       svc,
		store:     store,
		uploads:   uploads,
		env:       "development",
		maxUpload: logo.DefaultMaxBytes,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"environment": h.env,
		"timestamp":   h.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

// NotFound answers unknown routes.
func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
}

// requestBaseURL returns the configured base URL, else one built from the
// forwarding headers or the request itself.
func (h *Handler) requestBaseURL(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if xf := c.GetHeader("X-Forwarded-Proto"); xf != "" {
		scheme = strings.TrimSpace(strings.Split(xf, ",")[0])
	}
	host := c.Request.Host
	if xf := c.GetHeader("X-Forwarded-Host"); xf != "" {
		host = strings.TrimSpace(strings.Split(xf, ",")[0])
	}
	if host == "" {
		return ""
	}
	return scheme + "://" + host
}

// SitemapXML serves a minimal sitemap for the site.
func (h *Handler) SitemapXML(c *gin.Context) {
	c.Header("Content-Type", "application/xml; charset=utf-8")
	base := h.requestBaseURL(c)
	xml := "" +
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<urlset xmlns=\"http://www.sitemaps.org/schemas/sitemap/0.9\">\n" +
		"  <url>\n" +
		"    <loc>" + base + "/" + "</loc>\n" +
		"    <changefreq>weekly</changefreq>\n" +
		"    <priority>1.0</priority>\n" +
		"  </url>\n" +
		"</urlset>\n"
	c.String(http.StatusOK, xml)
}

// Home renders the generator page.
func (h *Handler) Home(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	d := components.FormDefaults{
		ColorDark:  render.Hex(render.DefaultDark),
		ColorLight: render.Hex(render.DefaultLight),
		Level:      render.DefaultLevel.String(),
		Width:      render.DefaultWidth,
		Margin:     render.DefaultMargin,
		LogoSize:   render.DefaultLogoFraction,
	}
	if err := pages.HomePage(d).Render(c.Request.Context(), c.Writer); err != nil {
		c.String(http.StatusInternalServerError, err.Error())
	}
}
