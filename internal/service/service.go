package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cristianadrielbraun/qrstore/internal/logging"
	"github.com/cristianadrielbraun/qrstore/internal/logo"
	"github.com/cristianadrielbraun/qrstore/internal/qr"
	"github.com/cristianadrielbraun/qrstore/internal/render"
	"github.com/cristianadrielbraun/qrstore/internal/storage"
)

// ErrInvalidInput is returned for requests that can never succeed.
var ErrInvalidInput = errors.New("service: invalid input")

// LogoFetcher acquires remote logos. *logo.Fetcher satisfies it.
type LogoFetcher interface {
	Fetch(ctx context.Context, url string) (*logo.Resource, error)
}

// Renderer draws a matrix into PNG bytes. *render.Rasterizer satisfies it.
type Renderer interface {
	Render(ctx context.Context, m *qr.Matrix, style render.Style, logoPath string) ([]byte, error)
}

// Request describes one generate call.
type Request struct {
	Payload string
	Style   render.Style

	// LogoURL is fetched when Logo is nil.
	LogoURL string
	// Logo is an already acquired logo, e.g. an upload. Generate removes it.
	Logo *logo.Resource
	// LogoOptional turns a failed logo fetch into a render without a logo.
	LogoOptional bool

	// BaseURL overrides the configured public base URL for this request.
	BaseURL string
}

// Result is the outcome of Generate.
type Result struct {
	ImageURL string
	Path     string
	Cached   bool
}

// Service generates styled QR images and stores them.
type Service struct {
	store    storage.Store
	resolver *storage.Resolver
	cache    *qr.Cache
	fetcher  LogoFetcher
	renderer Renderer
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithCache(c *qr.Cache) Option         { return func(s *Service) { s.cache = c } }
func WithResolver(r *storage.Resolver) Option { return func(s *Service) { s.resolver = r } }
func WithFetcher(f LogoFetcher) Option     { return func(s *Service) { s.fetcher = f } }
func WithRenderer(r Renderer) Option       { return func(s *Service) { s.renderer = r } }

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Service writing to store. Collaborators that are not set
// through options get their defaults.
func New(store storage.Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = qr.NewCache(qr.YeqownEncoder{}, qr.WithCacheLogger(s.logger))
	}
	if s.resolver == nil {
		s.resolver = storage.NewResolver(store)
	}
	if s.fetcher == nil {
		s.fetcher = logo.NewFetcher(logo.WithLogger(s.logger))
	}
	if s.renderer == nil {
		s.renderer = render.NewRasterizer(render.WithLogger(s.logger))
	}
	return s
}

// Cache returns the matrix cache owned by the service.
func (s *Service) Cache() *qr.Cache { return s.cache }

// Generate renders req.Payload and stores it, unless an image for the same
// activation code is already stored.
func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	// Remove runs on every exit path, including the cached one.
	defer req.Logo.Remove()

	if strings.TrimSpace(req.Payload) == "" {
		return Result{}, fmt.Errorf("%w: data parameter is required", ErrInvalidInput)
	}
	if err := req.Style.Validate(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	path := s.resolver.Resolve(req.Payload)
	log := s.logger.With(slog.String("path", path))

	if storage.Classify(req.Payload) == storage.ClassActivationCode {
		ok, err := s.resolver.Exists(ctx, path)
		if err != nil {
			return Result{}, err
		}
		if ok {
			log.Info("QR code already exists in storage")
			return Result{ImageURL: s.resolver.PublicURL(path, req.BaseURL), Path: path, Cached: true}, nil
		}
	}

	m, err := s.cache.Matrix(ctx, req.Payload, req.Style.Level)
	if err != nil {
		return Result{}, err
	}

	res := req.Logo
	if res == nil && req.LogoURL != "" {
		res, err = s.fetcher.Fetch(ctx, req.LogoURL)
		switch {
		case err == nil:
			defer res.Remove()
		case req.LogoOptional && !errors.Is(err, context.Canceled):
			log.Warn("failed to download logo, continuing without logo",
				slog.String("logo_url", req.LogoURL), logging.Error(err))
			res = nil
		default:
			return Result{}, err
		}
	}
	logoPath := ""
	if res != nil {
		logoPath = res.Path
	}

	png, err := s.renderer.Render(ctx, m, req.Style, logoPath)
	if err != nil {
		return Result{}, err
	}
	if err := s.store.Write(ctx, path, png); err != nil {
		return Result{}, err
	}

	log.Info("QR code generated and saved",
		slog.Int("bytes", len(png)),
		slog.Bool("logo", logoPath != ""),
		logging.Elapsed(start))
	return Result{ImageURL: s.resolver.PublicURL(path, req.BaseURL), Path: path}, nil
}

// CheckCached reports the stored path for payload if it is an activation
// payload that has already been rendered. General payloads are never cached.
func (s *Service) CheckCached(ctx context.Context, payload string) (string, bool, error) {
	if storage.Classify(payload) != storage.ClassActivationCode {
		return "", false, nil
	}
	if _, ok := storage.ExtractCode(payload); !ok {
		return "", false, nil
	}
	path := s.resolver.Resolve(payload)
	ok, err := s.resolver.Exists(ctx, path)
	if err != nil || !ok {
		return "", false, err
	}
	return path, true, nil
}

// PublicURL exposes the resolver's URL mapping for callers holding a path.
func (s *Service) PublicURL(path, baseURL string) string {
	return s.resolver.PublicURL(path, baseURL)
}
