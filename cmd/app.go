package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cristianadrielbraun/qrstore/internal/config"
	"github.com/cristianadrielbraun/qrstore/internal/logging"
	"github.com/cristianadrielbraun/qrstore/internal/logo"
	"github.com/cristianadrielbraun/qrstore/internal/qr"
	"github.com/cristianadrielbraun/qrstore/internal/render"
	"github.com/cristianadrielbraun/qrstore/internal/service"
	"github.com/cristianadrielbraun/qrstore/internal/storage"
)

// app is the wired set of components shared by the commands.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	store   storage.Store
	fetcher *logo.Fetcher
	svc     *service.Service
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	fetcher := logo.NewFetcher(
		logo.WithTimeout(cfg.LogoTimeout),
		logo.WithMaxRedirects(cfg.LogoMaxRedirects),
		logo.WithMaxBytes(cfg.LogoMaxBytes),
		logo.WithTempDir(cfg.TempDir),
		logo.WithLogger(logger),
	)
	svc := service.New(store,
		service.WithCache(qr.NewCache(qr.YeqownEncoder{}, qr.WithCapacity(cfg.MatrixCacheSize), qr.WithCacheLogger(logger))),
		service.WithResolver(storage.NewResolver(store, storage.WithBaseURL(cfg.BaseURL))),
		service.WithFetcher(fetcher),
		service.WithRenderer(render.NewRasterizer(render.WithLogger(logger))),
		service.WithLogger(logger),
	)

	return &app{cfg: cfg, logger: logger, store: store, fetcher: fetcher, svc: svc}, nil
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch strings.ToLower(cfg.StorageDriver) {
	case config.DriverS3:
		slog.Info("using s3 storage", slog.String("bucket", cfg.S3.Bucket), slog.String("prefix", cfg.S3.Prefix))
		return storage.NewS3Store(ctx, cfg.S3Config())
	default:
		s, err := storage.NewLocalStore(cfg.StorageRoot)
		if err != nil {
			return nil, err
		}
		slog.Info("using local storage", slog.String("root", s.Root()))
		return s, nil
	}
}
