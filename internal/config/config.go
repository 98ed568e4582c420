// Package config loads process settings from the environment, reading a
// .env file first when one is present.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/cristianadrielbraun/qrstore/internal/storage"
)

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Port    string `env:"PORT" envDefault:"8080"`
	BaseURL string `env:"BASE_URL"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"local"`
	StorageRoot   string `env:"STORAGE_ROOT" envDefault:"./storage"`
	TempDir       string `env:"TEMP_DIR"`

	MatrixCacheSize  int           `env:"MATRIX_CACHE_SIZE" envDefault:"100"`
	LogoTimeout      time.Duration `env:"LOGO_TIMEOUT" envDefault:"30s"`
	LogoMaxRedirects int           `env:"LOGO_MAX_REDIRECTS" envDefault:"5"`
	LogoMaxBytes     int64         `env:"LOGO_MAX_BYTES" envDefault:"5242880"`

	S3 S3 `envPrefix:"S3_"`
}

type S3 struct {
	Bucket          string `env:"BUCKET"`
	Region          string `env:"REGION"`
	Endpoint        string `env:"ENDPOINT"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	Prefix          string `env:"PREFIX"`
	ForcePathStyle  bool   `env:"FORCE_PATH_STYLE"`
}

// Load reads .env files (missing files are fine), parses the environment and
// validates the result.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	if cfg.TempDir == "" {
		cfg.TempDir = filepath.Join(os.TempDir(), "qrstore")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that env parsing cannot.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.StorageDriver) {
	case DriverLocal:
		if c.StorageRoot == "" {
			errs = append(errs, errors.New("STORAGE_ROOT is required for the local driver"))
		}
	case DriverS3:
		if c.S3.Bucket == "" || c.S3.Region == "" {
			errs = append(errs, errors.New("S3_BUCKET and S3_REGION are required for the s3 driver"))
		}
		if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
			errs = append(errs, errors.New("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	if c.MatrixCacheSize <= 0 {
		errs = append(errs, fmt.Errorf("MATRIX_CACHE_SIZE must be positive, got %d", c.MatrixCacheSize))
	}
	if c.LogoTimeout <= 0 {
		errs = append(errs, fmt.Errorf("LOGO_TIMEOUT must be positive, got %s", c.LogoTimeout))
	}
	if c.LogoMaxRedirects < 0 {
		errs = append(errs, fmt.Errorf("LOGO_MAX_REDIRECTS must not be negative, got %d", c.LogoMaxRedirects))
	}
	if c.LogoMaxBytes < 0 {
		errs = append(errs, fmt.Errorf("LOGO_MAX_BYTES must not be negative, got %d", c.LogoMaxBytes))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// S3Config converts the S3 settings for storage.NewS3Store.
func (c Config) S3Config() storage.S3Config {
	return storage.S3Config{
		Bucket:         c.S3.Bucket,
		Region:         c.S3.Region,
		Endpoint:       c.S3.Endpoint,
		AccessKeyID:    c.S3.AccessKeyID,
		SecretKey:      c.S3.SecretAccessKey,
		Prefix:         c.S3.Prefix,
		ForcePathStyle: c.S3.ForcePathStyle,
	}
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
