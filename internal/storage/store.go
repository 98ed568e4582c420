package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// Subdirectories of the storage namespace.
const (
	DirActivationCode = "activation_code"
	DirGeneral        = "general"
)

// Store is byte-exact durable storage addressed by slash-separated relative paths.
type Store interface {
	// Write stores data at p, creating parent directories as needed.
	Write(ctx context.Context, p string, data []byte) error
	// Open returns a reader for the object at p, or ErrNotFound.
	Open(ctx context.Context, p string) (io.ReadCloser, error)
	// Exists reports whether an object is stored at p.
	Exists(ctx context.Context, p string) (bool, error)
}

// CleanPath normalizes a relative storage path and rejects anything that
// could escape the storage root.
func CleanPath(p string) (string, error) {
	if p == "" || strings.ContainsRune(p, '\\') || strings.ContainsRune(p, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	p = strings.TrimPrefix(p, "/")
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return cleaned, nil
}

// IsImagePath reports whether p names a rendered image: a .png file directly
// inside one of the storage subdirectories. Hidden and temporary files are
// excluded.
func IsImagePath(p string) bool {
	cleaned, err := CleanPath(p)
	if err != nil {
		return false
	}
	dir, name := path.Split(cleaned)
	if d := strings.TrimSuffix(dir, "/"); d != DirActivationCode && d != DirGeneral {
		return false
	}
	if strings.HasPrefix(name, ".") || len(name) <= len(".png") {
		return false
	}
	return strings.EqualFold(path.Ext(name), ".png")
}
