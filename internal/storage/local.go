package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore keeps objects as files under a root directory.
type LocalStore struct {
	root string
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore creates root and its fixed subdirectories if they are missing.
func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty storage root", ErrInvalidConfig)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve root: %v", ErrStorage, err)
	}
	for _, dir := range []string{abs, filepath.Join(abs, DirActivationCode), filepath.Join(abs, DirGeneral)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create %s: %v", ErrStorage, dir, err)
		}
	}
	return &LocalStore{root: abs}, nil
}

// Root returns the absolute storage root.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) path(p string) (string, error) {
	cleaned, err := CleanPath(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

// Write stores data atomically: it writes a temp file next to the target
// and renames it into place, so readers never observe a partial image.
func (s *LocalStore) Write(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := s.path(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("%w: create parent of %s: %v", ErrStorage, p, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".write-*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", ErrStorage, p, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrStorage, p, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrStorage, p, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: chmod %s: %v", ErrStorage, p, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("%w: rename %s: %v", ErrStorage, p, err)
	}
	committed = true
	return nil
}

// Open returns the file stored at p.
func (s *LocalStore) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := s.path(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorage, p, err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: stat %s: %v", ErrStorage, p, err)
	}
	if fi.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return f, nil
}

// Exists reports whether a regular file is stored at p.
func (s *LocalStore) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	src, err := s.path(p)
	if err != nil {
		return false, err
	}
	fi, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat %s: %v", ErrStorage, p, err)
	}
	return fi.Mode().IsRegular(), nil
}
