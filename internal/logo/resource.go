package logo

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/cristianadrielbraun/qrstore/internal/logging"
)

// Resource is a logo held in a local temp file. The caller owns it and must
// call Remove once the render is done.
type Resource struct {
	Path        string
	Size        int64
	ContentType string

	logger *slog.Logger
	once   sync.Once
}

// Remove deletes the temp file. It is safe to call more than once and on a
// nil Resource; failures are logged, not returned.
func (r *Resource) Remove() {
	if r == nil || r.Path == "" {
		return
	}
	r.once.Do(func() { removeFile(r.logger, r.Path) })
}

func removeFile(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to remove temp logo", slog.String("path", path), logging.Error(err))
	}
}
