package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstore/internal/storage"
)

// Storage streams a stored image. Only rendered PNGs under the storage
// subdirectories are served.
func (h *Handler) Storage(c *gin.Context) {
	p := strings.TrimPrefix(c.Param("path"), "/")
	if !storage.IsImagePath(p) {
		h.abortWithError(c, fmt.Errorf("%w: %s", storage.ErrNotFound, p))
		return
	}
	rc, err := h.store.Open(c.Request.Context(), p)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, -1, "image/png", rc, nil)
}
