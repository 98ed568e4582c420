package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstore/internal/logging"
	"github.com/cristianadrielbraun/qrstore/internal/logo"
	"github.com/cristianadrielbraun/qrstore/internal/qr"
	"github.com/cristianadrielbraun/qrstore/internal/render"
	"github.com/cristianadrielbraun/qrstore/internal/service"
	"github.com/cristianadrielbraun/qrstore/internal/storage"
)

// errBadRequest marks request parsing failures.
var errBadRequest = errors.New("bad request")

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, render.ErrInvalidStyle),
		errors.Is(err, render.ErrLayout),
		errors.Is(err, qr.ErrEncoding),
		errors.Is(err, qr.ErrInvalidLevel),
		errors.Is(err, storage.ErrInvalidPath):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, logo.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, logo.ErrDownload), errors.Is(err, logo.ErrTooManyRedirects):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes the JSON error body and logs server-side failures.
func (h *Handler) abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", logging.RequestID(c.GetString(requestIDKey)), logging.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"message": err.Error()}})
}
