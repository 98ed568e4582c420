package logo

import (
	"errors"
	"fmt"
)

var (
	// ErrDownload matches every failed logo download, including *DownloadError.
	ErrDownload = errors.New("logo: download failed")

	// ErrTimeout is returned when a fetch exceeds its time bound.
	ErrTimeout = errors.New("logo: download timed out")

	// ErrTooManyRedirects is returned when a redirect chain exceeds the hop limit.
	ErrTooManyRedirects = errors.New("logo: too many redirects")
)

// DownloadError describes a failed download. StatusCode is zero when the
// failure was not an HTTP status.
type DownloadError struct {
	URL        string
	StatusCode int
	Reason     string
	Err        error
}

func (e *DownloadError) Error() string {
	msg := "logo: download " + e.URL + " failed"
	switch {
	case e.StatusCode != 0:
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	case e.Reason != "":
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrDownload) true for any *DownloadError.
func (e *DownloadError) Is(target error) bool { return target == ErrDownload }

func (e *DownloadError) Unwrap() error { return e.Err }
