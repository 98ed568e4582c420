package logo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// UserAgent is sent with every logo request.
	UserAgent = "QRCode-Logo-Generator/1.0"

	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 5
	DefaultMaxBytes     = 5 << 20
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads remote logos into temp files.
type Fetcher struct {
	client       Doer
	timeout      time.Duration
	maxRedirects int
	maxBytes     int64
	tempDir      string
	logger       *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the HTTP client. The client should not follow
// redirects itself, or the hop limit never applies.
func WithClient(c Doer) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithTimeout bounds a whole fetch, redirects included.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxRedirects caps the number of redirect hops.
func WithMaxRedirects(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxRedirects = n
		}
	}
}

// WithMaxBytes limits the logo size. Zero disables the limit.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxBytes = n
		}
	}
}

// WithTempDir sets where temp logo files are created.
func WithTempDir(dir string) Option {
	return func(f *Fetcher) { f.tempDir = dir }
}

func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher returns a Fetcher with a 30s timeout, a 5 hop redirect cap and
// a 5 MiB size limit unless overridden.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout:      DefaultTimeout,
		maxRedirects: DefaultMaxRedirects,
		maxBytes:     DefaultMaxBytes,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads rawURL into a temp file, following redirects up to the
// configured limit. No temp file survives a failed fetch.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	current, err := url.Parse(rawURL)
	if err != nil {
		return nil, &DownloadError{URL: rawURL, Reason: "invalid url", Err: err}
	}
	for hop := 0; ; hop++ {
		if current.Scheme != "http" && current.Scheme != "https" {
			return nil, &DownloadError{URL: current.String(), Reason: fmt.Sprintf("unsupported scheme %q", current.Scheme)}
		}

		res, location, err := f.fetchOnce(ctx, current)
		if err != nil {
			return nil, err
		}
		if location == "" {
			return res, nil
		}
		if hop >= f.maxRedirects {
			return nil, fmt.Errorf("%w: %s (limit %d)", ErrTooManyRedirects, rawURL, f.maxRedirects)
		}
		next, err := current.Parse(location)
		if err != nil {
			return nil, &DownloadError{URL: current.String(), Reason: "invalid redirect location", Err: err}
		}
		f.logger.Debug("following logo redirect",
			slog.String("from", current.String()),
			slog.String("to", next.String()),
			slog.Int("hop", hop+1))
		current = next
	}
}

// fetchOnce performs a single GET. It returns a non-empty location for a
// redirect, otherwise the downloaded resource.
func (f *Fetcher) fetchOnce(ctx context.Context, u *url.URL) (*Resource, string, error) {
	target := u.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", &DownloadError{URL: target, Reason: "build request", Err: err}
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", f.transportError(ctx, target, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		if loc := resp.Header.Get("Location"); loc != "" {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
			return nil, loc, nil
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &DownloadError{URL: target, StatusCode: resp.StatusCode}
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(strings.ToLower(ct), "image/") {
		f.logger.Warn("logo response is not an image", slog.String("url", target), slog.String("content_type", ct))
	}

	res, err := f.spool(resp.Body, filepath.Ext(u.Path), ct)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", f.transportError(ctx, target, err)
		}
		var de *DownloadError
		if errors.As(err, &de) {
			de.URL = target
			return nil, "", de
		}
		return nil, "", &DownloadError{URL: target, Reason: "read body", Err: err}
	}
	return res, "", nil
}

// FromReader copies an uploaded logo into a temp file under the same size
// limit as remote logos. name only supplies the file extension.
func (f *Fetcher) FromReader(r io.Reader, name string) (*Resource, error) {
	res, err := f.spool(r, filepath.Ext(name), "")
	if err != nil {
		var de *DownloadError
		if errors.As(err, &de) {
			de.URL = name
			return nil, de
		}
		return nil, &DownloadError{URL: name, Reason: "read upload", Err: err}
	}
	return res, nil
}

// spool writes r to a new temp file, removing it again on any failure.
func (f *Fetcher) spool(r io.Reader, ext, contentType string) (*Resource, error) {
	if f.tempDir != "" {
		if err := os.MkdirAll(f.tempDir, 0o755); err != nil {
			return nil, fmt.Errorf("create temp dir: %w", err)
		}
	}
	if len(ext) > 8 || strings.ContainsAny(ext, `/\*`) {
		ext = ""
	}
	tmp, err := os.CreateTemp(f.tempDir, "logo_*"+strings.ToLower(ext))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()

	src := r
	if f.maxBytes > 0 {
		src = io.LimitReader(r, f.maxBytes+1)
	}
	n, err := io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	switch {
	case err != nil:
		removeFile(f.logger, name)
		return nil, err
	case n == 0:
		removeFile(f.logger, name)
		return nil, &DownloadError{Reason: "empty body"}
	case f.maxBytes > 0 && n > f.maxBytes:
		removeFile(f.logger, name)
		return nil, &DownloadError{Reason: fmt.Sprintf("too large (limit %d bytes)", f.maxBytes)}
	}
	return &Resource{Path: name, Size: n, ContentType: contentType, logger: f.logger}, nil
}

// transportError classifies a failed request or body read. A deadline on the
// fetch context becomes ErrTimeout; caller cancellation is passed through.
func (f *Fetcher) transportError(ctx context.Context, target string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %s after %s", ErrTimeout, target, f.timeout)
	case errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("logo: fetch %s: %w", target, context.Canceled)
	}
	return &DownloadError{URL: target, Err: err}
}
