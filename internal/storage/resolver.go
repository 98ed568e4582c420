package storage

import (
	"context"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Class is the storage classification of a payload.
type Class int

const (
	// ClassGeneral payloads are stored under a time-based path.
	ClassGeneral Class = iota
	// ClassActivationCode payloads are stored under a path derived from their code.
	ClassActivationCode
)

func (c Class) String() string {
	if c == ClassActivationCode {
		return "activation_code"
	}
	return "general"
}

// activationScheme marks an eSIM activation-profile payload, e.g. "LPA:1$smdp.example.com$CODE".
const activationScheme = "LPA"

var (
	threeFieldRe = regexp.MustCompile(`LPA:.*?\$.*?\$(.+)`)
	schemeOnlyRe = regexp.MustCompile(`LPA:(.+)`)
)

// Classify returns ClassActivationCode when payload contains the activation scheme marker.
func Classify(payload string) Class {
	if strings.Contains(payload, activationScheme) {
		return ClassActivationCode
	}
	return ClassGeneral
}

// ExtractCode pulls the activation code out of an activation payload. It tries
// the three-field form first, then the last "$" segment, then everything after
// "LPA:".
func ExtractCode(payload string) (string, bool) {
	if Classify(payload) != ClassActivationCode {
		return "", false
	}

	if m := threeFieldRe.FindStringSubmatch(payload); m != nil && m[1] != "" {
		return strings.TrimSpace(m[1]), true
	}

	parts := strings.Split(payload, "$")
	if len(parts) >= 2 && strings.Contains(parts[0], activationScheme) {
		return strings.TrimSpace(parts[len(parts)-1]), true
	}

	if m := schemeOnlyRe.FindStringSubmatch(payload); m != nil && m[1] != "" {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

// safeCode reports whether code can be used verbatim as a file name.
func safeCode(code string) bool {
	if code == "" || code == "." || code == ".." || strings.Contains(code, "..") {
		return false
	}
	for _, r := range code {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// Resolver maps payloads to storage paths and public URLs.
type Resolver struct {
	store   Store
	baseURL string
	now     func() time.Time

	mu   sync.Mutex
	last int64
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithBaseURL sets the process-wide public base URL.
func WithBaseURL(u string) ResolverOption {
	return func(r *Resolver) { r.baseURL = u }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver returns a Resolver backed by store.
func NewResolver(store Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the relative storage path for payload. Activation payloads
// with a usable code map to activation_code/<code>.png; everything else gets a
// timestamped name that is unique per Resolver.
func (r *Resolver) Resolve(payload string) string {
	if Classify(payload) == ClassActivationCode {
		if code, ok := ExtractCode(payload); ok && safeCode(code) {
			return path.Join(DirActivationCode, code+".png")
		}
		// TODO: decide a deterministic name for malformed activation payloads; this
		// fallback defeats dedup for them.
		return path.Join(DirActivationCode, activationScheme+"_"+r.stamp()+".png")
	}
	return path.Join(DirGeneral, "qr_"+r.stamp()+".png")
}

// stamp returns the current Unix time in milliseconds, bumped forward when
// needed so that no two calls return the same value.
func (r *Resolver) stamp() string {
	ms := r.now().UnixMilli()
	r.mu.Lock()
	if ms <= r.last {
		ms = r.last + 1
	}
	r.last = ms
	r.mu.Unlock()
	return strconv.FormatInt(ms, 10)
}

// Exists reports whether something is already stored at p.
func (r *Resolver) Exists(ctx context.Context, p string) (bool, error) {
	return r.store.Exists(ctx, p)
}

// PublicURL returns {base}/storage/{p} with each path segment escaped. The
// base is override when set, else the configured base URL; with neither, a
// host-relative URL is returned.
func (r *Resolver) PublicURL(p, override string) string {
	segs := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	rel := "/storage/" + strings.Join(segs, "/")
	base := override
	if base == "" {
		base = r.baseURL
	}
	if base == "" {
		return rel
	}
	return strings.TrimRight(base, "/") + rel
}
