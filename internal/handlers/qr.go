package handlers

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstore/internal/logo"
	"github.com/cristianadrielbraun/qrstore/internal/qr"
	"github.com/cristianadrielbraun/qrstore/internal/render"
	"github.com/cristianadrielbraun/qrstore/internal/service"
)

const (
	msgGenerated = "QR code generated and saved"
	msgCached    = "QR code retrieved from storage"
)

// allowedLogoTypes filters uploads by extension and declared MIME type.
var allowedLogoTypes = []string{"jpeg", "jpg", "png", "gif", "svg", "webp"}

// generateParams are the inputs shared by the GET and POST generate routes.
type generateParams struct {
	Data       string `form:"data"`
	LogoURL    string `form:"logoUrl"`
	ColorDark  string `form:"colorDark"`
	ColorLight string `form:"colorLight"`
	Level      string `form:"errorCorrectionLevel"`
	Margin     string `form:"margin"`
	Width      string `form:"width"`
	LogoSize   string `form:"logoSize"`
	Rounded    string `form:"roundedCorners"`
}

// bindParams reads params from the query, a form body or a JSON body.
func bindParams(c *gin.Context) (generateParams, error) {
	var p generateParams
	if c.ContentType() == gin.MIMEJSON {
		var raw map[string]any
		if err := c.ShouldBindJSON(&raw); err != nil {
			return p, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		str := func(k string) string {
			v, ok := raw[k]
			if !ok || v == nil {
				return ""
			}
			if s, ok := v.(string); ok {
				return s
			}
			b, _ := json.Marshal(v)
			return string(b)
		}
		p = generateParams{
			Data: str("data"), LogoURL: str("logoUrl"),
			ColorDark: str("colorDark"), ColorLight: str("colorLight"),
			Level: str("errorCorrectionLevel"), Margin: str("margin"), Width: str("width"),
			LogoSize: str("logoSize"), Rounded: str("roundedCorners"),
		}
		return p, nil
	}
	if err := c.ShouldBind(&p); err != nil {
		return p, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return p, nil
}

// style builds a validated render.Style. Empty fields keep their defaults.
func (p generateParams) style() (render.Style, error) {
	var opts []render.StyleOption
	if p.ColorDark != "" {
		c, err := render.ParseColor(p.ColorDark)
		if err != nil {
			return render.Style{}, err
		}
		opts = append(opts, render.WithDark(c))
	}
	if p.ColorLight != "" {
		c, err := render.ParseColor(p.ColorLight)
		if err != nil {
			return render.Style{}, err
		}
		opts = append(opts, render.WithLight(c))
	}
	if p.Level != "" {
		l, err := qr.ParseLevel(p.Level)
		if err != nil {
			return render.Style{}, err
		}
		opts = append(opts, render.WithLevel(l))
	}
	if p.Margin != "" {
		n, err := strconv.Atoi(strings.TrimSpace(p.Margin))
		if err != nil {
			return render.Style{}, fmt.Errorf("%w: margin %q is not an integer", render.ErrInvalidStyle, p.Margin)
		}
		opts = append(opts, render.WithMargin(n))
	}
	if p.Width != "" {
		n, err := strconv.Atoi(strings.TrimSpace(p.Width))
		if err != nil {
			return render.Style{}, fmt.Errorf("%w: width %q is not an integer", render.ErrInvalidStyle, p.Width)
		}
		opts = append(opts, render.WithWidth(n))
	}
	if p.LogoSize != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(p.LogoSize), 64)
		if err != nil {
			return render.Style{}, fmt.Errorf("%w: logoSize %q is not a number", render.ErrInvalidStyle, p.LogoSize)
		}
		opts = append(opts, render.WithLogoFraction(f))
	}
	if p.Rounded != "" {
		on, err := strconv.ParseBool(strings.TrimSpace(p.Rounded))
		if err != nil {
			return render.Style{}, fmt.Errorf("%w: roundedCorners %q is not a boolean", render.ErrInvalidStyle, p.Rounded)
		}
		opts = append(opts, render.WithRounded(on))
	}
	return render.NewStyle(opts...)
}

// normalizeHTTPURL validates a logo URL: http or https with a host.
func normalizeHTTPURL(s string) (string, error) {
	v := strings.TrimSpace(s)
	u, err := url.ParseRequestURI(v)
	if err != nil {
		return "", fmt.Errorf("%w: invalid logoUrl: %v", errBadRequest, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: only http and https logo URLs are supported", errBadRequest)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: logoUrl must include a valid host", errBadRequest)
	}
	if len(v) > 4096 {
		return "", fmt.Errorf("%w: logoUrl is too long", errBadRequest)
	}
	return u.String(), nil
}

// request turns params into a service request.
func (h *Handler) request(c *gin.Context, p generateParams) (service.Request, bool) {
	if strings.TrimSpace(p.Data) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "data parameter is required"})
		return service.Request{}, false
	}
	style, err := p.style()
	if err != nil {
		h.abortWithError(c, err)
		return service.Request{}, false
	}
	req := service.Request{Payload: p.Data, Style: style, BaseURL: h.requestBaseURL(c)}
	if p.LogoURL != "" {
		u, err := normalizeHTTPURL(p.LogoURL)
		if err != nil {
			h.abortWithError(c, err)
			return service.Request{}, false
		}
		req.LogoURL = u
	}
	return req, true
}

func (h *Handler) respond(c *gin.Context, req service.Request) {
	res, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	msg := msgGenerated
	if res.Cached {
		msg = msgCached
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"imageUrl": res.ImageURL,
		"cached":   res.Cached,
		"message":  msg,
	})
}

// GenerateGET renders from query parameters. A logo that cannot be
// downloaded is skipped.
func (h *Handler) GenerateGET(c *gin.Context) {
	p, err := bindParams(c)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	req, ok := h.request(c, p)
	if !ok {
		return
	}
	req.LogoOptional = true
	h.respond(c, req)
}

// GeneratePOST renders from a form, multipart or JSON body. An uploaded
// logoFile wins over logoUrl; a logo that cannot be downloaded fails the
// request.
func (h *Handler) GeneratePOST(c *gin.Context) {
	p, err := bindParams(c)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	req, ok := h.request(c, p)
	if !ok {
		return
	}

	if fh, err := c.FormFile("logoFile"); err == nil {
		res, err := h.adoptUpload(fh)
		if err != nil {
			h.abortWithError(c, err)
			return
		}
		req.Logo = res
		req.LogoURL = ""
	}
	h.respond(c, req)
}

// adoptUpload validates an uploaded logo and copies it into a temp file.
func (h *Handler) adoptUpload(fh *multipart.FileHeader) (*logo.Resource, error) {
	if h.maxUpload > 0 && fh.Size > h.maxUpload {
		return nil, fmt.Errorf("%w: logo file exceeds %d bytes", errBadRequest, h.maxUpload)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fh.Filename)), ".")
	mime := strings.ToLower(fh.Header.Get("Content-Type"))
	if !allowedType(ext) || !allowedType(mime) {
		return nil, fmt.Errorf("%w: only image files are allowed (%s)", errBadRequest, strings.Join(allowedLogoTypes, ", "))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open upload: %v", errBadRequest, err)
	}
	defer f.Close()
	return h.uploads.FromReader(f, fh.Filename)
}

func allowedType(s string) bool {
	for _, t := range allowedLogoTypes {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// Cached reports whether an image for data is already stored.
func (h *Handler) Cached(c *gin.Context) {
	data := c.Query("data")
	if strings.TrimSpace(data) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "data parameter is required"})
		return
	}
	path, ok, err := h.svc.CheckCached(c.Request.Context(), data)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"cached": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cached": true, "imageUrl": h.svc.PublicURL(path, h.requestBaseURL(c))})
}
