package render

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// maxLogoPixels bounds the declared size of a raster logo before it is
// decoded. Small compressed files can declare huge canvases.
const maxLogoPixels = 16 << 20

var (
	errEmptyLogo    = errors.New("logo has no pixels")
	errLogoTooLarge = errors.New("logo dimensions too large")
)

// fitAspect scales (w, h) so the longer side equals side.
func fitAspect(w, h, side float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return side, side
	}
	aspect := w / h
	if aspect > 1 {
		return side, side / aspect
	}
	return side * aspect, side
}

// loadLogo decodes the logo at path and scales it to fit a square of side
// pixels, keeping its aspect ratio. SVG files are rasterized directly at the
// target size.
func loadLogo(path string, side float64) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, _ := br.Peek(512)
	if isSVG(path, head) {
		return rasterizeSVG(br, side)
	}

	cfg, _, err := image.DecodeConfig(br)
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errEmptyLogo
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxLogoPixels {
		return nil, fmt.Errorf("%w: %dx%d", errLogoTooLarge, cfg.Width, cfg.Height)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	br.Reset(f)

	src, _, err := image.Decode(br)
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, errEmptyLogo
	}
	w, h := fitAspect(float64(b.Dx()), float64(b.Dy()), side)
	dst := image.NewRGBA(image.Rect(0, 0, pixels(w), pixels(h)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst, nil
}

func isSVG(path string, head []byte) bool {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return true
	}
	head = bytes.TrimSpace(head)
	return bytes.Contains(head, []byte("<svg")) && !bytes.HasPrefix(head, []byte("\x89PNG"))
}

func rasterizeSVG(r *bufio.Reader, side float64) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, fmt.Errorf("parse svg logo: %w", err)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		return nil, errEmptyLogo
	}
	w, h := fitAspect(icon.ViewBox.W, icon.ViewBox.H, side)
	pw, ph := pixels(w), pixels(h)
	icon.SetTarget(0, 0, float64(pw), float64(ph))

	dst := image.NewRGBA(image.Rect(0, 0, pw, ph))
	scanner := rasterx.NewScannerGV(pw, ph, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(pw, ph, scanner), 1)
	return dst, nil
}

func pixels(v float64) int {
	return max(1, int(math.Round(v)))
}
