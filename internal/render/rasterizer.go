package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"

	"github.com/cristianadrielbraun/qrstore/internal/logging"
	"github.com/cristianadrielbraun/qrstore/internal/qr"
)

const (
	cellRadius   = 0.3 // of module size
	plateRadius  = 0.1 // of logo footprint
	platePadding = 10  // pixels on each side of the footprint
	plateStroke  = 2
	finderSide   = 7
)

// Rasterizer draws module matrices as styled PNG images. It holds no
// per-render state and is safe for concurrent use.
type Rasterizer struct {
	logger      *slog.Logger
	compression png.CompressionLevel
}

// Option configures a Rasterizer.
type Option func(*Rasterizer)

func WithLogger(l *slog.Logger) Option {
	return func(r *Rasterizer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithCompression sets the PNG compression level.
func WithCompression(level png.CompressionLevel) Option {
	return func(r *Rasterizer) { r.compression = level }
}

func NewRasterizer(opts ...Option) *Rasterizer {
	r := &Rasterizer{logger: slog.Default(), compression: png.DefaultCompression}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Layout is the pixel geometry of a render.
type Layout struct {
	ModuleSize int
	SymbolSize int // modules × module size
	Canvas     int // symbol plus margins
}

// ComputeLayout fits an n-module symbol into style.Width. The canvas may be
// narrower than requested because module size is floored to whole pixels.
func ComputeLayout(n int, style Style) (Layout, error) {
	if n <= 0 {
		return Layout{}, fmt.Errorf("%w: empty matrix", ErrLayout)
	}
	ms := (style.Width - 2*style.Margin) / n
	if ms <= 0 {
		return Layout{}, fmt.Errorf("%w: width %d with margin %d leaves no room for %d modules; increase width or decrease margin",
			ErrLayout, style.Width, style.Margin, n)
	}
	return Layout{ModuleSize: ms, SymbolSize: n * ms, Canvas: n*ms + 2*style.Margin}, nil
}

type logoResult struct {
	img *image.RGBA
	err error
}

// Render draws m with style and returns PNG bytes. When logoPath is set the
// logo is decoded while the modules are drawn and placed on a plate in the
// center; a logo that fails to decode is logged and left out.
func (r *Rasterizer) Render(ctx context.Context, m *qr.Matrix, style Style, logoPath string) ([]byte, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: nil matrix", ErrLayout)
	}
	n := m.Size()
	lay, err := ComputeLayout(n, style)
	if err != nil {
		return nil, err
	}
	ms := float64(lay.ModuleSize)
	margin := float64(style.Margin)
	footprint := float64(lay.SymbolSize) * style.LogoFraction

	var logoCh chan logoResult
	if logoPath != "" {
		logoCh = make(chan logoResult, 1)
		go func() {
			img, err := loadLogo(logoPath, footprint)
			logoCh <- logoResult{img: img, err: err}
		}()
	}

	canvas := image.NewRGBA(image.Rect(0, 0, lay.Canvas, lay.Canvas))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(style.Light), image.Point{}, draw.Src)
	p := newPainter(canvas)

	radius := 0.0
	if style.Rounded {
		radius = ms * cellRadius
	}

	cell := func(row, col int) box {
		return box{margin + float64(col)*ms, margin + float64(row)*ms, ms, ms}
	}

	dark := make([]box, 0, n*n/2)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if m.Dark(row, col) {
				dark = append(dark, cell(row, col))
			}
		}
	}
	p.fill(style.Dark, radius, dark...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, origin := range [][2]int{{0, 0}, {0, n - finderSide}, {n - finderSide, 0}} {
		drawFinder(p, style, origin[0], origin[1], cell, ms, radius)
	}

	if logoCh != nil {
		center := float64(lay.Canvas) / 2
		area := box{center - footprint/2, center - footprint/2, footprint, footprint}
		plate := area.grow(platePadding)
		plateR := footprint * plateRadius

		// The stroke is centered on the plate edge.
		p.fill(style.Dark, plateR+plateStroke/2, plate.grow(plateStroke/2))
		p.replace(style.Light, max(plateR-plateStroke/2, 0.5), plate.grow(-plateStroke/2))

		var res logoResult
		select {
		case res = <-logoCh:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if res.err != nil {
			r.logger.Warn("failed to load logo, continuing without it",
				slog.String("path", logoPath), logging.Error(res.err))
		} else {
			drawLogo(canvas, res.img, center, plateR)
		}
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: r.compression}
	if err := enc.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("render: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// drawFinder paints one 7×7 finder pattern whose top-left module is
// (row, col): a ring of dark cells, a light 5×5 block and a dark 3×3 core.
func drawFinder(p *painter, style Style, row, col int, cell func(int, int) box, ms, radius float64) {
	ring := make([]box, 0, finderSide*finderSide)
	for i := 0; i < finderSide; i++ {
		for j := 0; j < finderSide; j++ {
			ring = append(ring, cell(row+i, col+j))
		}
	}
	p.fill(style.Dark, radius, ring...)

	origin := cell(row, col)
	p.replace(style.Light, radius, box{origin.x + ms, origin.y + ms, 5 * ms, 5 * ms})
	p.fill(style.Dark, radius, box{origin.x + 2*ms, origin.y + 2*ms, 3 * ms, 3 * ms})
}

// drawLogo composites img centered on (center, center) through a rounded mask.
func drawLogo(canvas *image.RGBA, img *image.RGBA, center, radius float64) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	x := int(center - float64(w)/2 + 0.5)
	y := int(center - float64(h)/2 + 0.5)
	mask := roundedMask(w, h, radius)
	draw.DrawMask(canvas, image.Rect(x, y, x+w, y+h), img, image.Point{}, mask, image.Point{}, draw.Over)
}
