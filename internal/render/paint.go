package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/srwiley/rasterx"
)

// box is an axis-aligned rectangle in canvas pixels.
type box struct {
	x, y, w, h float64
}

func (b box) grow(d float64) box {
	return box{b.x - d, b.y - d, b.w + 2*d, b.h + 2*d}
}

func (b box) rect() image.Rectangle {
	return image.Rect(int(b.x), int(b.y), int(b.x+b.w), int(b.y+b.h))
}

// painter fills shapes on an RGBA canvas. Rounded shapes go through the
// rasterx scanner and are anti-aliased; square ones are copied pixel exact.
type painter struct {
	dst     *image.RGBA
	scanner *rasterx.ScannerGV
	filler  *rasterx.Filler
}

func newPainter(dst *image.RGBA) *painter {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	filler := rasterx.NewFiller(w, h, scanner)
	return &painter{dst: dst, scanner: scanner, filler: filler}
}

// fill paints every box in c with the given corner radius. Boxes painted
// in one call are rasterized as a single path.
func (p *painter) fill(c color.RGBA, radius float64, boxes ...box) {
	if len(boxes) == 0 {
		return
	}
	if radius <= 0 {
		src := image.NewUniform(c)
		for _, b := range boxes {
			draw.Draw(p.dst, b.rect(), src, image.Point{}, draw.Over)
		}
		return
	}
	p.filler.SetColor(c)
	for _, b := range boxes {
		rasterx.AddRoundRect(b.x, b.y, b.x+b.w, b.y+b.h, radius, radius, 0, rasterx.RoundGap, p.filler)
	}
	p.filler.Draw()
	p.filler.Clear()
}

// replace paints b in c with Src compositing, so a translucent c overwrites
// earlier ink instead of blending with it. Rounded corners outside the shape
// keep what was there.
func (p *painter) replace(c color.RGBA, radius float64, b box) {
	if radius <= 0 {
		draw.Draw(p.dst, b.rect(), image.NewUniform(c), image.Point{}, draw.Src)
		return
	}
	r := b.grow(1).rect().Intersect(p.dst.Bounds())
	if r.Empty() {
		return
	}
	local := box{b.x - float64(r.Min.X), b.y - float64(r.Min.Y), b.w, b.h}
	mask := shapeMask(r.Dx(), r.Dy(), local, radius)
	draw.DrawMask(p.dst, r, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Src)
}

// roundedMask returns an alpha mask of size w×h that is opaque inside a
// rectangle with the given corner radius.
func roundedMask(w, h int, radius float64) *image.Alpha {
	return shapeMask(w, h, box{0, 0, float64(w), float64(h)}, radius)
}

// shapeMask rasterizes the rounded rectangle b into a w×h alpha mask.
func shapeMask(w, h int, b box, radius float64) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, mask, mask.Bounds())
	filler := rasterx.NewFiller(w, h, scanner)
	filler.SetColor(color.Opaque)
	rasterx.AddRoundRect(b.x, b.y, b.x+b.w, b.y+b.h, radius, radius, 0, rasterx.RoundGap, filler)
	filler.Draw()
	return mask
}
