package render_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrstore/internal/qr"
	"github.com/cristianadrielbraun/qrstore/internal/render"
)

var (
	black = color.RGBA{0, 0, 0, 0xff}
	white = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

func encode(t *testing.T, payload string, level qr.Level) *qr.Matrix {
	t.Helper()
	m, err := qr.YeqownEncoder{}.Encode(payload, level)
	require.NoError(t, err)
	return m
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func near(a, b color.RGBA) bool {
	d := func(x, y uint8) bool { return math.Abs(float64(x)-float64(y)) <= 2 }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func style(t *testing.T, opts ...render.StyleOption) render.Style {
	t.Helper()
	s, err := render.NewStyle(opts...)
	require.NoError(t, err)
	return s
}

func TestNewStyleDefaults(t *testing.T) {
	t.Parallel()
	s := style(t)
	assert.Equal(t, "#1DB9B9", render.Hex(s.Dark))
	assert.Equal(t, "#FFFFFF", render.Hex(s.Light))
	assert.Equal(t, qr.LevelH, s.Level)
	assert.Equal(t, 4, s.Margin)
	assert.Equal(t, 1000, s.Width)
	assert.InDelta(t, 0.2, s.LogoFraction, 1e-9)
	assert.True(t, s.Rounded)
}

func TestNewStyleValidation(t *testing.T) {
	t.Parallel()
	for name, opt := range map[string]render.StyleOption{
		"negative margin": render.WithMargin(-1),
		"zero width":      render.WithWidth(0),
		"zero logo":       render.WithLogoFraction(0),
		"whole logo":      render.WithLogoFraction(1),
		"nan logo":        render.WithLogoFraction(math.NaN()),
		"bad level":       render.WithLevel(qr.Level('X')),
	} {
		_, err := render.NewStyle(opt)
		assert.ErrorIs(t, err, render.ErrInvalidStyle, name)
	}
}

func TestParseColor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#1DB9B9", color.RGBA{0x1d, 0xb9, 0xb9, 0xff}},
		{"ff0000", color.RGBA{0xff, 0, 0, 0xff}},
		{"#0f0", color.RGBA{0, 0xff, 0, 0xff}},
		{"transparent", color.RGBA{}},
		{"#FFFFFF80", color.RGBA{0x80, 0x80, 0x80, 0x80}},
	}
	for _, tt := range tests {
		got, err := render.ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "#12345", "zzzzzz", "red"} {
		_, err := render.ParseColor(bad)
		assert.ErrorIs(t, err, render.ErrInvalidStyle, bad)
	}
}

func TestComputeLayout(t *testing.T) {
	t.Parallel()
	lay, err := render.ComputeLayout(21, style(t))
	require.NoError(t, err)
	assert.Equal(t, render.Layout{ModuleSize: 47, SymbolSize: 987, Canvas: 995}, lay)

	_, err = render.ComputeLayout(25, style(t, render.WithWidth(30), render.WithMargin(4)))
	require.ErrorIs(t, err, render.ErrLayout)
}

func TestRenderExample(t *testing.T) {
	t.Parallel()
	m := encode(t, "https://example.com", qr.LevelH)
	s := style(t)

	out, err := render.NewRasterizer().Render(context.Background(), m, s, "")
	require.NoError(t, err)
	require.NotEmpty(t, out)

	img := decodePNG(t, out)
	b := img.Bounds()
	assert.Equal(t, b.Dx(), b.Dy())

	lay, err := render.ComputeLayout(m.Size(), s)
	require.NoError(t, err)
	assert.Equal(t, lay.Canvas, b.Dx())
	assert.Zero(t, (b.Dx()-2*s.Margin)%lay.ModuleSize)
	assert.Equal(t, m.Size(), (b.Dx()-2*s.Margin)/lay.ModuleSize)
}

func TestRenderTooSmall(t *testing.T) {
	t.Parallel()
	m := encode(t, "https://example.com", qr.LevelH)

	out, err := render.NewRasterizer().Render(context.Background(), m, style(t, render.WithWidth(20)), "")
	require.ErrorIs(t, err, render.ErrLayout)
	assert.Nil(t, out)

	_, err = render.NewRasterizer().Render(context.Background(), nil, style(t), "")
	require.ErrorIs(t, err, render.ErrLayout)
}

func TestRenderRejectsZeroStyle(t *testing.T) {
	t.Parallel()
	m := encode(t, "x", qr.LevelL)
	_, err := render.NewRasterizer().Render(context.Background(), m, render.Style{}, "")
	require.ErrorIs(t, err, render.ErrInvalidStyle)
}

func TestRenderDecodes(t *testing.T) {
	t.Parallel()
	const payload = "LPA:1$rsp.example.com$ABC123"

	for name, s := range map[string]render.Style{
		"rounded default colors": style(t, render.WithWidth(600), render.WithMargin(60)),
		"square black":           style(t, render.WithWidth(600), render.WithMargin(60), render.WithRounded(false), render.WithDark(black)),
	} {
		t.Run(name, func(t *testing.T) {
			m := encode(t, payload, s.Level)
			out, err := render.NewRasterizer().Render(context.Background(), m, s, "")
			require.NoError(t, err)

			bmp, err := gozxing.NewBinaryBitmapFromImage(decodePNG(t, out))
			require.NoError(t, err)
			res, err := zxqr.NewQRCodeReader().Decode(bmp, nil)
			require.NoError(t, err)
			assert.Equal(t, payload, res.GetText())
		})
	}
}

func TestRenderSquareModules(t *testing.T) {
	t.Parallel()
	const n = 21
	bits := make([]bool, n*n)
	bits[10*n+10] = true
	m, err := qr.NewMatrix(n, bits)
	require.NoError(t, err)

	s := style(t, render.WithWidth(218), render.WithMargin(4), render.WithRounded(false), render.WithDark(black), render.WithLight(white))
	out, err := render.NewRasterizer().Render(context.Background(), m, s, "")
	require.NoError(t, err)
	img := decodePNG(t, out)

	// 210 / 21 = 10 pixels per module.
	center := func(row, col int) color.RGBA { return rgbaAt(img, 4+col*10+5, 4+row*10+5) }

	assert.Equal(t, black, center(10, 10))
	assert.Equal(t, white, center(10, 11))
	assert.Equal(t, white, rgbaAt(img, 1, 1), "margin")

	for _, origin := range [][2]int{{0, 0}, {0, n - 7}, {n - 7, 0}} {
		r, c := origin[0], origin[1]
		assert.Equal(t, black, center(r, c), "outer ring")
		assert.Equal(t, white, center(r+1, c+1), "light block")
		assert.Equal(t, black, center(r+3, c+3), "core")
	}
	assert.Equal(t, white, center(n-1, n-1), "no fourth finder")
}

func TestRenderTranslucentLightReplacesInk(t *testing.T) {
	t.Parallel()
	const n = 21
	bits := make([]bool, n*n)
	for i := range bits {
		bits[i] = true
	}
	m, err := qr.NewMatrix(n, bits)
	require.NoError(t, err)

	junk := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(junk, []byte("not an image"), 0o644))

	for name, tc := range map[string]struct {
		light   string
		rounded bool
	}{
		"transparent square":  {"transparent", false},
		"transparent rounded": {"transparent", true},
		"half alpha square":   {"#FFFFFF80", false},
	} {
		t.Run(name, func(t *testing.T) {
			light, err := render.ParseColor(tc.light)
			require.NoError(t, err)
			s := style(t, render.WithWidth(218), render.WithMargin(4), render.WithRounded(tc.rounded),
				render.WithDark(black), render.WithLight(light))
			out, err := render.NewRasterizer().Render(context.Background(), m, s, junk)
			require.NoError(t, err)
			img := decodePNG(t, out)

			center := func(row, col int) color.RGBA { return rgbaAt(img, 4+col*10+5, 4+row*10+5) }
			for _, origin := range [][2]int{{0, 0}, {0, n - 7}, {n - 7, 0}} {
				r, c := origin[0], origin[1]
				assert.Equal(t, black, center(r, c), "outer ring")
				assert.True(t, near(light, center(r+1, c+1)), "light block is %v", center(r+1, c+1))
				assert.Equal(t, black, center(r+3, c+3), "core")
			}
			assert.True(t, near(light, rgbaAt(img, 109, 109)), "plate interior is %v", rgbaAt(img, 109, 109))
		})
	}
}

func writeLogoPNG(t *testing.T, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "logo.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

// redBounds returns the bounding box of strongly red pixels.
func redBounds(img image.Image) image.Rectangle {
	var r image.Rectangle
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := rgbaAt(img, x, y)
			if c.R > 200 && c.G < 60 && c.B < 60 {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}

func TestRenderLogoKeepsAspect(t *testing.T) {
	t.Parallel()
	red := color.RGBA{0xff, 0, 0, 0xff}
	svg := filepath.Join(t.TempDir(), "wide.svg")
	require.NoError(t, os.WriteFile(svg, []byte(
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 40 20"><rect x="0" y="0" width="40" height="20" fill="#ff0000"/></svg>`,
	), 0o644))

	for name, tc := range map[string]struct {
		path  string
		ratio float64
	}{
		"png wide": {writeLogoPNG(t, 300, 100, red), 3},
		"png tall": {writeLogoPNG(t, 100, 200, red), 0.5},
		"svg wide": {svg, 2},
	} {
		t.Run(name, func(t *testing.T) {
			m := encode(t, "https://example.com", qr.LevelH)
			s := style(t, render.WithDark(black), render.WithRounded(false))
			out, err := render.NewRasterizer().Render(context.Background(), m, s, tc.path)
			require.NoError(t, err)

			img := decodePNG(t, out)
			rb := redBounds(img)
			require.False(t, rb.Empty(), "logo not drawn")

			got := float64(rb.Dx()) / float64(rb.Dy())
			assert.InDelta(t, tc.ratio, got, tc.ratio*0.05)

			lay, err := render.ComputeLayout(m.Size(), s)
			require.NoError(t, err)
			footprint := float64(lay.SymbolSize) * s.LogoFraction
			assert.InDelta(t, footprint, float64(max(rb.Dx(), rb.Dy())), 3)

			mid := lay.Canvas / 2
			assert.True(t, rb.Overlaps(image.Rect(mid-1, mid-1, mid+1, mid+1)), "logo is centered")
		})
	}
}

func TestRenderBadLogoStillRenders(t *testing.T) {
	t.Parallel()
	junk := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(junk, []byte("not an image"), 0o644))

	m := encode(t, "https://example.com", qr.LevelH)
	s := style(t, render.WithDark(black), render.WithLight(white))
	for _, path := range []string{junk, filepath.Join(t.TempDir(), "missing.png")} {
		out, err := render.NewRasterizer().Render(context.Background(), m, s, path)
		require.NoError(t, err)

		img := decodePNG(t, out)
		mid := img.Bounds().Dx() / 2
		assert.True(t, near(white, rgbaAt(img, mid, mid)), "plate is drawn")
	}
}

func TestRenderCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := encode(t, "https://example.com", qr.LevelH)
	out, err := render.NewRasterizer().Render(ctx, m, style(t), "")
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
}
