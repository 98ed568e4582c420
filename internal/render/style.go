package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/cristianadrielbraun/qrstore/internal/qr"
)

const (
	DefaultLevel        = qr.LevelH
	DefaultMargin       = 4
	DefaultWidth        = 1000
	DefaultLogoFraction = 0.2
)

var (
	DefaultDark  = MustParseColor("#1DB9B9")
	DefaultLight = MustParseColor("#FFFFFF")
)

// Style controls how a matrix is drawn. Build it with NewStyle; the zero
// value is not valid.
type Style struct {
	Dark         color.RGBA
	Light        color.RGBA
	Level        qr.Level
	Margin       int // pixels of quiet zone on each side
	Width        int // requested canvas width in pixels
	LogoFraction float64
	Rounded      bool
}

// StyleOption configures a Style.
type StyleOption func(*Style)

func WithDark(c color.RGBA) StyleOption  { return func(s *Style) { s.Dark = c } }
func WithLight(c color.RGBA) StyleOption { return func(s *Style) { s.Light = c } }
func WithLevel(l qr.Level) StyleOption   { return func(s *Style) { s.Level = l } }
func WithMargin(px int) StyleOption      { return func(s *Style) { s.Margin = px } }
func WithWidth(px int) StyleOption       { return func(s *Style) { s.Width = px } }
func WithRounded(on bool) StyleOption    { return func(s *Style) { s.Rounded = on } }

// WithLogoFraction sets the logo footprint as a fraction of the symbol side.
func WithLogoFraction(f float64) StyleOption {
	return func(s *Style) { s.LogoFraction = f }
}

// NewStyle applies opts over the defaults and validates the result.
func NewStyle(opts ...StyleOption) (Style, error) {
	s := Style{
		Dark:         DefaultDark,
		Light:        DefaultLight,
		Level:        DefaultLevel,
		Margin:       DefaultMargin,
		Width:        DefaultWidth,
		LogoFraction: DefaultLogoFraction,
		Rounded:      true,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if err := s.Validate(); err != nil {
		return Style{}, err
	}
	return s, nil
}

// Validate reports the first out-of-domain field.
func (s Style) Validate() error {
	switch {
	case !s.Level.Valid():
		return fmt.Errorf("%w: error correction level %q", ErrInvalidStyle, string(s.Level))
	case s.Margin < 0:
		return fmt.Errorf("%w: margin %d must not be negative", ErrInvalidStyle, s.Margin)
	case s.Width <= 0:
		return fmt.Errorf("%w: width %d must be positive", ErrInvalidStyle, s.Width)
	case math.IsNaN(s.LogoFraction) || s.LogoFraction <= 0 || s.LogoFraction >= 1:
		return fmt.Errorf("%w: logo size %v must be in (0, 1)", ErrInvalidStyle, s.LogoFraction)
	}
	return nil
}
