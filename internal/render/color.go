package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseColor parses "#RRGGBB", "#RRGGBBAA", "#RGB" (the leading # is
// optional) or "transparent".
func ParseColor(s string) (color.RGBA, error) {
	v := strings.TrimSpace(s)
	if strings.EqualFold(v, "transparent") {
		return color.RGBA{}, nil
	}
	v = strings.TrimPrefix(v, "#")

	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 && len(v) != 8 {
		return color.RGBA{}, fmt.Errorf("%w: color %q", ErrInvalidStyle, s)
	}

	var ch [4]uint8
	ch[3] = 0xff
	for i := 0; i < len(v)/2; i++ {
		n, err := strconv.ParseUint(v[i*2:i*2+2], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("%w: color %q", ErrInvalidStyle, s)
		}
		ch[i] = uint8(n)
	}
	if ch[3] == 0xff {
		return color.RGBA{ch[0], ch[1], ch[2], 0xff}, nil
	}
	// color.RGBA is alpha-premultiplied.
	a := uint32(ch[3])
	return color.RGBA{
		R: uint8(uint32(ch[0]) * a / 0xff),
		G: uint8(uint32(ch[1]) * a / 0xff),
		B: uint8(uint32(ch[2]) * a / 0xff),
		A: ch[3],
	}, nil
}

// MustParseColor is ParseColor for constants; it panics on bad input.
func MustParseColor(s string) color.RGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats c as #RRGGBB, dropping alpha.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
