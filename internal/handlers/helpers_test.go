package handlers_test

import (
	"image"
	"image/color"
)

func newLogo(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{0xcc, 0x22, 0x22, 0xff})
		}
	}
	return img
}
