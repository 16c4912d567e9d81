/*
Package thumb implements the small previews stored alongside each embedding
in the ledger.

A preview fits within 64 by 40 pixels, keeps the aspect ratio of the source
image and uses a single palette of at most 16 colors. It is written as a
paletted PNG so it stays a few hundred bytes in size.
*/
package thumb

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"
)

const (
	// Width is the maximum width of a preview
	Width = 64
	// Height is the maximum height of a preview
	Height = 40
	// Colors is the maximum number of colors in a preview
	Colors = 16
)

var errEmpty = errors.New("thumb: image is empty")

// Size returns the dimensions of the preview for an image of the given size.
func Size(dx, dy int) (int, int) {
	if dx <= Width && dy <= Height {
		return dx, dy
	}
	// Compare Width/dx with Height/dy without division
	if Width*dy > Height*dx {
		w := dx * Height / dy
		if w < 1 {
			w = 1
		}
		return w, Height
	}
	h := dy * Width / dx
	if h < 1 {
		h = 1
	}
	return Width, h
}

// Image returns the preview for m.
func Image(m image.Image) (*image.Paletted, error) {
	b := m.Bounds()
	if b.Empty() {
		return nil, errEmpty
	}

	w, h := Size(b.Dx(), b.Dy())
	r := image.Rect(0, 0, w, h)

	scaled := image.NewRGBA(r)
	draw.ApproxBiLinear.Scale(scaled, r, m, b, draw.Src, nil)

	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(r, q.Quantize(make(color.Palette, 0, Colors), scaled))
	draw.Draw(pm, r, scaled, image.Point{}, draw.Src)

	return pm, nil
}

// Encode writes the preview for m to w as a PNG.
func Encode(w io.Writer, m image.Image) error {
	pm, err := Image(m)
	if err != nil {
		return err
	}
	return png.Encode(w, pm)
}
