/*
Package carrier converts images to and from the flat sample buffers used by
package frame.

Pixels are laid out row by row, each contributing its red, green and blue
channel values followed by alpha when the image is not fully opaque. The stride
is therefore three for opaque images and four otherwise, and stepping through
the buffer by the stride visits the red channel of every pixel in turn. The
alpha channel is never modified so the stride of an image survives a round
trip through a lossless format.
*/
package carrier

import (
	"errors"
	"image"
	"image/draw"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/bodgit/lsb/frame"
	"golang.org/x/image/bmp"
)

const (
	// StrideOpaque is the stride of an image without an alpha channel
	StrideOpaque = 3
	// StrideAlpha is the stride of an image with an alpha channel
	StrideAlpha = 4
)

// Formats lists the lossless formats an image can be written in.
var Formats = []string{"png", "bmp"}

var (
	// ErrUnsupportedFormat is returned when writing a format that would
	// not preserve the samples exactly
	ErrUnsupportedFormat = errors.New("carrier: unsupported output format")
	errCorrupt           = errors.New("carrier: sample buffer does not match image size")
)

// Carrier holds the channel samples of an image.
type Carrier struct {
	Samples []uint8
	Stride  int
	Rect    image.Rectangle
}

// FromImage extracts the samples from m. The resulting carrier always has its
// top-left corner at (0, 0).
func FromImage(m image.Image) *Carrier {
	b := m.Bounds()

	n, ok := m.(*image.NRGBA)
	if !ok || n.Rect.Min != (image.Point{}) || n.Stride != 4*b.Dx() {
		n = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(n, n.Rect, m, b.Min, draw.Src)
	}

	c := &Carrier{
		Rect: n.Rect,
	}

	if n.Opaque() {
		c.Stride = StrideOpaque
		c.Samples = make([]uint8, 0, len(n.Pix)/4*StrideOpaque)
		for i := 0; i < len(n.Pix); i += 4 {
			c.Samples = append(c.Samples, n.Pix[i:i+StrideOpaque]...)
		}
	} else {
		c.Stride = StrideAlpha
		c.Samples = append([]uint8(nil), n.Pix...)
	}

	return c
}

// Image rebuilds an image from the samples.
func (c *Carrier) Image() (*image.NRGBA, error) {
	n := image.NewNRGBA(c.Rect)
	if len(c.Samples) != len(n.Pix)/4*c.Stride {
		return nil, errCorrupt
	}

	switch c.Stride {
	case StrideOpaque:
		for i, j := 0, 0; i < len(n.Pix); i, j = i+4, j+StrideOpaque {
			copy(n.Pix[i:], c.Samples[j:j+StrideOpaque])
			n.Pix[i+3] = 0xff
		}
	case StrideAlpha:
		copy(n.Pix, c.Samples)
	default:
		return nil, frame.ErrInvalidStride
	}

	return n, nil
}

// Capacity returns the longest message the carrier can hold.
func (c *Carrier) Capacity() int {
	return frame.Capacity(len(c.Samples), c.Stride)
}

// Decode reads an image from r and returns its carrier along with the format
// name, as reported by image.Decode.
func Decode(r io.Reader) (*Carrier, string, error) {
	m, format, err := image.Decode(r)
	if err != nil {
		return nil, "", err
	}
	return FromImage(m), format, nil
}

// Encode writes the carrier to w as an image in the given format.
func Encode(w io.Writer, c *Carrier, format string) error {
	var enc func(io.Writer, image.Image) error
	switch format {
	case "png":
		enc = png.Encode
	case "bmp":
		enc = bmp.Encode
	default:
		return ErrUnsupportedFormat
	}

	m, err := c.Image()
	if err != nil {
		return err
	}

	return enc(w, m)
}

// FormatFromPath picks the output format from the file extension, falling
// back to PNG.
func FormatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range Formats {
		if ext == f {
			return f
		}
	}
	return Formats[0]
}
