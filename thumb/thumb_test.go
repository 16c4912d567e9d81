package thumb

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSize(t *testing.T) {
	tables := []struct {
		dx, dy int
		w, h   int
	}{
		{10, 10, 10, 10},
		{64, 40, 64, 40},
		{128, 80, 64, 40},
		{640, 480, 53, 40},
		{1000, 100, 64, 6},
		{100, 1000, 4, 40},
		{10000, 1, 64, 1},
	}

	for _, table := range tables {
		w, h := Size(table.dx, table.dy)
		assert.Equal(t, table.w, w, "%dx%d", table.dx, table.dy)
		assert.Equal(t, table.h, h, "%dx%d", table.dx, table.dy)
	}
}

func TestImage(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 320, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 320; x++ {
			m.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), uint8(x ^ y), 0xff})
		}
	}

	pm, err := Image(m)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, Width, Height), pm.Bounds())
	assert.True(t, len(pm.Palette) <= Colors)

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, m))

	d, err := png.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, pm.Bounds(), d.Bounds())
}

func TestImageEmpty(t *testing.T) {
	_, err := Image(image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	assert.Error(t, err)
}
