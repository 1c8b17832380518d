package studio

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeOf(t *testing.T) {
	t.Parallel()

	r := image.Rect(0, 0, 2, 2)
	tests := []struct {
		name string
		img  image.Image
		want Mode
	}{
		{"nrgba", image.NewNRGBA(r), ModeRGBA},
		{"rgba", image.NewRGBA(r), ModeRGBA},
		{"gray", image.NewGray(r), ModeRGB},
		{"ycbcr", image.NewYCbCr(r, image.YCbCrSubsampleRatio420), ModeRGB},
		{"opaque palette", image.NewPaletted(r, color.Palette{color.Black, color.White}), ModeRGB},
		{"transparent palette", image.NewPaletted(r, color.Palette{color.Transparent, color.White}), ModeRGBA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ModeOf(tt.img))
		})
	}
}

func TestToRGBA_SynthesizesOpaqueAlpha(t *testing.T) {
	t.Parallel()

	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(40 * i)
	}

	got := ToRGBA(gray)
	require.Equal(t, image.Rect(0, 0, 3, 2), got.Rect)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			px := got.NRGBAAt(x, y)
			assert.Equal(t, gray.GrayAt(x, y).Y, px.R)
			assert.Equal(t, uint8(0xFF), px.A)
		}
	}
	assert.Equal(t, ModeRGBA, ModeOf(got))
}

func TestToRGBA_Idempotent(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 17)
	}

	once := ToRGBA(src)
	twice := ToRGBA(once)
	assert.Same(t, src, once)
	assert.Same(t, once, twice)
	assert.Equal(t, src.Pix, twice.Pix)
}

func TestToRGBA_RebasesOrigin(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(10, 20, 13, 22))
	src.SetNRGBA(10, 20, color.NRGBA{R: 1, G: 2, B: 3, A: 4})

	got := ToRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 3, 2), got.Rect)
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 4}, got.NRGBAAt(0, 0))
}
