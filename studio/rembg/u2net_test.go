package rembg

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestU2Net_MissingModel(t *testing.T) {
	t.Parallel()

	u := NewU2Net(filepath.Join(t.TempDir(), "missing.onnx"), "")
	_, err := u.Remove(context.Background(), image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "u2net model not found")

	assert.Error(t, u.Ping(context.Background()))
	assert.NoError(t, u.Close())
}

func TestU2Net_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewU2Net("u2net.onnx", "").Remove(ctx, image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestU2NetInput_Normalization(t *testing.T) {
	t.Parallel()

	white := image.NewNRGBA(image.Rect(0, 0, 50, 30))
	for i := range white.Pix {
		white.Pix[i] = 255
	}

	data := u2netInput(white)
	plane := u2netSize * u2netSize
	require.Len(t, data, 3*plane)

	// 除以最大值后全是 1，再按 mean/std 归一化
	for c := 0; c < 3; c++ {
		want := (1 - u2netMean[c]) / u2netStd[c]
		assert.InDelta(t, want, data[c*plane], 3e-2)
		assert.InDelta(t, want, data[c*plane+plane/2], 3e-2)
	}
}

func TestU2NetInput_IgnoresAlpha(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 100, G: 100, B: 100, A: 0})
		}
	}

	data := u2netInput(img)
	want := (1 - u2netMean[0]) / u2netStd[0]
	assert.InDelta(t, want, data[0], 3e-2)
}

func TestU2NetMask(t *testing.T) {
	t.Parallel()

	pred := []float32{-2, 0, 2, 1}
	mask := u2netMask(pred, 2)
	assert.Equal(t, []uint8{0, 127, 255, 191}, mask.Pix)

	flat := u2netMask([]float32{3, 3, 3, 3}, 2)
	assert.Equal(t, []uint8{0, 0, 0, 0}, flat.Pix)

	short := u2netMask([]float32{1}, 2)
	assert.Equal(t, image.Rect(0, 0, 2, 2), short.Rect)
}
