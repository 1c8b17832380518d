package rembg

import (
	"image"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// ApplyMask 把灰度遮罩写进 alpha 通道，颜色保持不变
// 遮罩和原图尺寸不一致时，先用 Lanczos3 把遮罩缩放到原图大小
func ApplyMask(img image.Image, mask *image.Gray) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	if mask.Rect.Dx() != w || mask.Rect.Dy() != h {
		mask = toGray(resize.Resize(uint(w), uint(h), mask, resize.Lanczos3))
	}

	for y := 0; y < h; y++ {
		row := y * dst.Stride
		for x := 0; x < w; x++ {
			dst.Pix[row+x*4+3] = mask.GrayAt(mask.Rect.Min.X+x, mask.Rect.Min.Y+y).Y
		}
	}
	return dst
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g.Set(x, y, img.At(x, y))
		}
	}
	return g
}
