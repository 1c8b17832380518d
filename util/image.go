package util

import (
	"image"

	"golang.org/x/image/draw"
)

// ToNRGBA 把任意图像转成原点为 (0,0) 的 NRGBA
// 没有 alpha 的图像会得到完全不透明的 alpha 通道
// 已经是 NRGBA 且原点为 (0,0) 时原样返回
func ToNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return nrgba
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
