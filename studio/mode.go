package studio

import (
	"image"
	"image/color"

	"github.com/chaos-io/bgstudio/util"
)

// Mode 图像的颜色模式，只区分有无 alpha 通道
type Mode int

const (
	ModeRGB Mode = iota
	ModeRGBA
)

func (m Mode) String() string {
	switch m {
	case ModeRGBA:
		return "RGBA"
	default:
		return "RGB"
	}
}

// ModeOf 根据颜色模型判断图像是否带 alpha 通道
// 调色板图像只要有一个非不透明的颜色就算 RGBA
func ModeOf(img image.Image) Mode {
	switch m := img.ColorModel(); m {
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model,
		color.AlphaModel, color.Alpha16Model:
		return ModeRGBA
	default:
		if p, ok := m.(color.Palette); ok {
			for _, c := range p {
				if _, _, _, a := c.RGBA(); a != 0xffff {
					return ModeRGBA
				}
			}
		}
		return ModeRGB
	}
}

// ToRGBA 统一转成 RGBA 模式，见 util.ToNRGBA
func ToRGBA(img image.Image) *image.NRGBA {
	return util.ToNRGBA(img)
}
