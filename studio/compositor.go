package studio

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Options 合成参数，服务启动时固定，不对调用方开放
type Options struct {
	Padding      int         // 主体四周留白
	ShadowOffset int         // 阴影在 x、y 方向上的偏移
	Background   color.NRGBA // 画布底色
	ShadowColor  color.NRGBA // 阴影填充色（含透明度）
	ShadowBlur   float64     // 高斯模糊 sigma
}

// DefaultOptions 商品图的默认参数，阴影落在主体右下方
func DefaultOptions() Options {
	return Options{
		Padding:      40,
		ShadowOffset: 10,
		Background:   color.NRGBA{R: 0xF5, G: 0xF5, B: 0xF5, A: 0xFF},
		ShadowColor:  color.NRGBA{A: 80},
		ShadowBlur:   15,
	}
}

var ErrEmptyImage = errors.New("image has no pixels")

// Compositor 把抠好的主体贴到带阴影的纯色画布上
// 只持有不可变的参数，可以被多个请求并发使用
type Compositor struct {
	opts Options
}

func NewCompositor(opts Options) *Compositor {
	opts.Background.A = 0xFF
	return &Compositor{opts: opts}
}

// AddBackground 生成合成图
//
//	画布 = 原图尺寸 + 2*padding，填充底色
//	阴影 = 与原图等大的半透明黑色矩形，高斯模糊后贴在 padding+offset 处
//	主体 = 转成 RGBA 后按自身 alpha 贴在 padding 处
func (c *Compositor) AddBackground(img image.Image) (*image.NRGBA, error) {
	subject := ToRGBA(img)
	w, h := subject.Rect.Dx(), subject.Rect.Dy()
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyImage
	}

	p := c.opts.Padding
	canvas := imaging.New(w+2*p, h+2*p, c.opts.Background)

	at := p + c.opts.ShadowOffset
	canvas = imaging.Overlay(canvas, c.shadowLayer(w, h), image.Pt(at, at), 1.0)

	canvas = imaging.Overlay(canvas, subject, image.Pt(p, p), 1.0)
	return canvas, nil
}

// shadowLayer 生成模糊后的阴影层，左上角就是阴影矩形的左上角
// imaging.Blur 在图像边界处会重新归一化权重，均匀填充的图层模糊后仍然均匀，
// 所以先把阴影矩形放进透明边框里再模糊，然后裁掉左边和上边的边框，
// 渐隐只出现在右下方，不会越过主体的左上边缘
func (c *Compositor) shadowLayer(w, h int) *image.NRGBA {
	layer := imaging.New(w, h, c.opts.ShadowColor)
	if c.opts.ShadowBlur <= 0 {
		return layer
	}

	margin := int(math.Ceil(c.opts.ShadowBlur * 3))
	frame := imaging.New(w+2*margin, h+2*margin, color.NRGBA{})
	frame = imaging.Paste(frame, layer, image.Pt(margin, margin))
	blurred := imaging.Blur(frame, c.opts.ShadowBlur)
	return imaging.Crop(blurred, image.Rect(margin, margin, w+2*margin, h+2*margin))
}
