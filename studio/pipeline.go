package studio

import (
	"context"
	"fmt"
	"image"

	"github.com/chaos-io/bgstudio/studio/rembg"
)

// Pipeline 串联抠图和合成，每个请求单独走一遍，中间结果不落地
type Pipeline struct {
	RemBG      rembg.Remover
	Compositor *Compositor
}

func NewPipeline(remover rembg.Remover, compositor *Compositor) *Pipeline {
	if remover == nil {
		remover = rembg.NewPassthrough()
	}
	if compositor == nil {
		compositor = NewCompositor(DefaultOptions())
	}
	return &Pipeline{
		RemBG:      remover,
		Compositor: compositor,
	}
}

// RemoveBackground 只做抠图
func (p *Pipeline) RemoveBackground(ctx context.Context, img image.Image) (image.Image, error) {
	out, err := p.RemBG.Remove(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("remove background: %w", err)
	}
	return out, nil
}

// AddBackground 只做合成
func (p *Pipeline) AddBackground(_ context.Context, img image.Image) (image.Image, error) {
	out, err := p.Compositor.AddBackground(img)
	if err != nil {
		return nil, fmt.Errorf("add background: %w", err)
	}
	return out, nil
}

// ProcessComplete 先抠图再合成，任何一步失败都直接返回
func (p *Pipeline) ProcessComplete(ctx context.Context, img image.Image) (image.Image, error) {
	cutout, err := p.RemoveBackground(ctx, img)
	if err != nil {
		return nil, err
	}
	return p.AddBackground(ctx, cutout)
}
