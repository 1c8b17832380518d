package rembg

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/chaos-io/bgstudio/util"
)

const (
	BackendU2Net       = "u2net"
	BackendRemote      = "remote"
	BackendPassthrough = "passthrough"
)

// Remover 抠图：输入任意图像，输出带 alpha 遮罩的图像
type Remover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

// Pinger 可选接口，后端能自检时实现
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Backend     string
	ModelPath   string
	LibraryPath string
	RemoteURL   string
	RemoteField string
	Timeout     time.Duration
}

// New 按配置选择抠图后端
func New(opts Options) (Remover, error) {
	switch opts.Backend {
	case BackendU2Net, "":
		return NewU2Net(opts.ModelPath, opts.LibraryPath), nil
	case BackendRemote:
		if opts.RemoteURL == "" {
			return nil, fmt.Errorf("remote backend requires a url")
		}
		return NewRemoteRemBG(opts.RemoteURL, opts.RemoteField, opts.Timeout), nil
	case BackendPassthrough:
		return NewPassthrough(), nil
	default:
		return nil, fmt.Errorf("unknown rembg backend %q", opts.Backend)
	}
}

// Passthrough 不做抠图，只补齐 alpha 通道
type Passthrough struct{}

func NewPassthrough() *Passthrough {
	return &Passthrough{}
}

func (p *Passthrough) Remove(_ context.Context, img image.Image) (image.Image, error) {
	return util.ToNRGBA(img), nil
}

func (p *Passthrough) Ping(context.Context) error {
	return nil
}
