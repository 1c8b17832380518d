package rembg

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"runtime"
	"sync"

	"github.com/nfnt/resize"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/chaos-io/bgstudio/util"
)

const u2netSize = 320

var (
	u2netMean = [3]float32{0.485, 0.456, 0.406}
	u2netStd  = [3]float32{0.229, 0.224, 0.225}
)

// U2NetRemBG 进程内的 u2net 抠图，通过 onnxruntime 推理
// session 第一次调用时才创建，创建失败下次请求会重试
type U2NetRemBG struct {
	modelPath   string
	libraryPath string

	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
}

func NewU2Net(modelPath, libraryPath string) *U2NetRemBG {
	if libraryPath == "" {
		libraryPath = defaultLibraryPath()
	}
	return &U2NetRemBG{
		modelPath:   modelPath,
		libraryPath: libraryPath,
	}
}

func defaultLibraryPath() string {
	switch runtime.GOOS {
	case "darwin":
		return "libonnxruntime.dylib"
	case "windows":
		return "onnxruntime.dll"
	default:
		return "libonnxruntime.so"
	}
}

func (u *U2NetRemBG) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session, err := u.load()
	if err != nil {
		return nil, err
	}

	input, err := ort.NewTensor(ort.NewShape(1, 3, u2netSize, u2netSize), u2netInput(img))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer func() {
		_ = input.Destroy()
	}()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1, u2netSize, u2netSize))
	if err != nil {
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer func() {
		_ = output.Destroy()
	}()

	if err := session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, fmt.Errorf("run u2net: %w", err)
	}

	mask := u2netMask(output.GetData(), u2netSize)
	return ApplyMask(img, mask), nil
}

// Ping 检查模型能否加载
func (u *U2NetRemBG) Ping(context.Context) error {
	_, err := u.load()
	return err
}

func (u *U2NetRemBG) load() (*ort.DynamicAdvancedSession, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.session != nil {
		return u.session, nil
	}

	if _, err := os.Stat(u.modelPath); err != nil {
		return nil, fmt.Errorf("u2net model not found at %s: %w", u.modelPath, err)
	}

	if !ort.IsInitialized() {
		ort.SetSharedLibraryPath(u.libraryPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(u.modelPath)
	if err != nil {
		return nil, fmt.Errorf("read model io info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, errors.New("u2net model has no inputs or outputs")
	}

	session, err := ort.NewDynamicAdvancedSession(u.modelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("create u2net session: %w", err)
	}

	u.session = session
	return session, nil
}

// Close 释放 session
func (u *U2NetRemBG) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.session == nil {
		return nil
	}
	err := u.session.Destroy()
	u.session = nil
	return err
}

// u2netInput 生成 NCHW 输入
//
//	丢掉 alpha 后缩放到 320x320
//	除以整张图的最大值
//	按 ImageNet 的 mean/std 归一化
func u2netInput(img image.Image) []float32 {
	src := util.ToNRGBA(img)
	opaque := image.NewRGBA(src.Rect)
	for y := 0; y < src.Rect.Dy(); y++ {
		for x := 0; x < src.Rect.Dx(); x++ {
			s := src.Pix[y*src.Stride+x*4:]
			d := opaque.Pix[y*opaque.Stride+x*4:]
			d[0], d[1], d[2], d[3] = s[0], s[1], s[2], 0xff
		}
	}

	scaled := util.ToNRGBA(resize.Resize(u2netSize, u2netSize, opaque, resize.Lanczos3))

	var peak uint8
	for i := 0; i < len(scaled.Pix); i += 4 {
		peak = max(peak, scaled.Pix[i], scaled.Pix[i+1], scaled.Pix[i+2])
	}
	scale := float32(math.Max(float64(peak), 1e-6))

	plane := u2netSize * u2netSize
	data := make([]float32, 3*plane)
	for y := 0; y < u2netSize; y++ {
		for x := 0; x < u2netSize; x++ {
			off := y*scaled.Stride + x*4
			idx := y*u2netSize + x
			for c := 0; c < 3; c++ {
				v := float32(scaled.Pix[off+c]) / scale
				data[c*plane+idx] = (v - u2netMean[c]) / u2netStd[c]
			}
		}
	}
	return data
}

// u2netMask 把模型输出做 min-max 归一化，得到 8 位遮罩
func u2netMask(pred []float32, size int) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, size, size))
	n := size * size
	if len(pred) < n {
		return mask
	}

	lo, hi := pred[0], pred[0]
	for _, v := range pred[:n] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		return mask
	}

	for i, v := range pred[:n] {
		mask.Pix[i] = uint8((v - lo) / span * 255)
	}
	return mask
}
