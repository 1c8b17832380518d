package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/chaos-io/bgstudio/studio"
	"github.com/chaos-io/bgstudio/studio/rembg"
	"github.com/chaos-io/bgstudio/util"
)

// 离线处理单张图片，和 HTTP 接口走同一条 pipeline
//
//	bgstudio --input shoe.jpg --output out/shoe.png --mode complete
func main() {
	var (
		input     = pflag.StringP("input", "i", "", "input image path or http(s) url")
		output    = pflag.StringP("output", "o", "output/result.png", "output png path")
		mode      = pflag.StringP("mode", "m", "complete", "remove | composite | complete")
		backend   = pflag.String("backend", rembg.BackendU2Net, "rembg backend: u2net | remote | passthrough")
		modelPath = pflag.String("model", "models/u2net.onnx", "u2net onnx model path")
		libPath   = pflag.String("onnxruntime", "", "onnxruntime shared library path")
		remoteURL = pflag.String("remote-url", "http://localhost:7000/api/remove", "remote rembg endpoint")
		verbose   = pflag.BoolP("verbose", "v", false, "development logging")
	)
	pflag.Parse()

	logMode := "release"
	if *verbose {
		logMode = "debug"
	}
	if err := util.InitLogger(logMode); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer util.Sync()

	if *input == "" {
		pflag.Usage()
		os.Exit(2)
	}

	if err := run(*input, *output, *mode, rembg.Options{
		Backend:     *backend,
		ModelPath:   *modelPath,
		LibraryPath: *libPath,
		RemoteURL:   *remoteURL,
	}); err != nil {
		util.Logger.Fatal("failed to process image", zap.String("input", *input), zap.Error(err))
	}
}

func run(input, output, mode string, opts rembg.Options) error {
	defer util.Trace("bgstudio " + mode)()

	img, err := loadImage(input)
	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}

	var pipeline *studio.Pipeline
	if mode == "composite" {
		pipeline = studio.NewPipeline(nil, nil)
	} else {
		remover, err := rembg.New(opts)
		if err != nil {
			return err
		}
		pipeline = studio.NewPipeline(remover, nil)
	}

	ctx := context.Background()
	var out image.Image
	switch mode {
	case "remove":
		out, err = pipeline.RemoveBackground(ctx, img)
	case "composite":
		out, err = pipeline.AddBackground(ctx, img)
	case "complete":
		out, err = pipeline.ProcessComplete(ctx, img)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(output), os.ModePerm); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := util.SavePNG(output, out); err != nil {
		return err
	}

	util.Logger.Info("done", zap.String("output", output),
		zap.Int("width", out.Bounds().Dx()), zap.Int("height", out.Bounds().Dy()))
	return nil
}

func loadImage(input string) (image.Image, error) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return util.DownloadImage(input)
	}
	return util.OpenImage(input)
}
