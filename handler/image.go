package handler

import (
	"context"
	"fmt"
	"image"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chaos-io/bgstudio/studio"
	"github.com/chaos-io/bgstudio/studio/rembg"
	"github.com/chaos-io/bgstudio/util"
)

const (
	PathRemoveBG        = "/remove-bg"
	PathAddBackground   = "/add-background"
	PathProcessComplete = "/process-complete"
)

// Endpoints GET / 里列出的接口说明
var Endpoints = map[string]string{
	PathRemoveBG:        "POST - Remove background from image",
	PathAddBackground:   "POST - Add grey background with shadow",
	PathProcessComplete: "POST - Remove bg + add background in one call",
}

type stage func(ctx context.Context, img image.Image) (image.Image, error)

// ImageHandler 无状态，启动时构造一次，所有请求共用
type ImageHandler struct {
	pipeline *studio.Pipeline
	monitor  *rembg.Monitor
	version  string
}

func NewImageHandler(pipeline *studio.Pipeline, monitor *rembg.Monitor, version string) *ImageHandler {
	return &ImageHandler{
		pipeline: pipeline,
		monitor:  monitor,
		version:  version,
	}
}

// Home 服务状态和接口列表
func (h *ImageHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status:    "API is running",
		Endpoints: Endpoints,
	})
}

// Health 后端自检结果
func (h *ImageHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Version: h.version}
	if h.monitor != nil {
		st := h.monitor.Status()
		resp.Remover = &st
		if !st.Ready {
			resp.Status = "degraded"
		}
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveBackground POST /remove-bg
func (h *ImageHandler) RemoveBackground(c *gin.Context) {
	h.serve(c, h.pipeline.RemoveBackground)
}

// AddBackground POST /add-background
func (h *ImageHandler) AddBackground(c *gin.Context) {
	h.serve(c, h.pipeline.AddBackground)
}

// ProcessComplete POST /process-complete
func (h *ImageHandler) ProcessComplete(c *gin.Context) {
	h.serve(c, h.pipeline.ProcessComplete)
}

func (h *ImageHandler) serve(c *gin.Context, run stage) {
	data, err := h.process(c, run)
	if err != nil {
		kind := kindOf(err)
		level := zap.ErrorLevel
		if kind.Status() < http.StatusInternalServerError {
			level = zap.WarnLevel
		}
		util.Logger.Log(level, "failed to process image",
			zap.String("path", c.FullPath()),
			zap.Stringer("kind", kind),
			zap.Error(err))
		c.JSON(kind.Status(), ErrorResponse{Error: err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

// process 读取上传 -> 解码 -> 处理 -> 编码为 PNG
func (h *ImageHandler) process(c *gin.Context, run stage) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, &Error{Kind: MissingInput, Err: errNoImage}
	}

	f, err := file.Open()
	if err != nil {
		return nil, &Error{Kind: ProcessingFailure, Err: fmt.Errorf("open upload: %w", err)}
	}
	defer func() {
		_ = f.Close()
	}()

	img, err := util.DecodeImage(f)
	if err != nil {
		return nil, &Error{Kind: DecodeFailure, Err: err}
	}
	util.Logger.Debug("decoded upload",
		zap.String("filename", file.Filename),
		zap.Stringer("mode", studio.ModeOf(img)),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))

	out, err := run(c.Request.Context(), img)
	if err != nil {
		return nil, &Error{Kind: ProcessingFailure, Err: err}
	}

	data, err := util.EncodePNG(out)
	if err != nil {
		return nil, &Error{Kind: ProcessingFailure, Err: err}
	}
	return data, nil
}
