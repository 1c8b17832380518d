package handler

import "github.com/chaos-io/bgstudio/studio/rembg"

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse GET / 的响应
type StatusResponse struct {
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

// HealthResponse GET /health 的响应
type HealthResponse struct {
	Status  string        `json:"status"`
	Version string        `json:"version"`
	Remover *rembg.Status `json:"remover,omitempty"`
}
