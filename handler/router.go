package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chaos-io/bgstudio/middleware"
	"github.com/chaos-io/bgstudio/util"
)

// NewRouter 注册所有路由
func NewRouter(h *ImageHandler, maxMemory int64) *gin.Engine {
	r := gin.New()
	if maxMemory > 0 {
		r.MaxMultipartMemory = maxMemory
	}

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		util.Logger.Error("panic recovered", zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error: fmt.Sprint(recovered),
		})
	}))

	r.GET("/", h.Home)
	r.GET("/health", h.Health)

	r.POST(PathRemoveBG, h.RemoveBackground)
	r.POST(PathAddBackground, h.AddBackground)
	r.POST(PathProcessComplete, h.ProcessComplete)

	return r
}
