package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"resumesentry/internal/api/middleware"
	"resumesentry/internal/config"
	"resumesentry/internal/metrics"
)

// NewRouter 构建 Gin 路由引擎并挂载通用中间件与健康检查、指标端点。
func NewRouter(cfg *config.Config, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CORSMiddleware(cfg.API.Origins()),
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(logger),
		metrics.GinMiddleware(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
