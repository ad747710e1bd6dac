package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Ghilba812/ORSPost/internal/metrics"
)

// SetupRouter 注册中间件与路由
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(), CORS())

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/billboards", h.ListBillboards)
		apiGroup.GET("/poi-groups", h.ListPOIGroups)
		apiGroup.POST("/isochrone", h.CalculateIsochrone)
		apiGroup.POST("/iso-insights", h.IsoInsights)
	}

	return r
}
