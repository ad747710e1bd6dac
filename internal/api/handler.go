package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ghilba812/ORSPost/internal/model"
	"github.com/Ghilba812/ORSPost/internal/service"
)

// Handler API 处理器
type Handler struct {
	isochroneService *service.IsochroneService
	insightService   *service.InsightService
	billboards       service.BillboardRegistry
	poiGroups        service.POIGroupSource
}

// NewHandler 创建处理器
func NewHandler(
	isoService *service.IsochroneService,
	insightService *service.InsightService,
	billboards service.BillboardRegistry,
	poiGroups service.POIGroupSource,
) *Handler {
	return &Handler{
		isochroneService: isoService,
		insightService:   insightService,
		billboards:       billboards,
		poiGroups:        poiGroups,
	}
}

// Health 健康检查
// GET /healthz
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListBillboards 广告牌列表
// GET /api/billboards
func (h *Handler) ListBillboards(c *gin.Context) {
	billboards, err := h.billboards.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, billboards)
}

// ListPOIGroups POI 分组目录
// GET /api/poi-groups
func (h *Handler) ListPOIGroups(c *gin.Context) {
	groups, err := h.poiGroups.Groups(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// CalculateIsochrone 计算等时圈或距离圈
// POST /api/isochrone[?nocache=1]
func (h *Handler) CalculateIsochrone(c *gin.Context) {
	var req model.ReachabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"details": err.Error(),
		})
		return
	}

	bypass := bool(req.NoCache) || isTruthy(c.Query("nocache"))
	result, err := h.isochroneService.Reach(c.Request.Context(), req, bypass)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// IsoInsights 圈内人口与 POI 统计
// POST /api/iso-insights
func (h *Handler) IsoInsights(c *gin.Context) {
	var req model.InsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.insightService.Aggregate(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// fail 所有业务错误统一为 500 + 错误信息，不区分错误码
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func isTruthy(v string) bool {
	return v == "1" || v == "true"
}
