package v1

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"rais/internal/config"
	"rais/internal/importer"
	"rais/internal/store"
)

// Handler V1 API 处理器
type Handler struct {
	store       *store.TwoTier
	coordinator *importer.Coordinator
	startTime   time.Time

	mu   sync.RWMutex
	risk config.RiskConfig
}

// NewHandler 创建 V1 API 处理器
func NewHandler(twoTier *store.TwoTier, coordinator *importer.Coordinator, risk config.RiskConfig) *Handler {
	return &Handler{
		store:       twoTier,
		coordinator: coordinator,
		startTime:   time.Now(),
		risk:        risk,
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 配置管理
	router.GET("/config", h.GetConfig)
	router.PATCH("/config", h.UpdateConfig)

	// 数据导入
	router.POST("/upload", h.Upload)

	// 统计查询
	router.GET("/stats", h.GetStats)

	// 会话生命周期
	router.POST("/sessions/:id/commit", h.CommitSession)
	router.POST("/sessions/:id/discard", h.DiscardSession)
}

func (h *Handler) riskConfig() config.RiskConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.risk
}
