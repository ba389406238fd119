package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ConfigResponse 阈值配置响应
// 批次阈值与看板 KPI 阈值是两套独立口径
type ConfigResponse struct {
	BatchWatchRate float64 `json:"batchWatchRate"` // 批次不良率 watch 线
	BatchHighRate  float64 `json:"batchHighRate"`  // 批次不良率 high_risk 线
	KPIWatchDelta  float64 `json:"kpiWatchDelta"`  // 看板不良率变化关注线（百分点）
	KPIAlertDelta  float64 `json:"kpiAlertDelta"`  // 看板不良率变化告警线（百分点）
}

// UpdateConfigRequest 更新配置请求，未提供的字段保持原值
type UpdateConfigRequest struct {
	BatchWatchRate *float64 `json:"batchWatchRate"`
	BatchHighRate  *float64 `json:"batchHighRate"`
	KPIWatchDelta  *float64 `json:"kpiWatchDelta"`
	KPIAlertDelta  *float64 `json:"kpiAlertDelta"`
}

// GetConfig 获取阈值配置
// GET /api/config
func (h *Handler) GetConfig(c *gin.Context) {
	risk := h.riskConfig()
	c.JSON(http.StatusOK, ConfigResponse{
		BatchWatchRate: risk.BatchWatchRate,
		BatchHighRate:  risk.BatchHighRate,
		KPIWatchDelta:  risk.KPIWatchDelta,
		KPIAlertDelta:  risk.KPIAlertDelta,
	})
}

// UpdateConfig 更新阈值配置（部分更新）
// PATCH /api/config
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	h.mu.Lock()
	if req.BatchWatchRate != nil {
		h.risk.BatchWatchRate = *req.BatchWatchRate
	}
	if req.BatchHighRate != nil {
		h.risk.BatchHighRate = *req.BatchHighRate
	}
	if req.KPIWatchDelta != nil {
		h.risk.KPIWatchDelta = *req.KPIWatchDelta
	}
	if req.KPIAlertDelta != nil {
		h.risk.KPIAlertDelta = *req.KPIAlertDelta
	}
	risk := h.risk
	h.mu.Unlock()

	// 批次阈值写进共享策略，后续导入与合并即用新口径
	h.store.RiskPolicy().SetRates(risk.BatchWatchRate, risk.BatchHighRate)

	// 持久化到永久层配置表，重启后沿用
	perm := h.store.Permanent()
	_ = perm.SetConfigFloat("batch_watch_rate", risk.BatchWatchRate)
	_ = perm.SetConfigFloat("batch_high_rate", risk.BatchHighRate)
	_ = perm.SetConfigFloat("kpi_watch_delta", risk.KPIWatchDelta)
	_ = perm.SetConfigFloat("kpi_alert_delta", risk.KPIAlertDelta)

	c.JSON(http.StatusOK, ConfigResponse{
		BatchWatchRate: risk.BatchWatchRate,
		BatchHighRate:  risk.BatchHighRate,
		KPIWatchDelta:  risk.KPIWatchDelta,
		KPIAlertDelta:  risk.KPIAlertDelta,
	})
}
