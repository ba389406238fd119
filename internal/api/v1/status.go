package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized   bool    `json:"initialized"`   // 永久层是否已有数据
	TotalBatches  int     `json:"totalBatches"`  // 永久层批次数
	TotalProduced float64 `json:"totalProduced"` // 永久层累计产量
	TotalRejected float64 `json:"totalRejected"` // 永久层累计不良数
	DefectKinds   int     `json:"defectKinds"`   // 缺陷码种类数
	UptimeSeconds int64   `json:"uptimeSeconds"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	snap, err := h.store.ReadPermanent()
	if err != nil {
		c.JSON(http.StatusOK, StatusResponse{
			Initialized:   false,
			UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		Initialized:   len(snap.Batches) > 0 || snap.Overview.Produced > 0,
		TotalBatches:  len(snap.Batches),
		TotalProduced: snap.Overview.Produced,
		TotalRejected: snap.Overview.Rejected,
		DefectKinds:   len(snap.Defects),
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}
