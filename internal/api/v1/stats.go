package v1

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"rais/internal/config"
	"rais/internal/model"
)

// DefectSlice 帕累托图中的一项
type DefectSlice struct {
	DefectCode           string               `json:"defectCode"`
	Category             model.DefectCategory `json:"category"`
	Severity             model.Severity       `json:"severity"`
	Count                float64              `json:"count"`
	Percentage           float64              `json:"percentage"`
	CumulativePercentage float64              `json:"cumulativePercentage"`
}

// ParetoChart 缺陷帕累托分析（80/20）
type ParetoChart struct {
	Defects     []DefectSlice `json:"defects"`
	Threshold80 int           `json:"threshold80"` // 累计占比越过 80% 的下标，未越过为 -1
}

// StatsResponse 统计结果
type StatsResponse struct {
	SessionID       string         `json:"sessionId,omitempty"`
	Overview        model.Overview `json:"overview"`
	RejectionRate   float64        `json:"rejectionRate"` // 百分比
	YieldRate       float64        `json:"yieldRate"`
	RateDelta       float64        `json:"rateDelta"` // 相对永久层的百分点变化
	KPIStatus       string         `json:"kpiStatus"` // stable/watch/alert
	Pareto          ParetoChart    `json:"pareto"`
	Batches         []*model.Batch `json:"batches"`
	WatchBatches    int            `json:"watchBatches"`
	HighRiskBatches int            `json:"highRiskBatches"`
}

// GetStats 查询统计
// GET /api/stats          永久层
// GET /api/stats?session= 指定会话的累加器
func (h *Handler) GetStats(c *gin.Context) {
	sessionID := c.Query("session")

	var snap *model.StoreSnapshot
	if sessionID == "" {
		permanent, err := h.store.ReadPermanent()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		snap = permanent
	} else {
		snap = h.store.ReadSession(sessionID)
	}

	var baseline *model.StoreSnapshot
	if sessionID != "" {
		if permanent, err := h.store.ReadPermanent(); err == nil {
			baseline = permanent
		}
	}

	c.JSON(http.StatusOK, computeStats(snap, baseline, h.riskConfig()))
}

// computeStats 由快照算出概览、帕累托与 KPI 状态
func computeStats(snap, baseline *model.StoreSnapshot, risk config.RiskConfig) StatsResponse {
	resp := StatsResponse{
		SessionID: snap.SessionID,
		Overview:  snap.Overview,
		KPIStatus: "stable",
	}

	resp.RejectionRate = ratePercent(snap.Overview)
	resp.YieldRate = 100 - resp.RejectionRate

	// 批次两套阈值里的批次口径
	for _, b := range snap.Batches {
		resp.Batches = append(resp.Batches, b)
		switch b.RiskLevel {
		case model.RiskWatch:
			resp.WatchBatches++
		case model.RiskHigh:
			resp.HighRiskBatches++
		}
	}
	sort.Slice(resp.Batches, func(i, j int) bool {
		return resp.Batches[i].BatchNumber < resp.Batches[j].BatchNumber
	})

	// 看板口径：不良率相对永久层的百分点变化
	if baseline != nil {
		resp.RateDelta = resp.RejectionRate - ratePercent(baseline.Overview)
		switch {
		case resp.RateDelta >= risk.KPIAlertDelta:
			resp.KPIStatus = "alert"
		case resp.RateDelta >= risk.KPIWatchDelta:
			resp.KPIStatus = "watch"
		}
	}

	resp.Pareto = computePareto(snap.Defects)
	return resp
}

func ratePercent(ov model.Overview) float64 {
	if ov.Produced <= 0 {
		return 0
	}
	return ov.Rejected / ov.Produced * 100
}

// computePareto 按计数降序排列并累计占比
func computePareto(defects map[string]*model.DefectAggregate) ParetoChart {
	chart := ParetoChart{Threshold80: -1}

	sorted := make([]*model.DefectAggregate, 0, len(defects))
	var total float64
	for _, agg := range defects {
		sorted = append(sorted, agg)
		total += agg.Count
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].DefectCode < sorted[j].DefectCode
	})

	cumulative := 0.0
	for idx, agg := range sorted {
		percentage := 0.0
		if total > 0 {
			percentage = agg.Count / total * 100
		}
		cumulative += percentage

		if chart.Threshold80 < 0 && cumulative > 80 {
			chart.Threshold80 = idx
		}

		chart.Defects = append(chart.Defects, DefectSlice{
			DefectCode:           agg.DefectCode,
			Category:             agg.Category,
			Severity:             agg.Severity,
			Count:                agg.Count,
			Percentage:           percentage,
			CumulativePercentage: cumulative,
		})
	}

	return chart
}
