package model

import "sync"

// 批次风险默认阈值（不良率）
// 与看板 KPI 的 0.5/1.0 百分点变化是两套独立口径，不要混用
const (
	DefaultWatchRate = 0.08
	DefaultHighRate  = 0.15
)

// RiskPolicy 批次风险阈值，运行期可调
// 转换器与两层存储共享同一份实例，阈值更新后的分类立即使用新口径
type RiskPolicy struct {
	mu        sync.RWMutex
	watchRate float64
	highRate  float64
}

// NewRiskPolicy 创建风险阈值策略，非法组合退回默认口径
func NewRiskPolicy(watchRate, highRate float64) *RiskPolicy {
	p := &RiskPolicy{}
	p.SetRates(watchRate, highRate)
	return p
}

// SetRates 更新阈值，非法组合退回默认口径
func (p *RiskPolicy) SetRates(watchRate, highRate float64) {
	if watchRate <= 0 || highRate <= watchRate {
		watchRate = DefaultWatchRate
		highRate = DefaultHighRate
	}
	p.mu.Lock()
	p.watchRate = watchRate
	p.highRate = highRate
	p.mu.Unlock()
}

// Rates 当前阈值
func (p *RiskPolicy) Rates() (watchRate, highRate float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.watchRate, p.highRate
}

// Classify 按不良率归类批次风险
func (p *RiskPolicy) Classify(rate float64) RiskLevel {
	watch, high := p.Rates()
	switch {
	case rate >= high:
		return RiskHigh
	case rate >= watch:
		return RiskWatch
	default:
		return RiskNormal
	}
}
