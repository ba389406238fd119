package store

import (
	"sync"

	"rais/internal/model"
)

// SessionStore 会话层内存存储
// 每个上传会话一份独立累加器，按会话号隔离
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.StoreSnapshot
	risk     *model.RiskPolicy
}

// NewSessionStore 创建会话层存储，risk 为 nil 时用默认阈值
func NewSessionStore(risk *model.RiskPolicy) *SessionStore {
	if risk == nil {
		risk = model.NewRiskPolicy(0, 0)
	}
	return &SessionStore{
		sessions: make(map[string]*model.StoreSnapshot),
		risk:     risk,
	}
}

// Read 读会话快照的拷贝，未见过的会话返回全零快照
func (s *SessionStore) Read(sessionID string) *model.StoreSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.sessions[sessionID]
	if !ok {
		return model.NewStoreSnapshot(sessionID)
	}
	return copySnapshot(snap)
}

// Accumulate 把一次导入的产物累加进会话
func (s *SessionStore) Accumulate(sessionID string, batches []*model.Batch, defects []*model.DefectRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.sessions[sessionID]
	if !ok {
		snap = model.NewStoreSnapshot(sessionID)
		s.sessions[sessionID] = snap
	}

	for _, b := range batches {
		existing, ok := snap.Batches[b.BatchNumber]
		if !ok {
			clone := *b
			existing = &clone
			snap.Batches[b.BatchNumber] = existing
		} else {
			existing.PlannedQuantity += b.PlannedQuantity
			existing.ProducedQuantity += b.ProducedQuantity
			existing.RejectedQuantity += b.RejectedQuantity
			existing.Status = b.Status
		}
		// 风险等级按合并后的总量重算，而不是沿用最后一次导入的等级
		existing.RiskLevel = s.risk.Classify(existing.RejectionRate())
		snap.Overview.Produced += b.ProducedQuantity
		snap.Overview.Rejected += b.RejectedQuantity
	}

	for _, d := range defects {
		agg, ok := snap.Defects[d.DefectType]
		if !ok {
			agg = &model.DefectAggregate{
				DefectCode: d.DefectType,
				Category:   d.Category,
				Severity:   d.Severity,
			}
			snap.Defects[d.DefectType] = agg
		}
		agg.Count += d.Quantity
	}
}

// Reset 丢弃整个会话累加器，对永久层无影响
func (s *SessionStore) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// snapshot 取会话快照的拷贝，仅供合并使用
// 返回拷贝，合并方迭代期间的并发累加不会触及同一份 map
func (s *SessionStore) snapshot(sessionID string) (*model.StoreSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return copySnapshot(snap), true
}

func copySnapshot(snap *model.StoreSnapshot) *model.StoreSnapshot {
	out := model.NewStoreSnapshot(snap.SessionID)
	out.Overview = snap.Overview
	for code, agg := range snap.Defects {
		clone := *agg
		out.Defects[code] = &clone
	}
	for key, b := range snap.Batches {
		clone := *b
		out.Batches[key] = &clone
	}
	return out
}
