package store

import (
	"fmt"

	"rais/internal/model"
)

// TwoTier 两层存储：内存会话层 + SQLite 永久层
// 会话层在提交前随时可整体丢弃，提交即合并进永久层
type TwoTier struct {
	sessions  *SessionStore
	permanent *Store
}

// NewTwoTier 组装两层存储
func NewTwoTier(sessions *SessionStore, permanent *Store) *TwoTier {
	return &TwoTier{sessions: sessions, permanent: permanent}
}

// Sessions 会话层
func (t *TwoTier) Sessions() *SessionStore {
	return t.sessions
}

// Permanent 永久层
func (t *TwoTier) Permanent() *Store {
	return t.permanent
}

// RiskPolicy 两层共享的批次风险阈值策略
func (t *TwoTier) RiskPolicy() *model.RiskPolicy {
	return t.sessions.risk
}

// ReadSession 读会话累加器，未见过的会话返回全零快照
func (t *TwoTier) ReadSession(sessionID string) *model.StoreSnapshot {
	return t.sessions.Read(sessionID)
}

// ReadPermanent 读永久层快照
func (t *TwoTier) ReadPermanent() (*model.StoreSnapshot, error) {
	return t.permanent.ReadSnapshot()
}

// ResetSession 丢弃会话，永久层不受影响
func (t *TwoTier) ResetSession(sessionID string) {
	t.sessions.Reset(sessionID)
}

// MergeSessionIntoPermanent 把会话计数逐字段累加进永久层
// 合并后会话保持原样，由调用方决定何时 Reset；
// 不 Reset 再次合并会重复计数，这里不做防护
func (t *TwoTier) MergeSessionIntoPermanent(sessionID string) error {
	snap, ok := t.sessions.snapshot(sessionID)
	if !ok {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	return t.permanent.MergeSnapshot(snap, t.sessions.risk)
}
