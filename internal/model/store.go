package model

// DefectAggregate 按缺陷码聚合的计数
type DefectAggregate struct {
	DefectCode string         `json:"defectCode"`
	Category   DefectCategory `json:"category"`
	Severity   Severity       `json:"severity"`
	Count      float64        `json:"count"`
}

// Overview 总览计数器
type Overview struct {
	Produced float64 `json:"produced"`
	Rejected float64 `json:"rejected"`
}

// StoreSnapshot 存储层快照（会话层和永久层同构）
type StoreSnapshot struct {
	SessionID string                      `json:"sessionId,omitempty"` // 永久层为空
	Defects   map[string]*DefectAggregate `json:"defects"`
	Overview  Overview                    `json:"overview"`
	Batches   map[string]*Batch           `json:"batches"`
}

// NewStoreSnapshot 创建空快照
func NewStoreSnapshot(sessionID string) *StoreSnapshot {
	return &StoreSnapshot{
		SessionID: sessionID,
		Defects:   make(map[string]*DefectAggregate),
		Batches:   make(map[string]*Batch),
	}
}
