package model

import "time"

// IssueSeverity 问题级别
type IssueSeverity string

const (
	SeverityWarning IssueSeverity = "warning"
	SeverityError   IssueSeverity = "error"
)

// Issue 导入过程中发现的问题（含溯源信息）
type Issue struct {
	Message  string        `json:"message"`
	Severity IssueSeverity `json:"severity"`
	Sheet    string        `json:"sheet,omitempty"`
	Row      int           `json:"row,omitempty"`
	Column   string        `json:"column,omitempty"`
}

// RunStats 单次导入统计
type RunStats struct {
	RowsProcessed      int `json:"rowsProcessed"`
	RowsSkipped        int `json:"rowsSkipped"`
	RowsFailed         int `json:"rowsFailed"`
	BatchesCreated     int `json:"batchesCreated"`
	InspectionsCreated int `json:"inspectionsCreated"`
	DefectsCreated     int `json:"defectsCreated"`
}

// Add 累加另一份统计
func (s *RunStats) Add(other RunStats) {
	s.RowsProcessed += other.RowsProcessed
	s.RowsSkipped += other.RowsSkipped
	s.RowsFailed += other.RowsFailed
	s.BatchesCreated += other.BatchesCreated
	s.InspectionsCreated += other.InspectionsCreated
	s.DefectsCreated += other.DefectsCreated
}

// SheetResult 单个工作表的导入结果
type SheetResult struct {
	SheetName string        `json:"sheetName"`
	Kind      ReportKind    `json:"kind"`
	Status    string        `json:"status"` // imported/skipped/error
	Stats     RunStats      `json:"stats"`
	Duration  time.Duration `json:"duration"`
}

// IngestReport 整个文件的导入报告
// 只有解码失败与空文件是致命错误；其余问题一律记入 Warnings 并继续产出数据
type IngestReport struct {
	Filename    string             `json:"filename"`
	Fingerprint string             `json:"fingerprint"`
	SessionID   string             `json:"sessionId"`
	Success     bool               `json:"success"`
	Kind        ReportKind         `json:"kind"`
	Sheets      []SheetResult      `json:"sheets"`
	Batches     []*Batch           `json:"batches"`
	Inspections []*InspectionRecord `json:"inspections"`
	Defects     []*DefectRecord    `json:"defects"`
	Stats       RunStats           `json:"stats"`
	Warnings    []Issue            `json:"warnings"`
	Errors      []Issue            `json:"errors"`
	Duration    time.Duration      `json:"duration"`
}

// Warn 追加一条警告
func (r *IngestReport) Warn(sheet string, row int, column, message string) {
	r.Warnings = append(r.Warnings, Issue{
		Message:  message,
		Severity: SeverityWarning,
		Sheet:    sheet,
		Row:      row,
		Column:   column,
	})
}
