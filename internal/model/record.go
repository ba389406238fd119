package model

// BatchStatus 批次状态
type BatchStatus string

const (
	BatchInProgress BatchStatus = "in_progress"
	BatchCompleted  BatchStatus = "completed"
	BatchScrapped   BatchStatus = "scrapped"
)

// RiskLevel 批次风险等级
type RiskLevel string

const (
	RiskNormal RiskLevel = "normal"
	RiskWatch  RiskLevel = "watch"
	RiskHigh   RiskLevel = "high_risk"
)

// InspectionStage 检验工序
type InspectionStage string

const (
	StageAssembly  InspectionStage = "assembly"
	StageVisual    InspectionStage = "visual"
	StageIntegrity InspectionStage = "integrity"
	StageShopfloor InspectionStage = "shopfloor"
	StageFinal     InspectionStage = "final"
	StagePackaging InspectionStage = "packaging"
)

// DefectCategory 缺陷类别
type DefectCategory string

const (
	CategoryVisual      DefectCategory = "visual"
	CategoryDimensional DefectCategory = "dimensional"
	CategoryFunctional  DefectCategory = "functional"
	CategoryMaterial    DefectCategory = "material"
	CategoryOther       DefectCategory = "other"
)

// Severity 缺陷严重度
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// Batch 生产批次
// 同一批次键的行累加数量；风险等级随数量变化重算
type Batch struct {
	BatchNumber      string      `json:"batchNumber"`
	ProductionDate   string      `json:"productionDate"` // YYYY-MM-DD
	PlannedQuantity  float64     `json:"plannedQuantity"`
	ProducedQuantity float64     `json:"producedQuantity"`
	RejectedQuantity float64     `json:"rejectedQuantity"`
	Status           BatchStatus `json:"status"`
	RiskLevel        RiskLevel   `json:"riskLevel"`
	SourceSheet      string      `json:"sourceSheet"`
	SourceFile       string      `json:"sourceFile"`
}

// RejectionRate 批次不良率（0 产量返回 0）
func (b *Batch) RejectionRate() float64 {
	if b.ProducedQuantity <= 0 {
		return 0
	}
	return b.RejectedQuantity / b.ProducedQuantity
}

// InspectionRecord 检验记录，归属于唯一批次
type InspectionRecord struct {
	BatchNumber       string          `json:"batchNumber"`
	Stage             InspectionStage `json:"stage"`
	InspectedQuantity float64         `json:"inspectedQuantity"`
	PassedQuantity    float64         `json:"passedQuantity"`
	FailedQuantity    float64         `json:"failedQuantity"`
	InspectionDate    string          `json:"inspectionDate"` // YYYY-MM-DD
	SourceRow         int             `json:"sourceRow"`
}

// DefectRecord 缺陷记录，归属于唯一检验记录
type DefectRecord struct {
	BatchNumber string          `json:"batchNumber"`
	Stage       InspectionStage `json:"stage"`
	DefectType  string          `json:"defectType"`
	Category    DefectCategory  `json:"category"`
	Quantity    float64         `json:"quantity"`
	Severity    Severity        `json:"severity"`
	SourceRow   int             `json:"sourceRow"`
}
