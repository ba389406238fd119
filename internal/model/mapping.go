package model

// FieldType 规范字段目标类型
type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeNumber FieldType = "number"
	FieldTypeDate   FieldType = "date"
)

// FieldSpec 规范字段定义（映射目标 schema 的一项）
type FieldSpec struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Description string    `json:"description"`
}

// BatchKeyStrategy 批次键生成策略
type BatchKeyStrategy string

const (
	BatchKeyDateBased BatchKeyStrategy = "date_based" // 取映射到的日期字段
	BatchKeyComposite BatchKeyStrategy = "composite"  // 拼接若干字段
	BatchKeyRowIndex  BatchKeyStrategy = "row_index"  // 行序号
	BatchKeyUUID      BatchKeyStrategy = "uuid"       // 每行一个随机批次
)

// BatchKeyPlan 批次键生成描述
type BatchKeyPlan struct {
	Strategy BatchKeyStrategy `json:"strategy"`
	Fields   []string         `json:"fields,omitempty"` // composite 策略的字段顺序
}

// MappingConfig 列映射配置
// 按 (列名, 样本, 类型) 签名缓存，创建后不再修改
type MappingConfig struct {
	Kind        ReportKind           `json:"kind"`
	Columns     map[string]string    `json:"columns"` // 源列名 -> 规范字段名
	BatchKey    BatchKeyPlan         `json:"batchKey"`
	Conversions map[string]FieldType `json:"conversions"`   // 规范字段名 -> 目标类型
	Defaults    map[string]CellValue `json:"-"`             // 缺失必填字段的默认值
	Confidence  float64              `json:"confidence"`    // 0-1
	Explanation string               `json:"explanation"`   // 仅用于观测
	Warnings    []string             `json:"warnings,omitempty"`
	FromAI      bool                 `json:"fromAI"` // 是否来自外部映射协作方
}

// FieldFor 查找源列映射到的规范字段，未映射返回空串
func (m *MappingConfig) FieldFor(column string) string {
	return m.Columns[column]
}

// HasField 规范字段是否已有来源列
func (m *MappingConfig) HasField(field string) bool {
	for _, f := range m.Columns {
		if f == field {
			return true
		}
	}
	return false
}

// MappingRequest 发给外部映射协作方的请求
type MappingRequest struct {
	Headers    []string               `json:"headers"`
	SampleRows []map[string]CellValue `json:"-"`
	Schema     []FieldSpec            `json:"schema"`
	Kind       ReportKind             `json:"kind"`
	Filename   string                 `json:"filename"`
}

// MappingResult 外部映射协作方的应答
type MappingResult struct {
	Mapping     map[string]string    `json:"mapping"`
	BatchKey    BatchKeyPlan         `json:"batchGeneration"`
	Conversions map[string]FieldType `json:"typeConversions"`
	Defaults    map[string]string    `json:"defaultValues"`
	Confidence  float64              `json:"confidence"`
	Explanation string               `json:"explanation"`
	Warnings    []string             `json:"warnings"`
	Errors      []string             `json:"errors"`
}
