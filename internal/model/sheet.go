package model

// ReportKind 报表类型（根据列名和文件名推断）
type ReportKind string

const (
	KindVisual               ReportKind = "visual"                // 外观检验报表
	KindAssembly             ReportKind = "assembly"              // 装配不良报表
	KindIntegrity            ReportKind = "integrity"             // 气密/完整性检验报表
	KindShopfloor            ReportKind = "shopfloor"             // 车间不良报表
	KindProductionCumulative ReportKind = "production_cumulative" // 年度生产累计表
	KindCumulative           ReportKind = "cumulative"            // 累计汇总表
	KindUnknown              ReportKind = "unknown"
)

// IsInspection 是否为检验类报表（逐行产生检验记录）
func (k ReportKind) IsInspection() bool {
	switch k {
	case KindVisual, KindAssembly, KindIntegrity, KindShopfloor:
		return true
	}
	return false
}

// IsCumulative 是否为累计类报表（数量直接赋值而非累加）
func (k ReportKind) IsCumulative() bool {
	return k == KindProductionCumulative || k == KindCumulative
}

// RawGrid 解码后的原始表格（未做类型规范化）
type RawGrid struct {
	SheetName string
	Cells     [][]string
}

// Workbook 解码结果：一个文件包含若干原始表格
type Workbook struct {
	Filename    string
	Fingerprint string // 文件内容 SHA-256，用于上传去重
	Grids       []RawGrid
}

// Sheet 规范化后的工作表
// 创建后不再修改，归产生它的那次导入独占
type Sheet struct {
	Name      string                 `json:"name"`
	SourceFile string                `json:"sourceFile"`
	HeaderRow int                    `json:"headerRow"` // 表头行下标（基于原始网格）
	Headers   []string               `json:"headers"`   // 规范化列名，去重且保持顺序
	Rows      []map[string]CellValue `json:"-"`         // 表头以下的数据行
	RowNos    []int                  `json:"-"`         // 每行对应的原始行号（1 起）
}
