package transformer

import (
	"strings"

	"rais/internal/model"
)

// 已知缺陷列名关键字（规范化后形态）
// 未映射到规范字段的列按这些关键字识别为缺陷列
var defectKeywords = []string{
	"coag", "raised_wire", "surface", "overlaping", "black_mark", "webbing",
	"missing", "leakage", "bubble", "thin", "dirty", "sticky", "weak",
	"wrong_color", "pin_hole", "stripping", "balloon", "valve", "burst", "other",
}

// 缺陷类别关键字桶
var categoryBuckets = map[model.DefectCategory][]string{
	model.CategoryVisual:      {"coag", "surface", "black_mark", "dirty", "bubble", "wrong_color", "raised_wire", "overlaping", "pin_hole"},
	model.CategoryDimensional: {"thin", "webbing"},
	model.CategoryFunctional:  {"leakage", "valve", "missing", "stripping", "burst"},
	model.CategoryMaterial:    {"weak", "sticky", "balloon"},
}

// 严重度关键字，未命中默认 minor
var criticalKeywords = []string{"leakage", "missing", "burst"}
var majorKeywords = []string{"coag", "webbing", "stripping", "valve", "wrong_color"}

// 报表类型对应的检验工序
var stageByKind = map[model.ReportKind]model.InspectionStage{
	model.KindAssembly:  model.StageAssembly,
	model.KindVisual:    model.StageVisual,
	model.KindIntegrity: model.StageIntegrity,
	model.KindShopfloor: model.StageShopfloor,
}

// stageFor 未知类型按最终检验处理
func stageFor(kind model.ReportKind) model.InspectionStage {
	if s, ok := stageByKind[kind]; ok {
		return s
	}
	return model.StageFinal
}

// isDefectColumn 列名是否指向一种缺陷
func isDefectColumn(column string) bool {
	for _, kw := range defectKeywords {
		if strings.Contains(column, kw) {
			return true
		}
	}
	return false
}

// categorize 按关键字推断缺陷类别
func categorize(defectType string) model.DefectCategory {
	lower := strings.ToLower(defectType)
	for _, cat := range []model.DefectCategory{
		model.CategoryVisual,
		model.CategoryDimensional,
		model.CategoryFunctional,
		model.CategoryMaterial,
	} {
		for _, kw := range categoryBuckets[cat] {
			if strings.Contains(lower, kw) {
				return cat
			}
		}
	}
	return model.CategoryOther
}

// severityOf 按缺陷类型推断严重度
func severityOf(defectType string) model.Severity {
	lower := strings.ToLower(defectType)
	for _, kw := range criticalKeywords {
		if strings.Contains(lower, kw) {
			return model.SeverityCritical
		}
	}
	for _, kw := range majorKeywords {
		if strings.Contains(lower, kw) {
			return model.SeverityMajor
		}
	}
	return model.SeverityMinor
}
