package mapper

import (
	"fmt"
	"regexp"
	"time"

	"rais/internal/model"
)

// 规范字段的列名匹配模式，按优先级排列
// 列名在进入映射前已做过小写蛇形规范化，模式只需面向规范化结果
var fieldPatterns = map[string][]*regexp.Regexp{
	"batch_number": {
		regexp.MustCompile(`batch`),
		regexp.MustCompile(`^lot`),
	},
	"inspection_date": {
		regexp.MustCompile(`^date$`),
		regexp.MustCompile(`inspection_date`),
		regexp.MustCompile(`^month$`),
		regexp.MustCompile(`period`),
	},
	"production_date": {
		regexp.MustCompile(`^month$`),
		regexp.MustCompile(`^date$`),
		regexp.MustCompile(`production_date`),
		regexp.MustCompile(`period`),
	},
	"inspected_quantity": {
		regexp.MustCompile(`inspected`),
		regexp.MustCompile(`^insp`),
		regexp.MustCompile(`checked`),
		regexp.MustCompile(`^total$`),
	},
	"accepted_quantity": {
		regexp.MustCompile(`accepted`),
		regexp.MustCompile(`^acc`),
		regexp.MustCompile(`passed`),
		regexp.MustCompile(`^ok$`),
	},
	"rejected_quantity": {
		regexp.MustCompile(`rejected`),
		regexp.MustCompile(`^rej`),
		regexp.MustCompile(`failed`),
		regexp.MustCompile(`^ng$`),
		regexp.MustCompile(`rejection`),
	},
	"received_quantity": {
		regexp.MustCompile(`received`),
		regexp.MustCompile(`^rec$`),
		regexp.MustCompile(`input`),
	},
	"planned_quantity": {
		regexp.MustCompile(`planned`),
		regexp.MustCompile(`plan_qty`),
		regexp.MustCompile(`target`),
	},
	"produced_quantity": {
		regexp.MustCompile(`produced`),
		regexp.MustCompile(`production`),
		regexp.MustCompile(`prod_qty`),
	},
	"dispatched_quantity": {
		regexp.MustCompile(`dispatch`),
	},
	"inspector": {
		regexp.MustCompile(`inspector`),
		regexp.MustCompile(`checked_by`),
	},
	"remarks": {
		regexp.MustCompile(`remark`),
		regexp.MustCompile(`comment`),
		regexp.MustCompile(`note`),
	},
}

// fallbackMapping 纯规则映射，不依赖外部服务
// 同样的列名和类型永远产出同样的配置
func fallbackMapping(headers []string, kind model.ReportKind) *model.MappingConfig {
	schema := SchemaFor(kind)

	cfg := &model.MappingConfig{
		Kind:        kind,
		Columns:     make(map[string]string),
		Conversions: make(map[string]model.FieldType),
		Defaults:    make(map[string]model.CellValue),
		Confidence:  0.5,
		Explanation: "heuristic pattern mapping",
		FromAI:      false,
	}

	claimed := make(map[string]bool) // 已占用的源列

	for _, field := range schema {
		patterns := fieldPatterns[field.Name]
		for _, h := range headers {
			if claimed[h] || h == "" {
				continue
			}
			if matchAny(h, patterns) {
				cfg.Columns[h] = field.Name
				cfg.Conversions[field.Name] = field.Type
				claimed[h] = true
				break
			}
		}
	}

	for _, h := range headers {
		if h != "" && !claimed[h] {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("column not mapped: %s", h))
		}
	}

	for _, field := range schema {
		if field.Required && !cfg.HasField(field.Name) {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("required field missing, using default: %s", field.Name))
			cfg.Conversions[field.Name] = field.Type
			cfg.Defaults[field.Name] = defaultFor(field.Type)
		}
	}

	cfg.BatchKey = chooseBatchKey(cfg, kind)
	return cfg
}

func matchAny(header string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(header) {
			return true
		}
	}
	return false
}

// chooseBatchKey 映射确定后批次键策略也随之确定：
// 有日期字段用日期分批，有批次号用批次号，否则退回行号
func chooseBatchKey(cfg *model.MappingConfig, kind model.ReportKind) model.BatchKeyPlan {
	dateField := dateFieldName(kind)
	if cfg.HasField(dateField) || !cfg.Defaults[dateField].IsNull() {
		return model.BatchKeyPlan{Strategy: model.BatchKeyDateBased, Fields: []string{dateField}}
	}
	if cfg.HasField("batch_number") {
		return model.BatchKeyPlan{Strategy: model.BatchKeyComposite, Fields: []string{"batch_number"}}
	}
	return model.BatchKeyPlan{Strategy: model.BatchKeyRowIndex}
}

func defaultFor(t model.FieldType) model.CellValue {
	switch t {
	case model.FieldTypeNumber:
		return model.NumberValue(0)
	case model.FieldTypeDate:
		return model.DateValue(time.Now().UTC().Truncate(24 * time.Hour))
	default:
		return model.TextValue("")
	}
}
