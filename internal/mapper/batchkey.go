package mapper

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"rais/internal/model"
)

// SynthesizeBatchKey 按映射配置里的策略为一行生成批次键
// rowNo 为工作表内 1 起始的行序号
func SynthesizeBatchKey(plan model.BatchKeyPlan, row map[string]model.CellValue, rowNo int) string {
	switch plan.Strategy {
	case model.BatchKeyDateBased:
		for _, field := range plan.Fields {
			if d, ok := row[field].AsDate(); ok {
				return "B-" + d.Format("20060102")
			}
		}
		return rowKey(rowNo)

	case model.BatchKeyComposite:
		var parts []string
		for _, field := range plan.Fields {
			v := row[field]
			if v.IsNull() {
				continue
			}
			if s := strings.TrimSpace(v.AsText()); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return rowKey(rowNo)
		}
		return strings.Join(parts, "-")

	case model.BatchKeyUUID:
		return uuid.NewString()

	default:
		return rowKey(rowNo)
	}
}

func rowKey(rowNo int) string {
	return fmt.Sprintf("ROW-%d", rowNo)
}
