package validator

import (
	"fmt"
	"math"

	"rais/internal/model"
)

// 数量勾稽允许 1 个单位的误差，源表常见四舍五入
const reconcileTolerance = 1

// CheckInspections 检验记录的行级勾稽检查，全部是非致命警告
func CheckInspections(records []*model.InspectionRecord, sheet string) []model.Issue {
	var issues []model.Issue

	for _, r := range records {
		if r.PassedQuantity > 0 && r.FailedQuantity >= 0 && r.InspectedQuantity > 0 {
			total := r.PassedQuantity + r.FailedQuantity
			if math.Abs(total-r.InspectedQuantity) > reconcileTolerance {
				issues = append(issues, model.Issue{
					Message:  fmt.Sprintf("passed (%v) + failed (%v) = %v doesn't match inspected (%v)", r.PassedQuantity, r.FailedQuantity, total, r.InspectedQuantity),
					Severity: model.SeverityWarning,
					Sheet:    sheet,
					Row:      r.SourceRow,
				})
			}
		}

		if r.InspectedQuantity > 0 && r.FailedQuantity > r.InspectedQuantity {
			issues = append(issues, model.Issue{
				Message:  fmt.Sprintf("failed (%v) exceeds inspected (%v)", r.FailedQuantity, r.InspectedQuantity),
				Severity: model.SeverityWarning,
				Sheet:    sheet,
				Row:      r.SourceRow,
			})
		}
	}

	return issues
}

// CheckBatches 批次级检查：不良数不应超过产量
func CheckBatches(batches []*model.Batch, sheet string) []model.Issue {
	var issues []model.Issue

	for _, b := range batches {
		if b.ProducedQuantity > 0 && b.RejectedQuantity > b.ProducedQuantity {
			issues = append(issues, model.Issue{
				Message:  fmt.Sprintf("batch %s: rejected (%v) exceeds produced (%v)", b.BatchNumber, b.RejectedQuantity, b.ProducedQuantity),
				Severity: model.SeverityWarning,
				Sheet:    sheet,
			})
		}
	}

	return issues
}
