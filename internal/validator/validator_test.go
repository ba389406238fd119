package validator

import (
	"testing"

	"rais/internal/model"
)

func TestCheckInspections_ReconcileTolerance(t *testing.T) {
	t.Parallel()

	records := []*model.InspectionRecord{
		{InspectedQuantity: 100, PassedQuantity: 95, FailedQuantity: 5, SourceRow: 2},  // 正好相等
		{InspectedQuantity: 100, PassedQuantity: 95, FailedQuantity: 6, SourceRow: 3},  // 差 1，容忍
		{InspectedQuantity: 100, PassedQuantity: 90, FailedQuantity: 5, SourceRow: 4},  // 差 5，告警
	}

	issues := CheckInspections(records, "APRIL 25")
	if len(issues) != 1 {
		t.Fatalf("issues want=1 got=%d: %v", len(issues), issues)
	}
	if issues[0].Row != 4 {
		t.Fatalf("issue row want=4 got=%d", issues[0].Row)
	}
	if issues[0].Severity != model.SeverityWarning {
		t.Fatalf("severity want=warning got=%s", issues[0].Severity)
	}
}

func TestCheckInspections_FailedExceedsInspected(t *testing.T) {
	t.Parallel()

	records := []*model.InspectionRecord{
		{InspectedQuantity: 10, FailedQuantity: 25, SourceRow: 7},
	}

	issues := CheckInspections(records, "S1")
	if len(issues) != 1 {
		t.Fatalf("issues want=1 got=%d", len(issues))
	}
}

func TestCheckBatches_RejectedExceedsProduced(t *testing.T) {
	t.Parallel()

	batches := []*model.Batch{
		{BatchNumber: "B-20250401", ProducedQuantity: 100, RejectedQuantity: 16},
		{BatchNumber: "B-20250402", ProducedQuantity: 50, RejectedQuantity: 80},
	}

	issues := CheckBatches(batches, "S1")
	if len(issues) != 1 {
		t.Fatalf("issues want=1 got=%d", len(issues))
	}
	if issues[0].Severity != model.SeverityWarning {
		t.Fatalf("checks never produce fatal errors, got %s", issues[0].Severity)
	}
}
