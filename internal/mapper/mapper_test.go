package mapper

import (
	"context"
	"fmt"
	"testing"

	"rais/internal/model"
)

// stubCollaborator 可编程的协作方桩
type stubCollaborator struct {
	result *model.MappingResult
	err    error
	calls  int
}

func (s *stubCollaborator) AttemptMapping(ctx context.Context, req model.MappingRequest) (*model.MappingResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubCollaborator) Close() error { return nil }

func TestMap_CollaboratorAccepted(t *testing.T) {
	t.Parallel()

	stub := &stubCollaborator{
		result: &model.MappingResult{
			Mapping:    map[string]string{"date": "inspection_date", "total": "inspected_quantity"},
			BatchKey:   model.BatchKeyPlan{Strategy: model.BatchKeyDateBased, Fields: []string{"inspection_date"}},
			Confidence: 0.9,
		},
	}

	m := NewColumnMapper(stub, 0.6, 8)
	cfg := m.Map(context.Background(), []string{"date", "total"}, nil, model.KindVisual, "visual.xlsx")

	if !cfg.FromAI {
		t.Fatalf("expected collaborator mapping to be used")
	}
	if got := cfg.FieldFor("date"); got != "inspection_date" {
		t.Fatalf("date want=inspection_date got=%s", got)
	}
	if cfg.Confidence != 0.9 {
		t.Fatalf("confidence want=0.9 got=%v", cfg.Confidence)
	}
}

func TestMap_ManyColumnsOneField(t *testing.T) {
	t.Parallel()

	stub := &stubCollaborator{
		result: &model.MappingResult{
			Mapping: map[string]string{
				"date":            "inspection_date",
				"inspection_date": "inspection_date",
				"total":           "inspected_quantity",
			},
			BatchKey:   model.BatchKeyPlan{Strategy: model.BatchKeyDateBased, Fields: []string{"inspection_date"}},
			Confidence: 0.9,
		},
	}

	m := NewColumnMapper(stub, 0.6, 8)
	cfg := m.Map(context.Background(), []string{"date", "inspection_date", "total"}, nil, model.KindVisual, "v.xlsx")

	// 两列指向同一字段都要保留，取值按列序后写覆盖
	if cfg.FieldFor("date") != "inspection_date" || cfg.FieldFor("inspection_date") != "inspection_date" {
		t.Fatalf("both columns should map to inspection_date, got %v", cfg.Columns)
	}
	for _, w := range cfg.Warnings {
		if w == "mapping discarded for column inspection_date: inspection_date" {
			t.Fatalf("duplicate target field must not be discarded: %q", w)
		}
	}
}

func TestMap_LowConfidenceFallsBack(t *testing.T) {
	t.Parallel()

	stub := &stubCollaborator{
		result: &model.MappingResult{
			Mapping:    map[string]string{"date": "inspection_date"},
			Confidence: 0.2,
		},
	}

	m := NewColumnMapper(stub, 0.6, 8)
	cfg := m.Map(context.Background(), []string{"date", "inspected_qty"}, nil, model.KindVisual, "v.xlsx")

	if cfg.FromAI {
		t.Fatalf("low confidence must fall back to heuristics")
	}
	if got := cfg.FieldFor("inspected_qty"); got != "inspected_quantity" {
		t.Fatalf("heuristic mapping missing, got=%s", got)
	}
}

func TestMap_CollaboratorErrorFallsBack(t *testing.T) {
	t.Parallel()

	stub := &stubCollaborator{err: fmt.Errorf("connection refused")}

	m := NewColumnMapper(stub, 0.6, 8)
	cfg := m.Map(context.Background(), []string{"date", "rejected_qty"}, nil, model.KindShopfloor, "s.xlsx")

	if cfg.FromAI {
		t.Fatalf("collaborator error must fall back to heuristics")
	}
	if got := cfg.FieldFor("rejected_qty"); got != "rejected_quantity" {
		t.Fatalf("heuristic mapping missing, got=%s", got)
	}
}

func TestMap_CacheHitSkipsCollaborator(t *testing.T) {
	t.Parallel()

	stub := &stubCollaborator{
		result: &model.MappingResult{
			Mapping:    map[string]string{"date": "inspection_date"},
			Confidence: 0.9,
		},
	}

	m := NewColumnMapper(stub, 0.6, 8)
	headers := []string{"date", "total"}

	first := m.Map(context.Background(), headers, nil, model.KindVisual, "a.xlsx")
	second := m.Map(context.Background(), headers, nil, model.KindVisual, "b.xlsx")

	if stub.calls != 1 {
		t.Fatalf("collaborator calls want=1 got=%d", stub.calls)
	}
	if first != second {
		t.Fatalf("cache should return the same config instance")
	}
}

func TestMap_InvalidResultDiscarded(t *testing.T) {
	t.Parallel()

	// 目标字段不在 schema 里，全部丢弃后应退回规则映射
	stub := &stubCollaborator{
		result: &model.MappingResult{
			Mapping:    map[string]string{"date": "no_such_field"},
			Confidence: 0.95,
		},
	}

	m := NewColumnMapper(stub, 0.6, 8)
	cfg := m.Map(context.Background(), []string{"date"}, nil, model.KindVisual, "v.xlsx")

	if cfg.FromAI {
		t.Fatalf("result with no usable mapping must fall back")
	}
	if got := cfg.FieldFor("date"); got != "inspection_date" {
		t.Fatalf("heuristic mapping missing, got=%s", got)
	}
}

func TestMappingCache_Eviction(t *testing.T) {
	t.Parallel()

	c := newMappingCache(2)
	c.Put("a", &model.MappingConfig{Explanation: "a"})
	c.Put("b", &model.MappingConfig{Explanation: "b"})

	// 访问 a 使 b 成为最久未用
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a should be cached")
	}

	c.Put("c", &model.MappingConfig{Explanation: "c"})

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a should survive eviction")
	}
	if c.Len() != 2 {
		t.Fatalf("len want=2 got=%d", c.Len())
	}
}

func TestMappingSignature_OrderInsensitiveHeaders(t *testing.T) {
	t.Parallel()

	a := mappingSignature([]string{"date", "total"}, model.KindVisual, nil)
	b := mappingSignature([]string{"total", "date"}, model.KindVisual, nil)
	if a != b {
		t.Fatalf("signature should ignore header order")
	}

	c := mappingSignature([]string{"date", "total"}, model.KindAssembly, nil)
	if a == c {
		t.Fatalf("signature should vary with kind")
	}
}

func TestSynthesizeBatchKey_Strategies(t *testing.T) {
	t.Parallel()

	row := map[string]model.CellValue{
		"inspection_date": model.DateValue(parseDefault("2025-04-01", model.FieldTypeDate).Date),
		"batch_number":    model.TextValue("BV-77"),
		"stage":           model.TextValue("visual"),
	}

	key := SynthesizeBatchKey(model.BatchKeyPlan{Strategy: model.BatchKeyDateBased, Fields: []string{"inspection_date"}}, row, 3)
	if key != "B-20250401" {
		t.Fatalf("date_based want=B-20250401 got=%s", key)
	}

	key = SynthesizeBatchKey(model.BatchKeyPlan{Strategy: model.BatchKeyComposite, Fields: []string{"batch_number", "stage"}}, row, 3)
	if key != "BV-77-visual" {
		t.Fatalf("composite want=BV-77-visual got=%s", key)
	}

	key = SynthesizeBatchKey(model.BatchKeyPlan{Strategy: model.BatchKeyComposite, Fields: []string{"missing"}}, row, 3)
	if key != "ROW-3" {
		t.Fatalf("composite fallback want=ROW-3 got=%s", key)
	}

	key = SynthesizeBatchKey(model.BatchKeyPlan{Strategy: model.BatchKeyRowIndex}, row, 7)
	if key != "ROW-7" {
		t.Fatalf("row_index want=ROW-7 got=%s", key)
	}

	a := SynthesizeBatchKey(model.BatchKeyPlan{Strategy: model.BatchKeyUUID}, row, 1)
	b := SynthesizeBatchKey(model.BatchKeyPlan{Strategy: model.BatchKeyUUID}, row, 1)
	if a == "" || a == b {
		t.Fatalf("uuid keys must be fresh per row: %s vs %s", a, b)
	}
}
