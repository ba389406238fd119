package mapper

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"rais/internal/model"
)

// ColumnMapper 列映射器
// 先查缓存，再尝试外部协作方，最后退回规则映射，任何路径都不失败
type ColumnMapper struct {
	cache         *mappingCache
	collaborator  Collaborator
	minConfidence float64
}

// NewColumnMapper 创建列映射器，collaborator 可以为 nil
func NewColumnMapper(collaborator Collaborator, minConfidence float64, cacheSize int) *ColumnMapper {
	if minConfidence <= 0 || minConfidence > 1 {
		minConfidence = 0.6
	}
	return &ColumnMapper{
		cache:         newMappingCache(cacheSize),
		collaborator:  collaborator,
		minConfidence: minConfidence,
	}
}

// Map 为一张工作表产出列映射配置
func (m *ColumnMapper) Map(ctx context.Context, headers []string, sampleRows []map[string]model.CellValue, kind model.ReportKind, filename string) *model.MappingConfig {
	signature := mappingSignature(headers, kind, sampleRows)
	if cached, ok := m.cache.Get(signature); ok {
		return cached
	}

	cfg := m.attemptCollaborator(ctx, headers, sampleRows, kind, filename)
	if cfg == nil {
		cfg = fallbackMapping(headers, kind)
	}

	m.cache.Put(signature, cfg)
	return cfg
}

// attemptCollaborator 调外部协作方，失败或置信度不足时返回 nil
func (m *ColumnMapper) attemptCollaborator(ctx context.Context, headers []string, sampleRows []map[string]model.CellValue, kind model.ReportKind, filename string) *model.MappingConfig {
	if m.collaborator == nil {
		return nil
	}

	samples := sampleRows
	if len(samples) > 5 {
		samples = samples[:5]
	}

	result, err := m.collaborator.AttemptMapping(ctx, model.MappingRequest{
		Headers:    headers,
		SampleRows: samples,
		Schema:     SchemaFor(kind),
		Kind:       kind,
		Filename:   filename,
	})
	if err != nil {
		log.Printf("[mapper] 协作方不可用，退回规则映射: %v", err)
		return nil
	}
	if result.Confidence < m.minConfidence {
		log.Printf("[mapper] 协作方置信度 %.2f 低于阈值 %.2f，退回规则映射", result.Confidence, m.minConfidence)
		return nil
	}

	cfg := m.buildFromResult(result, headers, kind)
	if len(cfg.Columns) == 0 {
		return nil
	}
	return cfg
}

// buildFromResult 校验协作方结果并转成映射配置
// 不认识的目标字段丢弃并记 warning；多列映射到同一字段是合法的，
// 取值阶段按列序后写覆盖
func (m *ColumnMapper) buildFromResult(result *model.MappingResult, headers []string, kind model.ReportKind) *model.MappingConfig {
	schema := SchemaFor(kind)
	fieldTypes := make(map[string]model.FieldType, len(schema))
	for _, f := range schema {
		fieldTypes[f.Name] = f.Type
	}

	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}

	cfg := &model.MappingConfig{
		Kind:        kind,
		Columns:     make(map[string]string),
		Conversions: make(map[string]model.FieldType),
		Defaults:    make(map[string]model.CellValue),
		Confidence:  result.Confidence,
		Explanation: result.Explanation,
		Warnings:    append([]string{}, result.Warnings...),
		FromAI:      true,
	}

	for _, h := range headers {
		field, ok := result.Mapping[h]
		if !ok {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("column not mapped: %s", h))
			continue
		}
		if _, valid := fieldTypes[field]; !valid {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("mapping discarded for column %s: %s", h, field))
			continue
		}
		cfg.Columns[h] = field
		cfg.Conversions[field] = fieldTypes[field]
	}

	for field, t := range result.Conversions {
		if _, valid := fieldTypes[field]; valid {
			cfg.Conversions[field] = t
		}
	}

	for field, raw := range result.Defaults {
		if _, valid := fieldTypes[field]; valid {
			cfg.Defaults[field] = parseDefault(raw, cfg.Conversions[field])
		}
	}

	for _, field := range schema {
		if field.Required && !cfg.HasField(field.Name) {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("required field missing, using default: %s", field.Name))
			cfg.Conversions[field.Name] = field.Type
			if _, ok := cfg.Defaults[field.Name]; !ok {
				cfg.Defaults[field.Name] = defaultFor(field.Type)
			}
		}
	}

	cfg.BatchKey = result.BatchKey
	if !validStrategy(cfg.BatchKey.Strategy) {
		cfg.BatchKey = chooseBatchKey(cfg, kind)
	}

	return cfg
}

func validStrategy(s model.BatchKeyStrategy) bool {
	switch s {
	case model.BatchKeyDateBased, model.BatchKeyComposite, model.BatchKeyRowIndex, model.BatchKeyUUID:
		return true
	}
	return false
}

// parseDefault 把协作方给的字符串默认值转成目标类型
func parseDefault(raw string, t model.FieldType) model.CellValue {
	raw = strings.TrimSpace(raw)
	switch t {
	case model.FieldTypeNumber:
		if n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64); err == nil {
			return model.NumberValue(n)
		}
		return model.NumberValue(0)
	case model.FieldTypeDate:
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			return model.DateValue(d)
		}
		return model.DateValue(time.Now().UTC().Truncate(24 * time.Hour))
	default:
		return model.TextValue(raw)
	}
}
