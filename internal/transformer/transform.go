package transformer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"rais/internal/mapper"
	"rais/internal/model"
	"rais/internal/parser"
)

// Transformer 把映射后的行转成批次、检验与缺陷记录
type Transformer struct {
	risk *model.RiskPolicy
	now  func() time.Time
}

// NewTransformer 创建转换器，阈值非法时用默认口径
func NewTransformer(watchRate, highRate float64) *Transformer {
	return NewTransformerWithPolicy(model.NewRiskPolicy(watchRate, highRate))
}

// NewTransformerWithPolicy 用共享的风险阈值策略创建转换器
// 策略上的阈值更新对后续转换即时生效
func NewTransformerWithPolicy(risk *model.RiskPolicy) *Transformer {
	if risk == nil {
		risk = model.NewRiskPolicy(0, 0)
	}
	return &Transformer{
		risk: risk,
		now:  time.Now,
	}
}

// Output 一张工作表的转换产物
type Output struct {
	Batches     []*model.Batch
	Inspections []*model.InspectionRecord
	Defects     []*model.DefectRecord
	Stats       model.RunStats
	Warnings    []model.Issue
}

// TransformSheet 逐行转换，行内问题记 warning 不中断
func (t *Transformer) TransformSheet(sheet *model.Sheet, kind model.ReportKind, cfg *model.MappingConfig) *Output {
	out := &Output{}
	batches := make(map[string]*model.Batch)

	// 字段到源列的反查表，按列顺序后写覆盖，保证确定性
	fieldColumn := make(map[string]string)
	for _, col := range sheet.Headers {
		if field := cfg.FieldFor(col); field != "" {
			fieldColumn[field] = col
		}
	}

	for i, raw := range sheet.Rows {
		rowNo := sheet.RowNos[i]
		mapped := t.convertRow(sheet, raw, cfg, fieldColumn, rowNo, out)

		key := mapper.SynthesizeBatchKey(cfg.BatchKey, mapped, rowNo)

		batch, ok := batches[key]
		if !ok {
			batch = &model.Batch{
				BatchNumber: key,
				Status:      model.BatchInProgress,
				RiskLevel:   model.RiskNormal,
				SourceSheet: sheet.Name,
				SourceFile:  sheet.SourceFile,
			}
			batches[key] = batch
			out.Batches = append(out.Batches, batch)
			out.Stats.BatchesCreated++
		}

		if kind.IsCumulative() {
			t.applyCumulativeRow(batch, mapped)
		} else {
			t.applyInspectionRow(batch, mapped, raw, cfg, kind, sheet, rowNo, out)
		}

		batch.RiskLevel = t.classify(batch.RejectionRate())
		out.Stats.RowsProcessed++
	}

	return out
}

// convertRow 应用类型转换与默认值，产出字段名到值的行
func (t *Transformer) convertRow(sheet *model.Sheet, raw map[string]model.CellValue, cfg *model.MappingConfig, fieldColumn map[string]string, rowNo int, out *Output) map[string]model.CellValue {
	mapped := make(map[string]model.CellValue, len(cfg.Conversions))

	for field, targetType := range cfg.Conversions {
		col, mappedCol := fieldColumn[field]
		var cell model.CellValue
		if mappedCol {
			cell = raw[col]
		}
		if cell.IsNull() {
			if def, ok := cfg.Defaults[field]; ok {
				mapped[field] = def
			}
			continue
		}

		switch targetType {
		case model.FieldTypeNumber:
			n, warn := t.toNumber(cell)
			if warn != "" {
				out.warn(sheet.Name, rowNo, col, warn)
			}
			mapped[field] = model.NumberValue(n)
		case model.FieldTypeDate:
			d, warn := t.toDate(cell)
			if warn != "" {
				out.warn(sheet.Name, rowNo, col, warn)
			}
			mapped[field] = model.DateValue(d)
		default:
			mapped[field] = model.TextValue(cell.AsText())
		}
	}

	return mapped
}

// applyInspectionRow 检验类报表：数量累加，缺陷列展开为缺陷记录
func (t *Transformer) applyInspectionRow(batch *model.Batch, mapped map[string]model.CellValue, raw map[string]model.CellValue, cfg *model.MappingConfig, kind model.ReportKind, sheet *model.Sheet, rowNo int, out *Output) {
	stage := stageFor(kind)

	inspected := numberOf(mapped, "inspected_quantity")
	accepted := numberOf(mapped, "accepted_quantity")
	rejected := numberOf(mapped, "rejected_quantity")

	// 缺陷列在映射之外，按列名识别
	var defectTotal float64
	for _, col := range sheet.Headers {
		if cfg.FieldFor(col) != "" || !isDefectColumn(col) {
			continue
		}
		qty, warn := t.toNumber(raw[col])
		if warn != "" {
			out.warn(sheet.Name, rowNo, col, warn)
		}
		if qty <= 0 {
			continue
		}
		defectTotal += qty
		out.Defects = append(out.Defects, &model.DefectRecord{
			BatchNumber: batch.BatchNumber,
			Stage:       stage,
			DefectType:  col,
			Category:    categorize(col),
			Quantity:    qty,
			Severity:    severityOf(col),
			SourceRow:   rowNo,
		})
		out.Stats.DefectsCreated++
	}

	failed := rejected
	if failed == 0 {
		failed = defectTotal
	}
	passed := accepted
	if passed == 0 && inspected > failed {
		passed = inspected - failed
	}

	out.Inspections = append(out.Inspections, &model.InspectionRecord{
		BatchNumber:       batch.BatchNumber,
		Stage:             stage,
		InspectedQuantity: inspected,
		PassedQuantity:    passed,
		FailedQuantity:    failed,
		InspectionDate:    dateOf(mapped, "inspection_date"),
		SourceRow:         rowNo,
	})
	out.Stats.InspectionsCreated++

	batch.ProducedQuantity += inspected
	batch.RejectedQuantity += failed
	if batch.ProductionDate == "" {
		batch.ProductionDate = dateOf(mapped, "inspection_date")
	}
}

// applyCumulativeRow 汇总类报表：数量直接赋值而不是累加
func (t *Transformer) applyCumulativeRow(batch *model.Batch, mapped map[string]model.CellValue) {
	if n, ok := mapped["planned_quantity"].AsNumber(); ok {
		batch.PlannedQuantity = n
	}
	if n, ok := mapped["produced_quantity"].AsNumber(); ok {
		batch.ProducedQuantity = n
	}
	if n, ok := mapped["rejected_quantity"].AsNumber(); ok {
		batch.RejectedQuantity = n
	}
	if batch.ProductionDate == "" {
		batch.ProductionDate = dateOf(mapped, "production_date")
	}
}

// toNumber 数值转换：千分位、N/A、短横线、空串一律收敛为数值
// 负数取绝对值并提示，真正无法解析的文本记 warning 后按 0 处理
func (t *Transformer) toNumber(cell model.CellValue) (float64, string) {
	switch cell.Kind {
	case model.CellNumber:
		if cell.Num < 0 {
			return math.Abs(cell.Num), fmt.Sprintf("negative value %v converted to absolute", cell.Num)
		}
		return cell.Num, ""
	case model.CellDate:
		return float64(parser.DateToSerial(cell.Date)), ""
	case model.CellText:
		s := strings.TrimSpace(strings.ReplaceAll(cell.Text, ",", ""))
		switch strings.ToLower(s) {
		case "", "-", "n/a", "na", "nil":
			return 0, ""
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Sprintf("cannot convert %q to number, using 0", cell.Text)
		}
		if n < 0 {
			return math.Abs(n), fmt.Sprintf("negative value %v converted to absolute", n)
		}
		return n, ""
	default:
		return 0, ""
	}
}

// toDate 日期转换：序列号、ISO 与常见布局，无法解析退回当前日期
func (t *Transformer) toDate(cell model.CellValue) (time.Time, string) {
	switch cell.Kind {
	case model.CellDate:
		return cell.Date, ""
	case model.CellNumber:
		return parser.SerialToDate(cell.Num), ""
	case model.CellText:
		s := strings.TrimSpace(cell.Text)
		for _, layout := range []string{"2006-01-02", "02-01-2006", "02/01/2006", "January 2006", "Jan 2006"} {
			if d, err := time.Parse(layout, s); err == nil {
				return d, ""
			}
		}
		return t.now().UTC().Truncate(24 * time.Hour), fmt.Sprintf("cannot parse date %q, using current date", cell.Text)
	default:
		return t.now().UTC().Truncate(24 * time.Hour), "missing date, using current date"
	}
}

func (t *Transformer) classify(rate float64) model.RiskLevel {
	return t.risk.Classify(rate)
}

func (o *Output) warn(sheet string, row int, column, message string) {
	o.Warnings = append(o.Warnings, model.Issue{
		Message:  message,
		Severity: model.SeverityWarning,
		Sheet:    sheet,
		Row:      row,
		Column:   column,
	})
}

func numberOf(mapped map[string]model.CellValue, field string) float64 {
	n, _ := mapped[field].AsNumber()
	return n
}

func dateOf(mapped map[string]model.CellValue, field string) string {
	if d, ok := mapped[field].AsDate(); ok {
		return d.Format("2006-01-02")
	}
	return ""
}
