package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"rais/internal/model"
)

// Excel 日期序列号纪元：序列 0 = 1899-12-30
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// 合理的日期序列号区间（约 1954 年到 2173 年），整数值落在区间内按日期处理
const (
	serialMin = 20000
	serialMax = 100000
)

// 字符串日期的尝试格式，按顺序匹配
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"January 2006",
	"Jan 2006",
}

// Excel 错误字面量，一律按空值处理
var errorLiterals = map[string]bool{
	"#DIV/0!": true,
	"#N/A":    true,
	"#VALUE!": true,
	"#REF!":   true,
	"#NAME?":  true,
}

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeHeader 把表头文本转成规范字段标识
// 幂等：对已规范化的结果再次调用得到同样的字符串
func NormalizeHeader(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	normalized := nonAlnumRun.ReplaceAllString(lower, "_")
	return strings.Trim(normalized, "_")
}

// NormalizeHeaders 规范化整行表头并消除重名
// 空结果按列下标命名；重名按出现顺序追加 _1、_2
func NormalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))

	for i, name := range raw {
		h := NormalizeHeader(name)
		if h == "" {
			h = fmt.Sprintf("column_%d", i)
		}

		if n, dup := seen[h]; dup {
			base := h
			for {
				h = fmt.Sprintf("%s_%d", base, n)
				if _, taken := seen[h]; !taken {
					break
				}
				n++
			}
			seen[base] = n + 1
		}

		seen[h] = 1
		headers[i] = h
	}

	return headers
}

// NormalizeCell 把原始单元格文本转成带类型的值
func NormalizeCell(raw string) model.CellValue {
	text := strings.TrimSpace(raw)
	if text == "" || errorLiterals[text] || strings.EqualFold(text, "null") {
		return model.NullValue()
	}

	// 完整数字（允许千分位）
	numeric := strings.ReplaceAll(text, ",", "")
	if n, err := strconv.ParseFloat(numeric, 64); err == nil {
		// 区间内的整数按日期序列号处理
		if n == float64(int64(n)) && n >= serialMin && n <= serialMax {
			return model.DateValue(SerialToDate(n))
		}
		return model.NumberValue(n)
	}

	// 常见日期写法
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return model.DateValue(t)
		}
	}

	return model.TextValue(text)
}

// SerialToDate 日期序列号转日期
func SerialToDate(serial float64) time.Time {
	return serialEpoch.AddDate(0, 0, int(serial))
}

// DateToSerial 日期转序列号（整天）
func DateToSerial(t time.Time) int {
	return int(t.Sub(serialEpoch).Hours() / 24)
}

// IsEmptyRow 整行是否全为空值
func IsEmptyRow(row map[string]model.CellValue) bool {
	for _, v := range row {
		if !v.IsNull() {
			return false
		}
	}
	return true
}

// BuildSheet 从原始网格构建规范化工作表
// 表头以下的全空行直接丢弃，保留原始行号用于溯源
func BuildSheet(grid model.RawGrid, sourceFile string) *model.Sheet {
	headerRow := LocateHeaderRow(grid)

	var rawHeader []string
	if headerRow < len(grid.Cells) {
		rawHeader = grid.Cells[headerRow]
	}
	headers := NormalizeHeaders(rawHeader)

	sheet := &model.Sheet{
		Name:       grid.SheetName,
		SourceFile: sourceFile,
		HeaderRow:  headerRow,
		Headers:    headers,
	}

	for i := headerRow + 1; i < len(grid.Cells); i++ {
		raw := grid.Cells[i]
		row := make(map[string]model.CellValue, len(headers))
		for col, h := range headers {
			if col < len(raw) {
				row[h] = NormalizeCell(raw[col])
			} else {
				row[h] = model.NullValue()
			}
		}
		if IsEmptyRow(row) {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
		sheet.RowNos = append(sheet.RowNos, i+1)
	}

	return sheet
}
