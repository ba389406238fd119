package parser

import (
	"strings"
	"unicode"

	"rais/internal/model"
)

// 表头关键字集合，命中一个记 +10 分
var headerKeywords = []string{
	"s.no", "sl.no", "batch", "lot", "date", "month", "year",
	"production", "produced", "dispatch", "received", "inspected",
	"accepted", "rejected", "reject", "defect", "qty", "quantity",
	"total", "percentage", "pass", "fail", "status", "inspector",
	"stage", "item", "product", "code", "remark", "result",
}

const (
	headerScanLimit   = 20 // 最多扫描前 20 行
	headerMinNonEmpty = 3  // 非空单元格少于 3 的行不参与评选
)

// LocateHeaderRow 在网格前若干行中评选最可能的表头行
// 没有合格行时返回 0，降级继续而不是报错
func LocateHeaderRow(grid model.RawGrid) int {
	bestRow := 0
	bestScore := 0

	limit := len(grid.Cells)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}

	for i := 0; i < limit; i++ {
		score, ok := scoreHeaderRow(grid.Cells[i])
		if !ok {
			continue
		}
		// 同分取靠前的行
		if score > bestScore {
			bestScore = score
			bestRow = i
		}
	}

	return bestRow
}

// scoreHeaderRow 给单行打分；非空单元格不足时判定为不合格
func scoreHeaderRow(row []string) (score int, qualified bool) {
	nonEmpty := 0
	keywordHits := 0

	for _, cell := range row {
		text := strings.TrimSpace(cell)
		if text == "" {
			continue
		}
		nonEmpty++

		lower := strings.ToLower(text)
		if containsHeaderKeyword(lower) {
			keywordHits++
			score += 10
		}
		if isMostlyAlphabetic(text) {
			score += 3
		}
		if isPurelyNumeric(text) {
			score -= 5
		}
	}

	if nonEmpty < headerMinNonEmpty {
		return 0, false
	}

	// 关键字聚集加分（取高档，不叠加）
	switch {
	case keywordHits >= 5:
		score += 20
	case keywordHits >= 3:
		score += 15
	}

	if score <= 0 {
		return 0, false
	}
	return score, true
}

func containsHeaderKeyword(lower string) bool {
	for _, kw := range headerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// isMostlyAlphabetic 字母占比超过 0.7
func isMostlyAlphabetic(text string) bool {
	letters := 0
	total := 0
	for _, r := range text {
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total == 0 {
		return false
	}
	return float64(letters)/float64(total) > 0.7
}

// isPurelyNumeric 去掉千分位和小数点后只剩数字
func isPurelyNumeric(text string) bool {
	seen := false
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			seen = true
		case r == ',' || r == '.' || r == '-' || r == '+' || r == ' ':
		default:
			return false
		}
	}
	return seen
}
