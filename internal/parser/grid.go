package parser

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/xuri/excelize/v2"

	"rais/internal/model"
)

// 图表/汇总类工作表名关键字，解码阶段直接跳过
var skipSheetKeywords = []string{"chart", "graph", "summary"}

// DecodeWorkbook 把文件字节解码为原始网格列表
// 纯函数：同样的输入永远得到同样的输出，指纹用于上传去重
func DecodeWorkbook(data []byte, filename string) (*model.Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Filename: filename, Err: err}
	}
	defer f.Close()

	sum := sha256.Sum256(data)

	wb := &model.Workbook{
		Filename:    filename,
		Fingerprint: hex.EncodeToString(sum[:]),
	}

	for _, sheetName := range f.GetSheetList() {
		if isSkippableSheet(sheetName) {
			continue
		}

		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}

		cells := trimTrailingEmptyRows(rows)
		if len(cells) == 0 {
			continue
		}

		wb.Grids = append(wb.Grids, model.RawGrid{
			SheetName: sheetName,
			Cells:     cells,
		})
	}

	if len(wb.Grids) == 0 {
		return nil, &EmptyFileError{Filename: filename}
	}

	return wb, nil
}

// isSkippableSheet 图表、汇总页不含行数据
func isSkippableSheet(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range skipSheetKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// trimTrailingEmptyRows 去掉尾部全空行，保留中间空行（后续按空行跳过）
func trimTrailingEmptyRows(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && isBlankRow(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
