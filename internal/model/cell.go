package model

import (
	"strconv"
	"time"
)

// CellKind 单元格值类型
type CellKind int

const (
	CellNull   CellKind = iota // 空值
	CellNumber                 // 数值
	CellText                   // 文本
	CellDate                   // 日期
)

// CellValue 规范化后的单元格值
// 源数据是动态类型，统一收敛为四种明确的变体，转换失败走默认值而不是报错
type CellValue struct {
	Kind CellKind
	Num  float64
	Text string
	Date time.Time
}

// NullValue 空值
func NullValue() CellValue {
	return CellValue{Kind: CellNull}
}

// NumberValue 数值
func NumberValue(n float64) CellValue {
	return CellValue{Kind: CellNumber, Num: n}
}

// TextValue 文本值
func TextValue(s string) CellValue {
	return CellValue{Kind: CellText, Text: s}
}

// DateValue 日期值
func DateValue(t time.Time) CellValue {
	return CellValue{Kind: CellDate, Date: t}
}

// IsNull 是否为空值
func (v CellValue) IsNull() bool {
	return v.Kind == CellNull
}

// AsNumber 按数值读取
func (v CellValue) AsNumber() (float64, bool) {
	if v.Kind == CellNumber {
		return v.Num, true
	}
	return 0, false
}

// AsText 按文本读取（数值与日期转为字符串表示）
func (v CellValue) AsText() string {
	switch v.Kind {
	case CellText:
		return v.Text
	case CellNumber:
		return formatNumber(v.Num)
	case CellDate:
		return v.Date.Format("2006-01-02")
	}
	return ""
}

// AsDate 按日期读取
func (v CellValue) AsDate() (time.Time, bool) {
	if v.Kind == CellDate {
		return v.Date, true
	}
	return time.Time{}, false
}

// ISODate 格式化为 YYYY-MM-DD，非日期返回空串
func (v CellValue) ISODate() string {
	if v.Kind != CellDate {
		return ""
	}
	return v.Date.Format("2006-01-02")
}

func formatNumber(n float64) string {
	// 整数不带小数点
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
