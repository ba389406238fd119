package mapper

import (
	"rais/internal/model"
)

// 各报表类型的规范字段定义，映射的目标 schema
// Required 字段缺失时由映射层补默认值并记 warning，不会中断导入

var inspectionSchema = []model.FieldSpec{
	{Name: "batch_number", Type: model.FieldTypeText, Required: false, Description: "批次号或批号"},
	{Name: "inspection_date", Type: model.FieldTypeDate, Required: true, Description: "检验日期"},
	{Name: "inspected_quantity", Type: model.FieldTypeNumber, Required: true, Description: "受检数量"},
	{Name: "accepted_quantity", Type: model.FieldTypeNumber, Required: false, Description: "合格数量"},
	{Name: "rejected_quantity", Type: model.FieldTypeNumber, Required: false, Description: "不合格数量"},
	{Name: "received_quantity", Type: model.FieldTypeNumber, Required: false, Description: "收到数量"},
	{Name: "inspector", Type: model.FieldTypeText, Required: false, Description: "检验员"},
	{Name: "remarks", Type: model.FieldTypeText, Required: false, Description: "备注"},
}

var cumulativeSchema = []model.FieldSpec{
	{Name: "production_date", Type: model.FieldTypeDate, Required: true, Description: "生产月份或日期"},
	{Name: "planned_quantity", Type: model.FieldTypeNumber, Required: false, Description: "计划产量"},
	{Name: "produced_quantity", Type: model.FieldTypeNumber, Required: true, Description: "实际产量"},
	{Name: "dispatched_quantity", Type: model.FieldTypeNumber, Required: false, Description: "发运数量"},
	{Name: "rejected_quantity", Type: model.FieldTypeNumber, Required: false, Description: "累计不合格数"},
	{Name: "remarks", Type: model.FieldTypeText, Required: false, Description: "备注"},
}

// SchemaFor 返回指定报表类型的规范字段列表
func SchemaFor(kind model.ReportKind) []model.FieldSpec {
	if kind.IsCumulative() {
		return cumulativeSchema
	}
	return inspectionSchema
}

// dateFieldName 该类型下批次键可用的日期字段
func dateFieldName(kind model.ReportKind) string {
	if kind.IsCumulative() {
		return "production_date"
	}
	return "inspection_date"
}
