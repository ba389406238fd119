package parser

import (
	"testing"

	"rais/internal/model"
)

func TestNormalizeHeader_Basic(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"No of TROLLEYS": "no_of_trolleys",
		"Raised Wire":    "raised_wire",
		"  DATE  ":       "date",
		"Rej. Qty (%)":   "rej_qty",
		"批次":             "",
	}
	for in, want := range cases {
		if got := NormalizeHeader(in); got != want {
			t.Fatalf("NormalizeHeader(%q) want=%q got=%q", in, want, got)
		}
	}
}

func TestNormalizeHeader_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"No of TROLLEYS", "Rej. Qty (%)", "COAG", "s.no."}
	for _, in := range inputs {
		once := NormalizeHeader(in)
		twice := NormalizeHeader(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestNormalizeHeaders_Duplicates(t *testing.T) {
	t.Parallel()

	got := NormalizeHeaders([]string{"Qty", "Qty", "Qty", "", "Total"})
	want := []string{"qty", "qty_1", "qty_2", "column_3", "total"}
	if len(got) != len(want) {
		t.Fatalf("length mismatch: want=%d got=%d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("headers[%d] want=%q got=%q", i, want[i], got[i])
		}
	}
}

func TestNormalizeCell_SerialDate(t *testing.T) {
	t.Parallel()

	v := NormalizeCell("45748")
	d, ok := v.AsDate()
	if !ok {
		t.Fatalf("expected date, got kind=%d", v.Kind)
	}
	if got := d.Format("2006-01-02"); got != "2025-04-01" {
		t.Fatalf("serial 45748 want=2025-04-01 got=%s", got)
	}

	// 反向换算回同一序列号
	if serial := DateToSerial(d); serial != 45748 {
		t.Fatalf("round trip serial want=45748 got=%d", serial)
	}
}

func TestNormalizeCell_NumberAndNull(t *testing.T) {
	t.Parallel()

	if v := NormalizeCell("1,234.5"); v.Kind != model.CellNumber || v.Num != 1234.5 {
		t.Fatalf("1,234.5 want number 1234.5 got kind=%d num=%v", v.Kind, v.Num)
	}
	// 区间外的整数保持数值
	if v := NormalizeCell("26"); v.Kind != model.CellNumber || v.Num != 26 {
		t.Fatalf("26 want number got kind=%d", v.Kind)
	}
	for _, in := range []string{"", "   ", "#N/A", "#DIV/0!", "null"} {
		if v := NormalizeCell(in); !v.IsNull() {
			t.Fatalf("NormalizeCell(%q) want null got kind=%d", in, v.Kind)
		}
	}
	if v := NormalizeCell("COAG"); v.Kind != model.CellText || v.Text != "COAG" {
		t.Fatalf("COAG want text got kind=%d", v.Kind)
	}
}

func TestNormalizeCell_DateString(t *testing.T) {
	t.Parallel()

	v := NormalizeCell("2025-04-01")
	if v.ISODate() != "2025-04-01" {
		t.Fatalf("2025-04-01 want date got kind=%d", v.Kind)
	}
	if v := NormalizeCell("April 2025"); v.ISODate() != "2025-04-01" {
		t.Fatalf("April 2025 want=2025-04-01 got=%q", v.ISODate())
	}
}

func TestBuildSheet_SkipsEmptyRows(t *testing.T) {
	t.Parallel()

	grid := model.RawGrid{
		SheetName: "APRIL 25",
		Cells: [][]string{
			{"DATE", "Inspected Qty", "Rejected Qty"},
			{"45748", "26", "5"},
			{"", "", ""},
			{"45749", "71", "17"},
		},
	}

	sheet := BuildSheet(grid, "visual inspection report.xlsx")
	if sheet.HeaderRow != 0 {
		t.Fatalf("header row want=0 got=%d", sheet.HeaderRow)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("rows want=2 got=%d", len(sheet.Rows))
	}
	if sheet.RowNos[1] != 4 {
		t.Fatalf("second data row no want=4 got=%d", sheet.RowNos[1])
	}
}
