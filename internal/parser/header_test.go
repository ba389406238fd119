package parser

import (
	"testing"

	"rais/internal/model"
)

func TestLocateHeaderRow_MetadataAboveHeader(t *testing.T) {
	t.Parallel()

	grid := model.RawGrid{
		SheetName: "APRIL 25",
		Cells: [][]string{
			{"VISUAL INSPECTION REPORT"},
			{"", "Prepared by QA"},
			{"DATE", "No of TROLLEYS", "COAG", "Raised Wire", "Total"},
			{"45748", "26", "5", "11", "26"},
			{"45749", "71", "17", "9", "71"},
		},
	}

	if got := LocateHeaderRow(grid); got != 2 {
		t.Fatalf("header row want=2 got=%d", got)
	}
}

func TestLocateHeaderRow_KeywordRowBeatsNumericRow(t *testing.T) {
	t.Parallel()

	grid := model.RawGrid{
		Cells: [][]string{
			{"100", "200", "300", "400"},
			{"Batch No", "Inspection Date", "Rejected Qty", "Defect Type"},
		},
	}

	if got := LocateHeaderRow(grid); got != 1 {
		t.Fatalf("header row want=1 got=%d", got)
	}
}

func TestLocateHeaderRow_NoQualifyingRow(t *testing.T) {
	t.Parallel()

	grid := model.RawGrid{
		Cells: [][]string{
			{"1", "2"},
			{"foo"},
		},
	}

	if got := LocateHeaderRow(grid); got != 0 {
		t.Fatalf("header row want=0 got=%d", got)
	}
}

func TestLocateHeaderRow_TieFavorsEarlierRow(t *testing.T) {
	t.Parallel()

	grid := model.RawGrid{
		Cells: [][]string{
			{"alpha", "bravo", "charlie"},
			{"alpha", "bravo", "charlie"},
		},
	}

	if got := LocateHeaderRow(grid); got != 0 {
		t.Fatalf("header row want=0 got=%d", got)
	}
}
