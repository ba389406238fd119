package importer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"rais/internal/mapper"
	"rais/internal/model"
	"rais/internal/store"
	"rais/internal/transformer"
)

func newTestCoordinator(t *testing.T) (*Coordinator, *store.TwoTier) {
	t.Helper()

	permanent, err := store.New(filepath.Join(t.TempDir(), "rais.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { permanent.Close() })

	twoTier := store.NewTwoTier(store.NewSessionStore(nil), permanent)
	c := NewCoordinator(
		mapper.NewColumnMapper(nil, 0.6, 16),
		transformer.NewTransformer(0, 0),
		twoTier,
	)
	return c, twoTier
}

func workbookBytes(t *testing.T, sheet string, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// 表头上方带两行元数据的检验表
func trolleyWorkbook(t *testing.T) []byte {
	return workbookBytes(t, "APRIL 25", [][]interface{}{
		{"VISUAL INSPECTION REPORT"},
		{"", "Prepared by QA"},
		{"DATE", "No of TROLLEYS", "COAG", "Raised Wire", "Total"},
		{45748, 26, 5, 11, 26},
		{45749, 71, 17, 9, 71},
	})
}

func TestImport_VisualReportEndToEnd(t *testing.T) {
	t.Parallel()

	c, twoTier := newTestCoordinator(t)

	report := c.ImportSync(context.Background(), ImportOptions{
		Filename:  "visual inspection report April.xlsx",
		Data:      trolleyWorkbook(t),
		SessionID: "s1",
	})

	if report == nil || !report.Success {
		t.Fatalf("import should succeed, got %+v", report)
	}
	if report.Kind != model.KindVisual {
		t.Fatalf("kind want=%s got=%s", model.KindVisual, report.Kind)
	}
	if report.Stats.RowsProcessed != 2 {
		t.Fatalf("rows want=2 got=%d", report.Stats.RowsProcessed)
	}
	if len(report.Batches) != 2 {
		t.Fatalf("batches want=2 got=%d", len(report.Batches))
	}

	var coag *model.DefectRecord
	for _, d := range report.Defects {
		if d.DefectType == "coag" && d.SourceRow == 4 {
			coag = d
		}
	}
	if coag == nil || coag.Quantity != 5 {
		t.Fatalf("first-row coag defect with quantity 5 expected, got %+v", coag)
	}

	// 数据已进会话层但不进永久层
	session := twoTier.ReadSession("s1")
	if session.Defects["coag"].Count != 22 {
		t.Fatalf("session coag count want=22 got=%v", session.Defects["coag"].Count)
	}
	permanent, err := twoTier.ReadPermanent()
	if err != nil {
		t.Fatalf("read permanent: %v", err)
	}
	if len(permanent.Defects) != 0 {
		t.Fatalf("permanent store must stay empty before commit")
	}
}

func TestImport_UnknownFormatStillSucceeds(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)

	report := c.ImportSync(context.Background(), ImportOptions{
		Filename:  "data.xlsx",
		Data:      workbookBytes(t, "Sheet1", [][]interface{}{{"Foo", "Baz"}, {"x", "y"}}),
		SessionID: "s1",
	})

	if report == nil || !report.Success {
		t.Fatalf("unknown format must never be a fatal error, got %+v", report)
	}
	if report.Kind != model.KindUnknown {
		t.Fatalf("kind want=%s got=%s", model.KindUnknown, report.Kind)
	}
	if len(report.Warnings) == 0 {
		t.Fatalf("unknown format should report warnings")
	}
}

func TestImport_GarbageBytesFail(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)

	report := c.ImportSync(context.Background(), ImportOptions{
		Filename:  "junk.xlsx",
		Data:      []byte("definitely not a spreadsheet"),
		SessionID: "s1",
	})

	if report == nil || report.Success {
		t.Fatalf("unreadable bytes must fail, got %+v", report)
	}
	if len(report.Errors) == 0 {
		t.Fatalf("fatal failure should carry an error message")
	}
}

func TestImport_DuplicateInSessionSkipped(t *testing.T) {
	t.Parallel()

	c, twoTier := newTestCoordinator(t)
	data := trolleyWorkbook(t)
	opts := ImportOptions{Filename: "v.xlsx", Data: data, SessionID: "s1"}

	first := c.ImportSync(context.Background(), opts)
	second := c.ImportSync(context.Background(), opts)

	if !first.Success || !second.Success {
		t.Fatalf("duplicate is a warning, not a failure")
	}
	if len(second.Sheets) != 0 || len(second.Warnings) == 0 {
		t.Fatalf("duplicate import should skip all sheets with a warning, got %+v", second)
	}

	// 计数没有翻倍
	session := twoTier.ReadSession("s1")
	if session.Defects["coag"].Count != 22 {
		t.Fatalf("session coag count want=22 got=%v", session.Defects["coag"].Count)
	}
}

func TestImport_DuplicateAllowedAfterForget(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	data := trolleyWorkbook(t)
	opts := ImportOptions{Filename: "v.xlsx", Data: data, SessionID: "s1"}

	c.ImportSync(context.Background(), opts)
	c.ForgetSession("s1")

	report := c.ImportSync(context.Background(), opts)
	if len(report.Sheets) != 1 {
		t.Fatalf("after forgetting the session the file imports again, got %d sheets", len(report.Sheets))
	}
}

func TestImport_KindOverride(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)

	report := c.ImportSync(context.Background(), ImportOptions{
		Filename:     "data.xlsx",
		Data:         trolleyWorkbook(t),
		SessionID:    "s1",
		KindOverride: model.KindShopfloor,
	})

	if report.Kind != model.KindShopfloor {
		t.Fatalf("kind override want=%s got=%s", model.KindShopfloor, report.Kind)
	}
	if len(report.Inspections) == 0 || report.Inspections[0].Stage != model.StageShopfloor {
		t.Fatalf("override should drive the inspection stage")
	}
}

func TestImport_ProgressEvents(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)

	var types []string
	for ev := range c.Import(context.Background(), ImportOptions{
		Filename:  "visual inspection report.xlsx",
		Data:      trolleyWorkbook(t),
		SessionID: "s1",
	}) {
		types = append(types, ev.Type)
	}

	if len(types) == 0 || types[0] != "start" {
		t.Fatalf("first event want=start got=%v", types)
	}
	if types[len(types)-1] != "done" {
		t.Fatalf("last event want=done got=%v", types)
	}
}
