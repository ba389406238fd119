package parser

import (
	"testing"

	"rais/internal/model"
)

func TestClassify_VisualByFilenameAndHeaders(t *testing.T) {
	t.Parallel()

	c := NewReportClassifier()
	headers := []string{"date", "no_of_trolleys", "coag", "raised_wire", "total"}

	got := c.Classify("Visual Inspection Report April.xlsx", headers)
	if got.Kind != model.KindVisual {
		t.Fatalf("kind want=%s got=%s", model.KindVisual, got.Kind)
	}
	if got.Score < filenameMatchScore {
		t.Fatalf("filename match should dominate, score=%d", got.Score)
	}
}

func TestClassify_HeadersAloneSuffice(t *testing.T) {
	t.Parallel()

	c := NewReportClassifier()
	headers := []string{"batch", "leakage", "burst_pressure", "valve_fitment"}

	got := c.Classify("upload-20250401.xlsx", headers)
	if got.Kind != model.KindIntegrity {
		t.Fatalf("kind want=%s got=%s", model.KindIntegrity, got.Kind)
	}
}

func TestClassify_UnknownHeaders(t *testing.T) {
	t.Parallel()

	c := NewReportClassifier()

	got := c.Classify("data.xlsx", []string{"foo", "baz"})
	if got.Kind != model.KindUnknown {
		t.Fatalf("kind want=%s got=%s", model.KindUnknown, got.Kind)
	}
}

func TestClassify_CumulativeSpellings(t *testing.T) {
	t.Parallel()

	c := NewReportClassifier()
	headers := []string{"month", "total_production", "total_rejection"}

	for _, name := range []string{"Commulative 2025.xlsx", "Cummulative 2025.xlsx"} {
		got := c.Classify(name, headers)
		if got.Kind != model.KindCumulative {
			t.Fatalf("%s: kind want=%s got=%s", name, model.KindCumulative, got.Kind)
		}
	}
}

func TestClassify_YearlyProductionBeatsPlainCumulative(t *testing.T) {
	t.Parallel()

	c := NewReportClassifier()
	headers := []string{"month", "production", "dispatch"}

	got := c.Classify("Yearly Production Commulative 2025.xlsx", headers)
	if got.Kind != model.KindProductionCumulative {
		t.Fatalf("kind want=%s got=%s", model.KindProductionCumulative, got.Kind)
	}
}
