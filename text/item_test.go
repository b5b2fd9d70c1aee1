package text

import (
	"math"
	"testing"

	"github.com/tsawler/pageblocks/model"
)

func makeRun(s string, tm []float64, w, h float64) model.TextRun {
	return model.TextRun{Text: s, Transform: tm, Width: w, Height: h}
}

func TestMapBasicRun(t *testing.T) {
	items := MapRuns([]model.TextRun{
		makeRun("Hello", []float64{12, 0, 0, 12, 72, 700}, 30, 12),
	}, 792)

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.BBox.X != 72 || item.BBox.Y != 92 {
		t.Errorf("expected origin (72,92), got (%v,%v)", item.BBox.X, item.BBox.Y)
	}
	if item.BBox.Width != 30 || item.BBox.Height != 12 {
		t.Errorf("expected 30x12, got %vx%v", item.BBox.Width, item.BBox.Height)
	}
	if item.Right() != 102 || item.Bottom() != 104 {
		t.Errorf("expected right 102 bottom 104, got %v %v", item.Right(), item.Bottom())
	}
	if item.FontSize != 12 {
		t.Errorf("expected font size 12, got %v", item.FontSize)
	}
}

func TestMapDerivesMissingGeometry(t *testing.T) {
	items := MapRuns([]model.TextRun{
		makeRun("x", []float64{5, 0, 0, 10, 0, 100}, 0, 0),
	}, 200)

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].BBox.Width != 5 {
		t.Errorf("expected width 5 from sqrt(a²+b²), got %v", items[0].BBox.Width)
	}
	if items[0].BBox.Height != 10 {
		t.Errorf("expected height 10 from sqrt(c²+d²), got %v", items[0].BBox.Height)
	}
}

func TestMapDerivesWidthFromSkewedMatrix(t *testing.T) {
	// |b| + |c| = 0.4 stays under the rotation threshold
	items := MapRuns([]model.TextRun{
		makeRun("x", []float64{0.3, 0.4, 0, 10, 0, 100}, 0, 0),
	}, 200)

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if math.Abs(items[0].BBox.Width-0.5) > 1e-9 {
		t.Errorf("expected width 0.5 from sqrt(a²+b²), got %v", items[0].BBox.Width)
	}
}

func TestMapUsesAbsoluteReportedSize(t *testing.T) {
	items := MapRuns([]model.TextRun{
		makeRun("neg", []float64{1, 0, 0, 1, 0, 0}, -20, -8),
	}, 100)

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].BBox.Width != 20 || items[0].BBox.Height != 8 {
		t.Errorf("expected 20x8, got %vx%v", items[0].BBox.Width, items[0].BBox.Height)
	}
}

func TestMapDropsRuns(t *testing.T) {
	tests := []struct {
		name string
		run  model.TextRun
	}{
		{"empty text", makeRun("", []float64{12, 0, 0, 12, 0, 0}, 10, 12)},
		{"rotated", makeRun("rot", []float64{0, 12, -12, 0, 0, 0}, 10, 12)},
		{"slightly over threshold", makeRun("skew", []float64{12, 0.3, 0.2, 12, 0, 0}, 10, 12)},
		{"zero width", makeRun("w", []float64{0, 0, 0, 12, 0, 0}, 0, 12)},
		{"zero height", makeRun("h", []float64{12, 0, 0, 0, 0, 0}, 10, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := MapRuns([]model.TextRun{tt.run}, 792)
			if len(items) != 0 {
				t.Errorf("expected run to be dropped, got %+v", items)
			}
		})
	}
}

func TestMapKeepsSmallSkew(t *testing.T) {
	items := MapRuns([]model.TextRun{
		makeRun("ok", []float64{12, 0.2, 0.2, 12, 0, 0}, 10, 12),
	}, 792)
	if len(items) != 1 {
		t.Errorf("expected skew 0.4 to be kept, got %d items", len(items))
	}
}

func TestMapShortTransformUsesIdentityDefaults(t *testing.T) {
	items := MapRuns([]model.TextRun{
		makeRun("short", []float64{12}, 0, 0),
	}, 50)

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	b := items[0].BBox
	if b.X != 0 || b.Y != 50 || b.Width != 12 || b.Height != 1 {
		t.Errorf("unexpected box %+v", b)
	}
}

func TestMapNormalizesText(t *testing.T) {
	// "e" followed by a combining acute accent composes to U+00E9
	items := MapRuns([]model.TextRun{
		makeRun("cafe\u0301\t\n  bar", []float64{1, 0, 0, 1, 0, 0}, 10, 10),
	}, 100)

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Text != "caf\u00e9 bar" {
		t.Errorf("expected %q, got %q", "caf\u00e9 bar", items[0].Text)
	}
	if items[0].RuneCount() != 8 {
		t.Errorf("expected 8 runes, got %d", items[0].RuneCount())
	}
	if items[0].Raw != "cafe\u0301\t\n  bar" {
		t.Errorf("expected raw text to be preserved, got %q", items[0].Raw)
	}
}

func TestMapNonFiniteSlotsFallBack(t *testing.T) {
	items := MapRuns([]model.TextRun{
		makeRun("inf", []float64{12, 0, 0, 12, math.Inf(1), math.NaN()}, 10, math.NaN()),
	}, 100)

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	b := items[0].BBox
	if b.X != 0 || b.Y != 100 || b.Height != 12 {
		t.Errorf("expected x=0 y=100 height=12, got %+v", b)
	}
}

func TestMapPreservesOrder(t *testing.T) {
	runs := []model.TextRun{
		makeRun("b", []float64{1, 0, 0, 1, 50, 0}, 5, 5),
		makeRun("a", []float64{1, 0, 0, 1, 10, 0}, 5, 5),
	}
	items := MapRuns(runs, 100)
	if len(items) != 2 || items[0].Text != "b" || items[1].Text != "a" {
		t.Errorf("expected input order, got %+v", items)
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a  b", "a b"},
		{"\ta\n\nb ", " a b "},
		{" x", " x"},
		{"   ", " "},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeWhitespace(tt.in); got != tt.want {
			t.Errorf("NormalizeWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
