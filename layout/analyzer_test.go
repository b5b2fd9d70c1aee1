package layout

import (
	"reflect"
	"testing"

	"github.com/tsawler/pageblocks/text"
)

// twoColumnItems builds three lines per column, offset vertically so the
// two columns never share a baseline.
func twoColumnItems() []text.PositionedItem {
	return []text.PositionedItem{
		makeItem("left one", 50, 100, 200, 12),
		makeItem("left two", 50, 114, 200, 12),
		makeItem("left three", 50, 128, 200, 12),
		makeItem("right one", 350, 107, 200, 12),
		makeItem("right two", 350, 121, 200, 12),
		makeItem("right three", 350, 135, 200, 12),
	}
}

func TestAnalyzer_Empty(t *testing.T) {
	result := NewAnalyzer().Analyze(nil, 600)
	if result == nil {
		t.Fatal("Expected non-nil result")
	}
	if result.ParagraphCount() != 0 {
		t.Errorf("Expected 0 paragraphs, got %d", result.ParagraphCount())
	}
}

func TestAnalyzer_TwoColumns(t *testing.T) {
	result := NewAnalyzer().Analyze(twoColumnItems(), 600)

	if len(result.Lines) != 6 {
		t.Fatalf("Expected 6 lines, got %d", len(result.Lines))
	}
	if result.Columns.ColumnCount() != 2 {
		t.Fatalf("Expected 2 columns, got %d", result.Columns.ColumnCount())
	}
	if result.ParagraphCount() != 2 {
		t.Fatalf("Expected 2 paragraphs, got %d", result.ParagraphCount())
	}

	left, right := result.Paragraphs[0], result.Paragraphs[1]
	if left.Text != "left one\nleft two\nleft three" {
		t.Errorf("Unexpected left paragraph %q", left.Text)
	}
	if right.Text != "right one\nright two\nright three" {
		t.Errorf("Unexpected right paragraph %q", right.Text)
	}
	if left.Column != 0 || right.Column != 1 {
		t.Errorf("Expected columns 0 and 1, got %d and %d", left.Column, right.Column)
	}
	if result.AverageLineHeight != 12 {
		t.Errorf("Expected average line height 12, got %v", result.AverageLineHeight)
	}
}

func TestAnalyzer_TitleFormsPseudoColumn(t *testing.T) {
	items := append([]text.PositionedItem{
		makeItem("A Title Across The Page", 50, 50, 500, 12),
	}, twoColumnItems()...)

	result := NewAnalyzer().Analyze(items, 600)

	if result.ParagraphCount() != 3 {
		t.Fatalf("Expected 3 paragraphs, got %d", result.ParagraphCount())
	}
	title := result.Paragraphs[0]
	if title.Text != "A Title Across The Page" {
		t.Errorf("Expected title first, got %q", title.Text)
	}
	if title.Column != 2 {
		t.Errorf("Expected title in pseudo-column 2, got %d", title.Column)
	}
	if len(result.Columns.Unassigned) != 1 {
		t.Errorf("Expected 1 unassigned line, got %d", len(result.Columns.Unassigned))
	}
}

func TestAnalyzer_SingleColumnParagraphs(t *testing.T) {
	items := []text.PositionedItem{
		makeItem("First paragraph line one", 72, 100, 300, 12),
		makeItem("and line two.", 72, 114, 150, 12),
		makeItem("Second paragraph after a gap", 72, 150, 300, 12),
	}

	result := NewAnalyzer().Analyze(items, 612)

	if result.ParagraphCount() != 2 {
		t.Fatalf("Expected 2 paragraphs, got %d", result.ParagraphCount())
	}
	if result.Paragraphs[1].Break != BreakParagraph {
		t.Errorf("Expected paragraph break, got %s", result.Paragraphs[1].Break)
	}
}

func TestAnalyzer_Deterministic(t *testing.T) {
	analyzer := NewAnalyzer()
	first := analyzer.Analyze(twoColumnItems(), 600)
	second := analyzer.Analyze(twoColumnItems(), 600)

	if !reflect.DeepEqual(first.Paragraphs, second.Paragraphs) {
		t.Error("Expected identical paragraphs for identical input")
	}
}

func TestAnalyzer_CustomConfig(t *testing.T) {
	config := DefaultAnalyzerConfig()
	config.Column.SpreadRatio = 1.0 // never try two columns

	analyzer := NewAnalyzerWithConfig(config)
	if analyzer.Config().Column.SpreadRatio != 1.0 {
		t.Fatal("Expected custom config to be kept")
	}

	result := analyzer.Analyze(twoColumnItems(), 600)
	if result.Columns.ColumnCount() != 1 {
		t.Errorf("Expected 1 column, got %d", result.Columns.ColumnCount())
	}
}
