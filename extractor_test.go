package pageblocks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/tsawler/pageblocks/model"
)

const testPageHeight = 800

// run builds a glyph run whose box has its top-left corner at (x, y) in
// top-down page coordinates
func run(s string, x, y, w, h float64) model.TextRun {
	return model.TextRun{
		Text:      s,
		Transform: []float64{h, 0, 0, h, x, testPageHeight - y},
		Width:     w,
		Height:    h,
	}
}

type fakePage struct {
	runs        []model.TextRun
	textErr     error
	viewportErr error
	panicText   bool
}

func (p *fakePage) TextContent(ctx context.Context) ([]model.TextRun, error) {
	if p.panicText {
		panic("corrupt font")
	}
	return p.runs, p.textErr
}

func (p *fakePage) Viewport(scale float64) (model.Viewport, error) {
	if p.viewportErr != nil {
		return model.Viewport{}, p.viewportErr
	}
	return model.NewViewport([4]float64{0, 0, 600, testPageHeight}, scale, 0), nil
}

type fakeOperatorPage struct {
	fakePage
	ops      *model.OperatorList
	opsErr   error
	panicOps bool
}

func (p *fakeOperatorPage) OperatorList(ctx context.Context) (*model.OperatorList, error) {
	if p.panicOps {
		panic("bad operator")
	}
	return p.ops, p.opsErr
}

func twoColumnRuns() []model.TextRun {
	return []model.TextRun{
		run("left one", 50, 100, 200, 12),
		run("left two", 50, 114, 200, 12),
		run("left three", 50, 128, 200, 12),
		run("right one", 350, 107, 200, 12),
		run("right two", 350, 121, 200, 12),
		run("right three", 350, 135, 200, 12),
	}
}

func captionRuns() []model.TextRun {
	return []model.TextRun{run("Figure 1: Overview", 100, 500, 200, 12)}
}

func imageOperators() *model.OperatorList {
	list := &model.OperatorList{}
	list.Append(model.OpSave)
	list.Append(model.OpTransform, model.Matrix{100, 0, 0, 100, 50, 50})
	list.Append(model.OpPaintImageXObject, "Im1")
	list.Append(model.OpRestore)
	return list
}

func TestExtractTextBlocks_TwoColumns(t *testing.T) {
	blocks, warnings := NewExtractor().ExtractTextBlocks(context.Background(), &fakePage{runs: twoColumnRuns()}, 3)

	if len(warnings) != 0 {
		t.Fatalf("Expected no warnings, got %v", warnings)
	}
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}

	left, right := blocks[0], blocks[1]
	if left.ID != "block-3-0" || right.ID != "block-3-1" {
		t.Errorf("Expected IDs block-3-0 and block-3-1, got %s and %s", left.ID, right.ID)
	}
	if left.Text != "left one\nleft two\nleft three" {
		t.Errorf("Unexpected left text %q", left.Text)
	}
	if right.Text != "right one\nright two\nright three" {
		t.Errorf("Unexpected right text %q", right.Text)
	}
	if left.BBox != model.NewBBox(50, 100, 200, 40) {
		t.Errorf("Expected left bbox (50,100,200,40), got %+v", left.BBox)
	}
	if left.ContentType != model.ContentText || left.PageNum != 3 {
		t.Errorf("Expected TEXT block on page 3, got %s on page %d", left.ContentType, left.PageNum)
	}
	if left.FontSizeOr(0) != 12 {
		t.Errorf("Expected font size 12, got %v", left.FontSizeOr(0))
	}
}

func TestExtractTextBlocks_NoiseFilterKeepsIDs(t *testing.T) {
	page := &fakePage{runs: []model.TextRun{
		run("7", 220, 20, 6, 12),
		run("First paragraph line one", 72, 100, 300, 12),
		run("and line two.", 72, 114, 150, 12),
		run("Second paragraph after a gap", 72, 150, 300, 12),
	}}

	blocks, _ := NewExtractor().ExtractTextBlocks(context.Background(), page, 1)

	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].ID != "block-1-1" || blocks[1].ID != "block-1-2" {
		t.Errorf("Expected IDs block-1-1 and block-1-2, got %s and %s", blocks[0].ID, blocks[1].ID)
	}
	if blocks[0].Text != "First paragraph line one\nand line two." {
		t.Errorf("Unexpected first text %q", blocks[0].Text)
	}
	if blocks[1].Text != "Second paragraph after a gap" {
		t.Errorf("Unexpected second text %q", blocks[1].Text)
	}
}

func TestIsNoise(t *testing.T) {
	size := 12.0
	tests := []struct {
		name  string
		block model.TextBlock
		want  bool
	}{
		{"short single word", model.TextBlock{Text: "7", BBox: model.NewBBox(0, 0, 6, 12), FontSize: &size}, true},
		{"tall single word", model.TextBlock{Text: "Title", BBox: model.NewBBox(0, 0, 40, 14), FontSize: &size}, false},
		{"two words", model.TextBlock{Text: "two words", BBox: model.NewBBox(0, 0, 40, 12), FontSize: &size}, false},
		{"blank", model.TextBlock{Text: "   ", BBox: model.NewBBox(0, 0, 40, 30)}, true},
		{"single word math", model.TextBlock{Text: "α", ContentType: model.ContentMath, BBox: model.NewBBox(0, 0, 6, 12)}, false},
		{"image", model.TextBlock{Text: "", ContentType: model.ContentImage, BBox: model.NewBBox(0, 0, 6, 12)}, false},
		{"default font size", model.TextBlock{Text: "x", BBox: model.NewBBox(0, 0, 6, 13)}, true},
	}

	e := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.isNoise(tt.block); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestExtractTextBlocks_Failures(t *testing.T) {
	tests := []struct {
		name string
		page *fakePage
	}{
		{"text error", &fakePage{textErr: errors.New("broken stream")}},
		{"viewport error", &fakePage{runs: twoColumnRuns(), viewportErr: errors.New("no media box")}},
		{"panic", &fakePage{panicText: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, warnings := NewExtractor().ExtractTextBlocks(context.Background(), tt.page, 5)
			if blocks != nil {
				t.Errorf("Expected nil blocks, got %v", blocks)
			}
			if len(warnings) != 1 {
				t.Fatalf("Expected 1 warning, got %d", len(warnings))
			}
			if warnings[0].Page != 5 || warnings[0].Stage != StageText {
				t.Errorf("Unexpected warning %+v", warnings[0])
			}
		})
	}
}

func TestExtractTextBlocks_PanicMessage(t *testing.T) {
	_, warnings := NewExtractor().ExtractTextBlocks(context.Background(), &fakePage{panicText: true}, 1)
	if len(warnings) != 1 || !strings.Contains(warnings[0].Message, "panic: corrupt font") {
		t.Errorf("Expected panic warning, got %v", warnings)
	}
}

func TestExtractTextBlocks_EmptyPage(t *testing.T) {
	blocks, warnings := NewExtractor().ExtractTextBlocks(context.Background(), &fakePage{}, 1)
	if blocks != nil || warnings != nil {
		t.Errorf("Expected nil blocks and warnings, got %v and %v", blocks, warnings)
	}
}

func TestDetectImageRegions_Operators(t *testing.T) {
	page := &fakeOperatorPage{ops: imageOperators()}

	regions, warnings := NewExtractor().DetectImageRegions(context.Background(), page, 1, nil)

	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}
	if len(regions) != 1 {
		t.Fatalf("Expected 1 region, got %d", len(regions))
	}

	region := regions[0]
	if region.ID != "image-1-0" || region.Text != "[Image]" {
		t.Errorf("Unexpected region %s %q", region.ID, region.Text)
	}
	if region.BBox != model.NewBBox(50, 650, 100, 100) {
		t.Errorf("Expected bbox (50,650,100,100), got %+v", region.BBox)
	}
	if region.ContentType != model.ContentImage {
		t.Errorf("Expected IMAGE, got %s", region.ContentType)
	}
}

func TestDetectImageRegions_CaptionFallback(t *testing.T) {
	e := NewExtractor()
	page := &fakePage{runs: captionRuns()}

	textBlocks, _ := e.ExtractTextBlocks(context.Background(), page, 2)
	if len(textBlocks) != 1 || textBlocks[0].ContentType != model.ContentImage {
		t.Fatalf("Expected one IMAGE-typed caption block, got %+v", textBlocks)
	}

	regions, warnings := e.DetectImageRegions(context.Background(), page, 2, textBlocks)
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}
	if len(regions) != 1 {
		t.Fatalf("Expected 1 region, got %d", len(regions))
	}

	region := regions[0]
	if region.ID != "image-2-caption-0" {
		t.Errorf("Expected ID image-2-caption-0, got %s", region.ID)
	}
	if region.Text != "[Image for: Figure 1: Overview]" {
		t.Errorf("Unexpected text %q", region.Text)
	}
	if region.BBox != model.NewBBox(50, 422, 400, 72) {
		t.Errorf("Expected bbox (50,422,400,72), got %+v", region.BBox)
	}
}

func TestDetectImageRegions_OperatorFailures(t *testing.T) {
	tests := []struct {
		name     string
		page     *fakeOperatorPage
		warnings int
	}{
		{"error", &fakeOperatorPage{opsErr: errors.New("bad xobject")}, 1},
		{"unavailable", &fakeOperatorPage{opsErr: fmt.Errorf("page 2: %w", ErrOperatorListUnavailable)}, 0},
		{"panic", &fakeOperatorPage{panicOps: true}, 1},
		{"no images", &fakeOperatorPage{ops: &model.OperatorList{}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor()
			tt.page.runs = captionRuns()
			textBlocks, _ := e.ExtractTextBlocks(context.Background(), tt.page, 2)

			regions, warnings := e.DetectImageRegions(context.Background(), tt.page, 2, textBlocks)
			if len(warnings) != tt.warnings {
				t.Errorf("Expected %d warnings, got %v", tt.warnings, warnings)
			}
			for _, w := range warnings {
				if w.Stage != StageImages {
					t.Errorf("Expected stage %s, got %s", StageImages, w.Stage)
				}
			}
			if len(regions) != 1 || regions[0].ID != "image-2-caption-0" {
				t.Errorf("Expected caption fallback region, got %+v", regions)
			}
		})
	}
}

func TestDetectImageRegions_ViewportError(t *testing.T) {
	page := &fakeOperatorPage{fakePage: fakePage{viewportErr: errors.New("no media box")}, ops: imageOperators()}

	regions, warnings := NewExtractor().DetectImageRegions(context.Background(), page, 4, nil)
	if regions != nil {
		t.Errorf("Expected nil regions, got %v", regions)
	}
	if len(warnings) != 1 || warnings[0].Stage != StageImages {
		t.Errorf("Expected one images warning, got %v", warnings)
	}
}

// flakyViewportPage serves its viewport once and panics on later calls
type flakyViewportPage struct {
	fakePage
	calls int
}

func (p *flakyViewportPage) Viewport(scale float64) (model.Viewport, error) {
	p.calls++
	if p.calls > 1 {
		panic("decoder blew up")
	}
	return p.fakePage.Viewport(scale)
}

func TestExtractPage_ImageStagePanic(t *testing.T) {
	page := &flakyViewportPage{fakePage: fakePage{runs: twoColumnRuns()}}

	result := NewExtractor().ExtractPage(context.Background(), page, 6)

	if len(result.Blocks) != 2 {
		t.Errorf("Expected the 2 text blocks to survive, got %+v", result.Blocks)
	}
	for _, b := range result.Blocks {
		if b.ContentType == model.ContentImage {
			t.Errorf("Expected no image blocks, got %+v", b)
		}
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %v", result.Warnings)
	}
	w := result.Warnings[0]
	if w.Page != 6 || w.Stage != StageImages || !strings.Contains(w.Message, "panic: decoder blew up") {
		t.Errorf("Unexpected warning %+v", w)
	}
}

func TestExtractPage(t *testing.T) {
	page := &fakeOperatorPage{fakePage: fakePage{runs: twoColumnRuns()}, ops: imageOperators()}

	result := NewExtractor().ExtractPage(context.Background(), page, 1)

	if result.PageNum != 1 {
		t.Errorf("Expected page 1, got %d", result.PageNum)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}

	ids := make([]string, len(result.Blocks))
	for i, b := range result.Blocks {
		ids[i] = b.ID
	}
	expected := []string{"block-1-0", "block-1-1", "image-1-0"}
	if strings.Join(ids, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected blocks %v, got %v", expected, ids)
	}
	if result.Tables != nil {
		t.Errorf("Expected no tables without promotion, got %v", result.Tables)
	}
}

func TestExtractPage_Empty(t *testing.T) {
	result := NewExtractor().ExtractPage(context.Background(), &fakePage{}, 7)
	if result.Blocks == nil {
		t.Fatal("Expected non-nil blocks")
	}
	if len(result.Blocks) != 0 || len(result.Warnings) != 0 {
		t.Errorf("Expected empty result, got %+v", result)
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"pageNum":7,"blocks":[]}` {
		t.Errorf("Unexpected JSON %s", data)
	}
}

func TestExtractPage_PromoteTables(t *testing.T) {
	runs := []model.TextRun{
		run("Name | Age", 72, 100, 100, 12),
		run("Alice | 30", 72, 114, 100, 12),
	}

	plain := NewExtractor().ExtractPage(context.Background(), &fakePage{runs: runs}, 1)
	if len(plain.Blocks) != 1 || plain.Blocks[0].ContentType != model.ContentText {
		t.Fatalf("Expected one TEXT block without promotion, got %+v", plain.Blocks)
	}

	config := DefaultConfig()
	config.PromoteTables = true
	promoted := NewExtractorWithConfig(config).ExtractPage(context.Background(), &fakePage{runs: runs}, 1)

	if len(promoted.Blocks) != 1 || promoted.Blocks[0].ContentType != model.ContentTable {
		t.Fatalf("Expected one TABLE block, got %+v", promoted.Blocks)
	}
	if len(promoted.Tables) != 1 || promoted.Tables[0].ID != promoted.Blocks[0].ID {
		t.Errorf("Expected the promoted block in Tables, got %+v", promoted.Tables)
	}
}

func TestExtractPage_Deterministic(t *testing.T) {
	e := NewExtractor()
	newPage := func() PageSource {
		return &fakeOperatorPage{fakePage: fakePage{runs: append(twoColumnRuns(), captionRuns()...)}, ops: imageOperators()}
	}

	first, err := json.Marshal(e.ExtractPage(context.Background(), newPage(), 1))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	second, err := json.Marshal(e.ExtractPage(context.Background(), newPage(), 1))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("Expected identical output, got\n%s\n%s", first, second)
	}
}

func TestExtractor_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	base := NewExtractor()
	e := base.WithLogger(logger)
	if base.logger != nil {
		t.Error("Expected WithLogger to leave the original untouched")
	}

	e.ExtractPage(context.Background(), &fakePage{textErr: errors.New("broken stream")}, 9)

	out := buf.String()
	for _, want := range []string{"page degraded", "stage=text", "page=9", "broken stream"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestExtractor_WithConfigKeepsLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	e := NewExtractor().WithLogger(logger)

	config := DefaultConfig()
	config.PromoteTables = true
	next := e.WithConfig(config)

	if next.logger != logger {
		t.Error("Expected WithConfig to keep the logger")
	}
	if !next.Config().PromoteTables {
		t.Error("Expected new config to be applied")
	}
	if e.Config().PromoteTables {
		t.Error("Expected original config to be unchanged")
	}
}

func TestExtractor_WithClassifierNil(t *testing.T) {
	e := NewExtractor().WithClassifier(nil)
	blocks, _ := e.ExtractTextBlocks(context.Background(), &fakePage{runs: captionRuns()}, 1)
	if len(blocks) != 1 || blocks[0].ContentType != model.ContentImage {
		t.Errorf("Expected default classification, got %+v", blocks)
	}
}

func BenchmarkExtractPage(b *testing.B) {
	e := NewExtractor()
	page := &fakeOperatorPage{fakePage: fakePage{runs: append(twoColumnRuns(), captionRuns()...)}, ops: imageOperators()}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.ExtractPage(ctx, page, 1)
	}
}
