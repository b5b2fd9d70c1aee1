package pageblocks_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/tsawler/pageblocks"
	"github.com/tsawler/pageblocks/model"
)

// staticPage is a page source backed by fixed glyph runs on a 600x800 page
type staticPage []model.TextRun

func (p staticPage) TextContent(ctx context.Context) ([]model.TextRun, error) {
	return p, nil
}

func (p staticPage) Viewport(scale float64) (model.Viewport, error) {
	return model.NewViewport([4]float64{0, 0, 600, 800}, scale, 0), nil
}

// line places a 12pt run with its top-left corner at (x, y) in top-down
// coordinates
func line(s string, x, y, width float64) model.TextRun {
	return model.TextRun{Text: s, Transform: []float64{12, 0, 0, 12, x, 800 - y}, Width: width, Height: 12}
}

func ExampleExtractor_ExtractPage() {
	page := staticPage{
		line("First paragraph line one", 72, 100, 300),
		line("and line two.", 72, 114, 150),
		line("Figure 1: Overview", 100, 500, 200),
	}

	result := pageblocks.NewExtractor().ExtractPage(context.Background(), page, 1)
	for _, b := range result.Blocks {
		fmt.Println(b.ID, b.ContentType, strings.ReplaceAll(b.Text, "\n", " / "))
	}
	// Output:
	// block-1-0 TEXT First paragraph line one / and line two.
	// block-1-1 IMAGE Figure 1: Overview
	// image-1-caption-0 IMAGE [Image for: Figure 1: Overview]
}

func ExampleParseConfig() {
	config, err := pageblocks.ParseConfig([]byte("promote_tables: true\nimages:\n  min_area: 500\n"))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(config.PromoteTables, config.Images.MinArea, config.Images.DedupOverlap)
	// Output:
	// true 500 0.75
}

func ExampleFormatWarnings() {
	fmt.Println(pageblocks.FormatWarnings([]pageblocks.Warning{
		{Page: 2, Stage: pageblocks.StageText, Message: "failed to get text content: unexpected EOF"},
	}))
	// Output:
	// page 2 (text): failed to get text content: unexpected EOF
}
