// Package pageblocks converts the text runs and drawing operators of a
// rendered page into ordered, typed content blocks.
//
// Basic usage with a PDF page:
//
//	doc, err := pdfsource.Open("paper.pdf")
//	if err != nil {
//	    return err
//	}
//	defer doc.Close()
//
//	page, err := doc.Page(1)
//	if err != nil {
//	    return err
//	}
//
//	result := pageblocks.NewExtractor().ExtractPage(ctx, page, 1)
//	if len(result.Warnings) > 0 {
//	    log.Println("Warnings:", pageblocks.FormatWarnings(result.Warnings))
//	}
//	for _, block := range result.Blocks {
//	    fmt.Println(block.ID, block.ContentType, block.Text)
//	}
//
// Any type that implements [PageSource] can be processed. Sources that also
// implement [OperatorSource] get operator-based image detection; all others
// fall back to synthesizing image regions above figure captions.
//
// Text blocks come out in reading order: lines are built from glyph runs,
// assigned to one or two columns, grouped into paragraphs and ordered row
// by row. Each paragraph is classified as TEXT, MATH, TABLE or IMAGE (a
// figure caption). Image blocks follow the text blocks.
//
// Extraction never fails. Problems with a page are reported as [Warning]
// values and logged through log/slog; the page then yields fewer or no
// blocks.
package pageblocks
