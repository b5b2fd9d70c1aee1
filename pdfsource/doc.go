// Package pdfsource exposes the pages of a PDF file as page sources for the
// block extractor.
//
// Documents are opened with github.com/ledongthuc/pdf:
//
//	doc, err := pdfsource.Open("paper.pdf")
//	if err != nil {
//	    return err
//	}
//	defer doc.Close()
//
//	page, err := doc.Page(1)
//	runs, err := page.TextContent(ctx)
//
// A Page reports its text as glyph runs, its viewport from the CropBox (or
// MediaBox) and /Rotate entries, and an operator list holding the
// save/restore/transform/paint-image operators of its content streams.
// Form XObjects are expanded inline, so images drawn inside forms are
// reported with the form's matrix applied.
//
// The underlying library panics on some malformed input. Every method
// recovers such panics and returns them as errors.
package pdfsource
