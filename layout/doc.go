// Package layout reconstructs page structure from positioned text items.
//
// The package is a pipeline of small, independently configurable stages:
//
//   - [LineBuilder] groups items sharing a baseline into [Line] values and
//     assembles their text with synthesized inter-item spacing.
//   - [ColumnAssigner] clusters lines into at most two reading columns with a
//     1-D two-means over line centers, then reattaches or evicts lines by
//     horizontal overlap.
//   - [ParagraphGrouper] merges consecutive lines of a column into
//     [Paragraph] values using gap, indent, font-size, and bullet rules.
//   - [ReadingOrderSorter] orders paragraphs across columns.
//
// [Analyzer] runs the whole pipeline for one page:
//
//	analyzer := layout.NewAnalyzer()
//	result := analyzer.Analyze(items, viewport.Width)
//	for _, p := range result.Paragraphs {
//		fmt.Println(p.Column, p.Text)
//	}
//
// # Column States
//
// A line's column membership moves through an explicit state machine:
// Unassigned, Tentative(id), Final(id). Clustering and the overlap claim move
// lines from Unassigned to Tentative, the conflict check moves Tentative lines
// back to Unassigned, and finalization renumbers surviving columns left to
// right. [Line.Column] is authoritative only once the line is final; lines
// that end unassigned report -1.
//
// # Configuration
//
// Every numeric threshold lives in a config struct with a Default*Config
// constructor, so retuning never touches the algorithms:
//
//	cfg := layout.DefaultAnalyzerConfig()
//	cfg.Paragraph.ParagraphGapFactor = 1.5
//	analyzer := layout.NewAnalyzerWithConfig(cfg)
//
// All sorts are stable and no stage iterates a map, so identical input
// always yields identical output.
package layout
