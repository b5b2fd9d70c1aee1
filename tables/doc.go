// Package tables promotes text blocks whose lines read as table rows.
//
// The classifier only recognizes tables with explicit markers (pipes, tabs,
// a "Table N" caption). [Detector.DetectTableRegions] is a second pass over
// already classified blocks: a TEXT block with at least [Config.MinRows]
// lines, every one of which splits into at least [Config.MinCols] non-empty
// cells on runs of two or more spaces, a tab, or a pipe, is promoted to
// TABLE in place.
//
//	tableBlocks := tables.DetectTableRegions(blocks)
//
// The returned slice holds every TABLE block, sorted top to bottom.
package tables
