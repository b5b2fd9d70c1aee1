// Package images recovers image regions on a page.
//
// The primary source is the page's operator list. [Detector.Walk] replays
// save / restore / transform operators on a [graphicsstate.Stack] seeded
// with the viewport transform and, for every image-painting operator, maps
// the unit square through the current transform. Boxes smaller than
// [Config.MinArea] are dropped.
//
// Candidates then pass two spatial filters, both backed by an R-tree:
//
//   - [Detector.FilterCoveredByText] drops candidates mostly covered by a
//     non-image text block (background art under text).
//   - [Detector.Dedup] keeps the first of any group of boxes whose overlap
//     ratio exceeds [Config.DedupOverlap].
//
// When operators are unavailable or yield nothing, [Detector.CaptionRegions]
// synthesizes a region above every figure caption instead.
package images
