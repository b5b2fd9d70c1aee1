// Package text maps raw renderer glyph runs onto axis-aligned page geometry.
//
// A renderer reports each run as a string plus a six-value text matrix in
// bottom-up user space. The [Mapper] converts those runs into
// [PositionedItem] values in top-down page coordinates, the input of the
// layout package's line builder:
//
//	items := text.NewMapper().Map(runs, viewport.Height)
//
// Runs are dropped when their text is empty after whitespace normalization,
// when they are rotated (|b| + |c| above the rotation threshold), or when
// their derived geometry is zero or non-finite.
//
// # Normalization
//
// Run text is Unicode NFC-normalized and every whitespace sequence collapses
// to a single space. Leading and trailing spaces are kept on the item; the
// line builder trims them when it assembles line text.
package text
