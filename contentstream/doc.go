// Package contentstream tokenizes PDF content streams into operations.
//
// A content stream is a flat sequence of operands followed by an operator:
//
//	ops, err := contentstream.Parse(streamData)
//	for _, op := range ops {
//	    fmt.Printf("%s %v\n", op.Operator, op.Operands)
//	}
//
// Operands decode to plain Go values: int64 and float64 for numbers, string
// for literal and hex strings, [Name] for names, [Array] and [Dict] for
// composite objects, bool for true/false and nil for null. Comments are
// skipped.
//
// Inline images (BI ... ID <data> EI) are reported as a single "BI"
// operation whose only operand is a [Dict] of the image parameters; the
// binary image data is not returned.
package contentstream
