// Package classify tags paragraph text with a content type.
//
// Classification is an ordered list of [Rule] values evaluated top to bottom;
// the first rule that matches decides the type and text no rule matches is
// TEXT. The default rule set checks, in priority order:
//
//   - MATH: $...$ and \(...\) / \[...\] delimiters, LaTeX environments,
//     mathematical symbols, Greek letters, ^ and _ script markers, and LaTeX
//     macros such as \frac or \sum.
//   - TABLE: pipe-delimited columns, tab-delimited triples, or a leading
//     "Table N" caption.
//   - IMAGE: a leading figure caption ("Figure N", "Fig. N", "Image N",
//     "그림 N").
//
// Rules are plain values, so callers can reorder, drop, or extend them:
//
//	rules := append([]classify.Rule{myRule}, classify.DefaultRules()...)
//	c := classify.NewClassifierWithRules(rules)
//	ct := c.Classify(paragraph.Text)
package classify
