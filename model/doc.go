// Package model provides the shared data types of the page layout engine.
//
// Every stage of the pipeline speaks in terms of these types: renderer input
// ([TextRun], [Viewport], [OperatorList]), geometry ([BBox], [Point],
// [Matrix]) and the final output unit, [TextBlock].
//
// # Coordinates
//
// All boxes use top-down page coordinates: the origin is the top-left corner
// of the viewport and Y grows downward. Renderer transforms are bottom-up user
// space; the text mapper and image detector convert between the two.
//
// # Matrices
//
// [Matrix] stores an affine transform as [a b c d e f]. [Matrix.Multiply]
// applies the receiver first; [Matrix.Concat] applies its argument first,
// which is how a content stream's cm operator updates the current transform:
//
//	ctm := model.Identity()
//	ctm = ctm.Concat(model.Translate(50, 50))
//	ctm = ctm.Concat(model.Scale(100, 100))
//	ctm.Transform(model.Point{X: 1, Y: 1}) // {150 150}
//
// # Blocks
//
// A [TextBlock] serializes to JSON with the wire names id, text, pageNum, x,
// y, width, height, contentType and fontSize. Content types encode as
// "TEXT", "MATH", "TABLE" and "IMAGE".
package model
