package model

import "math"

// TextRun is one positioned glyph run as reported by a page renderer.
// Transform is the run's [a b c d e f] text matrix in bottom-up user space;
// Width and Height are the renderer's measured extents (0 when unknown).
type TextRun struct {
	Text      string
	Transform []float64
	Width     float64
	Height    float64
	FontName  string
}

// Viewport describes a page rendered at a given scale. Transform maps user
// space onto top-down viewport coordinates.
type Viewport struct {
	Width     float64
	Height    float64
	Scale     float64
	Rotation  int
	Transform Matrix
}

// NewViewport builds a viewport for a page whose view box is
// [x0 y0 x1 y1] in user space, rotated clockwise by rotation degrees
// (a multiple of 90) and scaled by scale.
func NewViewport(viewBox [4]float64, scale float64, rotation int) Viewport {
	if scale <= 0 || !isFinite(scale) {
		scale = 1
	}
	rotation %= 360
	if rotation < 0 {
		rotation += 360
	}

	x0, y0, x1, y1 := viewBox[0], viewBox[1], viewBox[2], viewBox[3]
	centerX := (x0 + x1) / 2
	centerY := (y0 + y1) / 2

	var ra, rb, rc, rd float64
	switch rotation {
	case 90:
		ra, rb, rc, rd = 0, 1, 1, 0
	case 180:
		ra, rb, rc, rd = -1, 0, 0, 1
	case 270:
		ra, rb, rc, rd = 0, -1, -1, 0
	default:
		rotation = 0
		ra, rb, rc, rd = 1, 0, 0, -1
	}

	var offsetX, offsetY, width, height float64
	if ra == 0 {
		offsetX = math.Abs(centerY-y0) * scale
		offsetY = math.Abs(centerX-x0) * scale
		width = math.Abs(y1-y0) * scale
		height = math.Abs(x1-x0) * scale
	} else {
		offsetX = math.Abs(centerX-x0) * scale
		offsetY = math.Abs(centerY-y0) * scale
		width = math.Abs(x1-x0) * scale
		height = math.Abs(y1-y0) * scale
	}

	return Viewport{
		Width:    width,
		Height:   height,
		Scale:    scale,
		Rotation: rotation,
		Transform: Matrix{
			ra * scale,
			rb * scale,
			rc * scale,
			rd * scale,
			offsetX - ra*scale*centerX - rc*scale*centerY,
			offsetY - rb*scale*centerX - rd*scale*centerY,
		},
	}
}

// OpCode identifies a drawing operator in an OperatorList
type OpCode int

// Operator codes understood by the image detector. Values match the
// numbering used by pdf.js operator lists.
const (
	OpSave                    OpCode = 10
	OpRestore                 OpCode = 11
	OpTransform               OpCode = 12
	OpPaintImageMaskXObject   OpCode = 83
	OpPaintImageXObject       OpCode = 85
	OpPaintInlineImageXObject OpCode = 86
	OpPaintImageXObjectRepeat OpCode = 88
)

// String returns the operator name
func (op OpCode) String() string {
	switch op {
	case OpSave:
		return "save"
	case OpRestore:
		return "restore"
	case OpTransform:
		return "transform"
	case OpPaintImageMaskXObject:
		return "paintImageMaskXObject"
	case OpPaintImageXObject:
		return "paintImageXObject"
	case OpPaintInlineImageXObject:
		return "paintInlineImageXObject"
	case OpPaintImageXObjectRepeat:
		return "paintImageXObjectRepeat"
	default:
		return "unknown"
	}
}

// PaintsImage reports whether the operator paints an image
func (op OpCode) PaintsImage() bool {
	switch op {
	case OpPaintImageMaskXObject, OpPaintImageXObject,
		OpPaintInlineImageXObject, OpPaintImageXObjectRepeat:
		return true
	}
	return false
}

// OperatorList is a page's drawing operators as two parallel sequences.
// Args[i] holds the arguments of Fns[i]; it may be nil or shorter than Fns.
type OperatorList struct {
	Fns  []OpCode
	Args [][]any
}

// Append adds an operator and its arguments
func (l *OperatorList) Append(op OpCode, args ...any) {
	l.Fns = append(l.Fns, op)
	l.Args = append(l.Args, args)
}

// Len returns the number of operators
func (l *OperatorList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Fns)
}

// ArgsAt returns the arguments of the i-th operator, or nil
func (l *OperatorList) ArgsAt(i int) []any {
	if l == nil || i < 0 || i >= len(l.Args) {
		return nil
	}
	return l.Args[i]
}
