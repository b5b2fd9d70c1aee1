package model

import "math"

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// BBox represents an axis-aligned bounding box in top-down page coordinates
// (Y grows downward, so Y is the top edge).
type BBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewBBox creates a bounding box from coordinates
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// NewBBoxFromEdges creates a bounding box from its four edges
func NewBBoxFromEdges(left, top, right, bottom float64) BBox {
	return BBox{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// BBoxOfPoints returns the smallest box containing all points
func BBoxOfPoints(points ...Point) BBox {
	if len(points) == 0 {
		return BBox{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return NewBBoxFromEdges(minX, minY, maxX, maxY)
}

// Left returns the left edge X coordinate
func (b BBox) Left() float64 {
	return b.X
}

// Right returns the right edge X coordinate
func (b BBox) Right() float64 {
	return b.X + b.Width
}

// Top returns the top edge Y coordinate
func (b BBox) Top() float64 {
	return b.Y
}

// Bottom returns the bottom edge Y coordinate
func (b BBox) Bottom() float64 {
	return b.Y + b.Height
}

// CenterX returns the horizontal center
func (b BBox) CenterX() float64 {
	return b.X + b.Width/2
}

// Intersection returns the intersection of two bounding boxes, or an empty
// box when they do not overlap with positive area.
func (b BBox) Intersection(other BBox) BBox {
	left := math.Max(b.Left(), other.Left())
	right := math.Min(b.Right(), other.Right())
	top := math.Max(b.Top(), other.Top())
	bottom := math.Min(b.Bottom(), other.Bottom())

	if right <= left || bottom <= top {
		return BBox{}
	}
	return NewBBoxFromEdges(left, top, right, bottom)
}

// Union returns the union of two bounding boxes
func (b BBox) Union(other BBox) BBox {
	return NewBBoxFromEdges(
		math.Min(b.Left(), other.Left()),
		math.Min(b.Top(), other.Top()),
		math.Max(b.Right(), other.Right()),
		math.Max(b.Bottom(), other.Bottom()),
	)
}

// Area returns the area of the bounding box
func (b BBox) Area() float64 {
	return b.Width * b.Height
}

// OverlapRatio returns the intersection area divided by the smaller of the
// two areas. A zero smaller area divides by 1 instead.
func (b BBox) OverlapRatio(other BBox) float64 {
	inter := b.Intersection(other)
	if inter.IsEmpty() {
		return 0
	}

	minArea := math.Min(b.Area(), other.Area())
	if minArea == 0 {
		minArea = 1
	}
	return inter.Area() / minArea
}

// HorizontalOverlap returns the width shared by the box and [minX, maxX]
func (b BBox) HorizontalOverlap(minX, maxX float64) float64 {
	w := math.Min(b.Right(), maxX) - math.Max(b.Left(), minX)
	if w < 0 {
		return 0
	}
	return w
}

// IsEmpty returns true if the bounding box has zero area
func (b BBox) IsEmpty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// IsValid returns true if the bounding box has finite, positive dimensions
func (b BBox) IsValid() bool {
	return isFinite(b.X) && isFinite(b.Y) && isFinite(b.Width) && isFinite(b.Height) &&
		b.Width > 0 && b.Height > 0
}

// Matrix represents a 2D affine transformation [a b c d e f] mapping
// (x, y) to (a*x + c*y + e, b*x + d*y + f).
type Matrix [6]float64

// Identity returns an identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Transform applies the matrix transformation to a point
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Multiply returns the matrix that applies m first and then other
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// Concat returns m with other concatenated on the right, i.e. the matrix that
// applies other first and then m. This is how a cm operator updates the
// current transform.
func (m Matrix) Concat(other Matrix) Matrix {
	return other.Multiply(m)
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale creates a scaling matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// IsIdentity returns true if the matrix is an identity matrix
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// MatrixFrom builds a matrix from up to six values. Missing or non-finite
// slots take the identity value for that slot.
func MatrixFrom(values []float64) Matrix {
	m := Identity()
	for i := 0; i < len(values) && i < 6; i++ {
		if isFinite(values[i]) {
			m[i] = values[i]
		}
	}
	return m
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
