package text

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/pageblocks/model"
)

// DefaultRotationThreshold is the largest |b| + |c| a run's matrix may carry
// before the run is treated as rotated text and dropped.
const DefaultRotationThreshold = 0.45

// PositionedItem is a single glyph run placed in top-down page coordinates
type PositionedItem struct {
	Text     string // normalized text
	Raw      string // text as reported by the renderer
	BBox     model.BBox
	FontSize float64 // equals the item height
	FontName string
}

// Right returns the right edge of the item
func (p PositionedItem) Right() float64 {
	return p.BBox.Right()
}

// Bottom returns the bottom edge of the item, which is its baseline
func (p PositionedItem) Bottom() float64 {
	return p.BBox.Bottom()
}

// RuneCount returns the number of characters in the normalized text
func (p PositionedItem) RuneCount() int {
	return utf8.RuneCountInString(p.Text)
}

// Mapper converts renderer runs into positioned items
type Mapper struct {
	RotationThreshold float64
}

// NewMapper creates a mapper with the default rotation threshold
func NewMapper() *Mapper {
	return &Mapper{RotationThreshold: DefaultRotationThreshold}
}

// Map converts runs into positioned items. pageHeight is the viewport height
// at scale 1 and flips the run's bottom-up origin into page coordinates.
// Output order follows input order.
func (m *Mapper) Map(runs []model.TextRun, pageHeight float64) []PositionedItem {
	threshold := DefaultRotationThreshold
	if m != nil && m.RotationThreshold > 0 {
		threshold = m.RotationThreshold
	}

	items := make([]PositionedItem, 0, len(runs))
	for _, run := range runs {
		item, ok := mapRun(run, pageHeight, threshold)
		if ok {
			items = append(items, item)
		}
	}
	return items
}

// MapRuns is a convenience wrapper around NewMapper().Map
func MapRuns(runs []model.TextRun, pageHeight float64) []PositionedItem {
	return NewMapper().Map(runs, pageHeight)
}

func mapRun(run model.TextRun, pageHeight, threshold float64) (PositionedItem, bool) {
	text := NormalizeWhitespace(norm.NFC.String(run.Text))
	if text == "" {
		return PositionedItem{}, false
	}

	tm := model.MatrixFrom(run.Transform)
	a, b, c, d, e, f := tm[0], tm[1], tm[2], tm[3], tm[4], tm[5]

	if math.Abs(b)+math.Abs(c) > threshold {
		return PositionedItem{}, false
	}

	width := measured(run.Width, math.Hypot(a, b))
	height := measured(run.Height, math.Hypot(c, d))
	if width == 0 || height == 0 {
		return PositionedItem{}, false
	}

	bbox := model.NewBBox(e, pageHeight-f, width, height)
	if !bbox.IsValid() {
		return PositionedItem{}, false
	}

	return PositionedItem{
		Text:     text,
		Raw:      run.Text,
		BBox:     bbox,
		FontSize: height,
		FontName: run.FontName,
	}, true
}

// measured returns |reported| when the renderer supplied a usable value,
// otherwise the value derived from the text matrix.
func measured(reported, derived float64) float64 {
	if reported != 0 && !math.IsNaN(reported) && !math.IsInf(reported, 0) {
		return math.Abs(reported)
	}
	return derived
}

// NormalizeWhitespace collapses every run of Unicode whitespace into a single
// ASCII space. Leading and trailing whitespace is collapsed, not removed.
func NormalizeWhitespace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				sb.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		sb.WriteRune(r)
	}
	return sb.String()
}
