package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/pageblocks/model"
	"github.com/tsawler/pageblocks/text"
)

// Line represents a single line of text on a page
type Line struct {
	// Items are the positioned items of the line, sorted left to right
	Items []text.PositionedItem

	// BBox is the union of the item boxes
	BBox model.BBox

	// Baseline is the bottom edge of the line
	Baseline float64

	// FontSize is the average item height
	FontSize float64

	// Text is the assembled line text
	Text string

	// Column is the final column id, or -1 when the line is unassigned.
	// It is written by ColumnAssigner.
	Column int

	state columnState
}

// LineConfig holds configuration for line building
type LineConfig struct {
	// YTolerance is the vertical distance under which two items are ordered
	// by x instead of y (default: 2 units)
	YTolerance float64 `yaml:"y_tolerance"`

	// BaselineRatio scales max(line height, item height) into the baseline
	// distance an item may have from the line's average baseline (default: 0.55)
	BaselineRatio float64 `yaml:"baseline_ratio"`

	// WideGapFactor is the gap, in average glyph widths, that always inserts
	// a space (default: 1.5)
	WideGapFactor float64 `yaml:"wide_gap_factor"`

	// NarrowGapFactor is the gap, in average glyph widths, that inserts a space
	// unless the previous token already ends in one (default: 0.3)
	NarrowGapFactor float64 `yaml:"narrow_gap_factor"`

	// DefaultCharWidth is used when no item yields a glyph width (default: 2)
	DefaultCharWidth float64 `yaml:"default_char_width"`
}

// DefaultLineConfig returns the tuned line building thresholds
func DefaultLineConfig() LineConfig {
	return LineConfig{
		YTolerance:       2.0,
		BaselineRatio:    0.55,
		WideGapFactor:    1.5,
		NarrowGapFactor:  0.3,
		DefaultCharWidth: 2.0,
	}
}

// LineBuilder groups positioned items into lines
type LineBuilder struct {
	config LineConfig
}

// NewLineBuilder creates a line builder with default configuration
func NewLineBuilder() *LineBuilder {
	return &LineBuilder{
		config: DefaultLineConfig(),
	}
}

// NewLineBuilderWithConfig creates a line builder with custom configuration
func NewLineBuilderWithConfig(config LineConfig) *LineBuilder {
	return &LineBuilder{
		config: config,
	}
}

// Build groups items into lines, top to bottom. The input slice is not
// modified. Every returned line starts unassigned (Column == -1).
func (b *LineBuilder) Build(items []text.PositionedItem) []*Line {
	if len(items) == 0 {
		return nil
	}

	sorted := make([]text.PositionedItem, len(items))
	copy(sorted, items)
	tol := b.config.YTolerance
	sort.SliceStable(sorted, func(i, j int) bool {
		yDiff := sorted[i].BBox.Y - sorted[j].BBox.Y
		if math.Abs(yDiff) < tol {
			return sorted[i].BBox.X < sorted[j].BBox.X
		}
		return yDiff < 0
	})

	var lines []*Line
	var current []text.PositionedItem

	for _, item := range sorted {
		if len(current) == 0 {
			current = append(current, item)
			continue
		}

		baseline := averageOf(current, func(it text.PositionedItem) float64 { return it.Bottom() })
		height := averageOf(current, func(it text.PositionedItem) float64 { return it.BBox.Height })
		threshold := math.Max(height, item.BBox.Height) * b.config.BaselineRatio

		if math.Abs(item.Bottom()-baseline) > threshold {
			lines = append(lines, b.newLine(current))
			current = []text.PositionedItem{item}
		} else {
			current = append(current, item)
		}
	}

	if len(current) > 0 {
		lines = append(lines, b.newLine(current))
	}

	return lines
}

// newLine builds a line from the items of one baseline group
func (b *LineBuilder) newLine(items []text.PositionedItem) *Line {
	sorted := make([]text.PositionedItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox.X < sorted[j].BBox.X
	})

	bbox := sorted[0].BBox
	for _, item := range sorted[1:] {
		bbox = bbox.Union(item.BBox)
	}

	fontSize := averageOf(sorted, func(it text.PositionedItem) float64 { return it.BBox.Height })
	if fontSize == 0 {
		fontSize = bbox.Height
	}

	return &Line{
		Items:    sorted,
		BBox:     bbox,
		Baseline: bbox.Bottom(),
		FontSize: fontSize,
		Text:     b.assembleText(sorted),
		Column:   -1,
	}
}

// assembleText joins trimmed item texts left to right, inserting a space
// where the horizontal gap between items is wide enough.
func (b *LineBuilder) assembleText(items []text.PositionedItem) string {
	if len(items) == 0 {
		return ""
	}

	charWidth := averageOf(items, func(it text.PositionedItem) float64 {
		return it.BBox.Width / float64(maxInt(it.RuneCount(), 1))
	})
	if charWidth == 0 {
		charWidth = b.config.DefaultCharWidth
	}

	var sb strings.Builder
	lastRight := items[0].BBox.X
	endsInSpace := false

	for _, item := range items {
		trimmed := strings.TrimSpace(item.Text)
		if trimmed == "" {
			continue
		}

		if sb.Len() > 0 {
			gap := item.BBox.X - lastRight
			if gap > charWidth*b.config.WideGapFactor {
				sb.WriteByte(' ')
			} else if gap > charWidth*b.config.NarrowGapFactor && !endsInSpace {
				sb.WriteByte(' ')
			}
		}

		sb.WriteString(trimmed)
		endsInSpace = strings.HasSuffix(trimmed, " ")
		lastRight = item.Right()
	}

	return strings.TrimSpace(text.NormalizeWhitespace(sb.String()))
}

// WordCount returns the number of words in the line text
func (l *Line) WordCount() int {
	if l == nil {
		return 0
	}
	return len(strings.Fields(l.Text))
}

// CenterX returns the horizontal center of the line
func (l *Line) CenterX() float64 {
	return l.BBox.CenterX()
}

// averageOf returns the mean of fn over items, or 0 for no items
func averageOf[T any](items []T, fn func(T) float64) float64 {
	if len(items) == 0 {
		return 0
	}
	sum := 0.0
	for _, it := range items {
		sum += fn(it)
	}
	return sum / float64(len(items))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
