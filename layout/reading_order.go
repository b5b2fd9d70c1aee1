package layout

import (
	"math"
	"sort"
)

// ReadingOrderConfig holds configuration for reading-order sorting
type ReadingOrderConfig struct {
	// RowBandFactor times the average line height is the vertical distance
	// within which two paragraphs count as one row and order by column
	// (default: 0.75)
	RowBandFactor float64 `yaml:"row_band_factor"`
}

// DefaultReadingOrderConfig returns the tuned reading-order threshold
func DefaultReadingOrderConfig() ReadingOrderConfig {
	return ReadingOrderConfig{
		RowBandFactor: 0.75,
	}
}

// ReadingOrderSorter orders paragraphs across columns
type ReadingOrderSorter struct {
	config ReadingOrderConfig
}

// NewReadingOrderSorter creates a sorter with default configuration
func NewReadingOrderSorter() *ReadingOrderSorter {
	return &ReadingOrderSorter{
		config: DefaultReadingOrderConfig(),
	}
}

// NewReadingOrderSorterWithConfig creates a sorter with custom configuration
func NewReadingOrderSorterWithConfig(config ReadingOrderConfig) *ReadingOrderSorter {
	return &ReadingOrderSorter{
		config: config,
	}
}

// Sort returns the paragraphs in reading order. Paragraphs further apart
// vertically than the row band order by y; paragraphs in the same row order
// by column, then by y. The input slice is not modified.
func (s *ReadingOrderSorter) Sort(paragraphs []Paragraph, avgLineHeight float64) []Paragraph {
	ordered := make([]Paragraph, len(paragraphs))
	copy(ordered, paragraphs)

	band := avgLineHeight * s.config.RowBandFactor
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if math.Abs(a.BBox.Y-b.BBox.Y) > band {
			return a.BBox.Y < b.BBox.Y
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.BBox.Y < b.BBox.Y
	})

	return ordered
}
