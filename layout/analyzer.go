package layout

import (
	"github.com/tsawler/pageblocks/text"
)

// AnalyzerConfig holds configuration for each stage of the pipeline
type AnalyzerConfig struct {
	// Line building configuration
	Line LineConfig `yaml:"line"`

	// Column assignment configuration
	Column ColumnConfig `yaml:"column"`

	// Paragraph grouping configuration
	Paragraph ParagraphConfig `yaml:"paragraph"`

	// Reading order configuration
	ReadingOrder ReadingOrderConfig `yaml:"reading_order"`

	// DefaultLineHeight is used when the lines have no measurable height
	// (default: 12)
	DefaultLineHeight float64 `yaml:"default_line_height"`
}

// DefaultAnalyzerConfig returns the default configuration for every stage
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		Line:              DefaultLineConfig(),
		Column:            DefaultColumnConfig(),
		Paragraph:         DefaultParagraphConfig(),
		ReadingOrder:      DefaultReadingOrderConfig(),
		DefaultLineHeight: 12,
	}
}

// PageLayout is the result of analyzing one page
type PageLayout struct {
	// Lines in builder order (top to bottom)
	Lines []*Line

	// Columns is the column assignment
	Columns *ColumnLayout

	// Paragraphs in reading order
	Paragraphs []Paragraph

	// AverageLineHeight is the mean line height used for gap thresholds
	AverageLineHeight float64

	// PageWidth of the analyzed page
	PageWidth float64
}

// ParagraphCount returns the number of paragraphs
func (l *PageLayout) ParagraphCount() int {
	if l == nil {
		return 0
	}
	return len(l.Paragraphs)
}

// Analyzer runs line building, column assignment, paragraph grouping, and
// reading-order sorting for one page. It holds no per-page state and is
// safe for concurrent use.
type Analyzer struct {
	config  AnalyzerConfig
	lines   *LineBuilder
	columns *ColumnAssigner
	grouper *ParagraphGrouper
	sorter  *ReadingOrderSorter
}

// NewAnalyzer creates an analyzer with default configuration
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithConfig(DefaultAnalyzerConfig())
}

// NewAnalyzerWithConfig creates an analyzer with custom configuration
func NewAnalyzerWithConfig(config AnalyzerConfig) *Analyzer {
	return &Analyzer{
		config:  config,
		lines:   NewLineBuilderWithConfig(config.Line),
		columns: NewColumnAssignerWithConfig(config.Column),
		grouper: NewParagraphGrouperWithConfig(config.Paragraph),
		sorter:  NewReadingOrderSorterWithConfig(config.ReadingOrder),
	}
}

// Config returns the analyzer configuration
func (a *Analyzer) Config() AnalyzerConfig {
	return a.config
}

// Analyze groups positioned items into paragraphs in reading order
func (a *Analyzer) Analyze(items []text.PositionedItem, pageWidth float64) *PageLayout {
	result := &PageLayout{PageWidth: pageWidth}

	lines := a.lines.Build(items)
	if len(lines) == 0 {
		return result
	}
	result.Lines = lines

	avgLineHeight := averageOf(lines, func(l *Line) float64 { return l.BBox.Height })
	if avgLineHeight == 0 {
		avgLineHeight = a.config.DefaultLineHeight
	}
	result.AverageLineHeight = avgLineHeight

	columns := a.columns.Assign(lines, pageWidth)
	result.Columns = columns

	var paragraphs []Paragraph
	for _, col := range columns.Columns {
		members := make([]*Line, len(col.Lines))
		copy(members, col.Lines)
		SortLinesTopToBottom(members)
		paragraphs = append(paragraphs, a.grouper.Group(members, avgLineHeight, col.Index)...)
	}

	if len(columns.Unassigned) > 0 {
		members := make([]*Line, len(columns.Unassigned))
		copy(members, columns.Unassigned)
		SortLinesTopToBottom(members)
		// unassigned lines form a pseudo-column after the real ones
		paragraphs = append(paragraphs, a.grouper.Group(members, avgLineHeight, len(columns.Columns))...)
	}

	result.Paragraphs = a.sorter.Sort(paragraphs, avgLineHeight)
	return result
}
