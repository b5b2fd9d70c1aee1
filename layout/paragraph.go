package layout

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tsawler/pageblocks/model"
)

// BreakKind describes why a paragraph started
type BreakKind int

const (
	// BreakNone marks the first paragraph of a column
	BreakNone BreakKind = iota
	// BreakParagraph is a gap, indent, bullet, or horizontal shift break
	BreakParagraph
	// BreakSection is a large gap, font-size jump, or column change
	BreakSection
)

// String returns a string representation of the break kind
func (k BreakKind) String() string {
	switch k {
	case BreakParagraph:
		return "paragraph"
	case BreakSection:
		return "section"
	default:
		return "none"
	}
}

// Paragraph is a run of consecutive lines in one column
type Paragraph struct {
	// Lines are the member lines, top to bottom
	Lines []*Line

	// BBox is the union of the line boxes
	BBox model.BBox

	// Text is the merged line text
	Text string

	// FontSize is the average line font size
	FontSize float64

	// Column is the column id the paragraph was grouped under
	Column int

	// Break is the kind of break that started the paragraph
	Break BreakKind
}

// LineCount returns the number of lines in the paragraph
func (p *Paragraph) LineCount() int {
	return len(p.Lines)
}

// ParagraphConfig holds configuration for paragraph grouping
type ParagraphConfig struct {
	// ParagraphGapFactor times the average line height is the vertical gap
	// that starts a new paragraph (default: 1.2)
	ParagraphGapFactor float64 `yaml:"paragraph_gap_factor"`

	// SectionGapFactor times the average line height is the vertical gap
	// that starts a new section (default: 2.0)
	SectionGapFactor float64 `yaml:"section_gap_factor"`

	// FontJumpRatio is the font-size growth over the previous line that
	// starts a new section (default: 1.35)
	FontJumpRatio float64 `yaml:"font_jump_ratio"`

	// IndentFactor times the previous line's font size is the left-edge
	// indent that starts a new paragraph (default: 0.75)
	IndentFactor float64 `yaml:"indent_factor"`

	// ShiftRatio times the previous line's width is the left-edge shift in
	// either direction that starts a new paragraph (default: 0.35)
	ShiftRatio float64 `yaml:"shift_ratio"`

	// Bullets are the leading characters that mark a list item
	Bullets string `yaml:"bullets"`
}

// DefaultParagraphConfig returns the tuned paragraph grouping thresholds
func DefaultParagraphConfig() ParagraphConfig {
	return ParagraphConfig{
		ParagraphGapFactor: 1.2,
		SectionGapFactor:   2.0,
		FontJumpRatio:      1.35,
		IndentFactor:       0.75,
		ShiftRatio:         0.35,
		Bullets:            "\u2022-\u2013",
	}
}

// ParagraphGrouper merges lines of a column into paragraphs
type ParagraphGrouper struct {
	config ParagraphConfig
}

// NewParagraphGrouper creates a paragraph grouper with default configuration
func NewParagraphGrouper() *ParagraphGrouper {
	return &ParagraphGrouper{
		config: DefaultParagraphConfig(),
	}
}

// NewParagraphGrouperWithConfig creates a paragraph grouper with custom configuration
func NewParagraphGrouperWithConfig(config ParagraphConfig) *ParagraphGrouper {
	return &ParagraphGrouper{
		config: config,
	}
}

// Group merges lines, which must already be sorted top to bottom, into
// paragraphs tagged with column. Lines with empty text are skipped.
func (g *ParagraphGrouper) Group(lines []*Line, avgLineHeight float64, column int) []Paragraph {
	var paragraphs []Paragraph
	var current []*Line
	startedBy := BreakNone

	for _, line := range lines {
		if line.Text == "" {
			continue
		}

		if len(current) == 0 {
			current = append(current, line)
			continue
		}

		kind := g.BreakBetween(current[len(current)-1], line, avgLineHeight)
		if kind == BreakNone {
			current = append(current, line)
			continue
		}

		paragraphs = append(paragraphs, newParagraph(current, column, startedBy))
		current = []*Line{line}
		startedBy = kind
	}

	if len(current) > 0 {
		paragraphs = append(paragraphs, newParagraph(current, column, startedBy))
	}

	return paragraphs
}

// BreakBetween classifies the boundary between two consecutive lines.
// Section breaks take precedence over paragraph breaks; both close the
// current paragraph.
func (g *ParagraphGrouper) BreakBetween(prev, line *Line, avgLineHeight float64) BreakKind {
	gap := line.BBox.Top() - prev.BBox.Bottom()
	shift := math.Abs(line.BBox.Left() - prev.BBox.Left())
	fontJump := line.FontSize > prev.FontSize*g.config.FontJumpRatio
	indent := line.BBox.Left() > prev.BBox.Left()+prev.FontSize*g.config.IndentFactor
	columnChanged := line.Column != prev.Column

	if gap > avgLineHeight*g.config.SectionGapFactor || fontJump || columnChanged {
		return BreakSection
	}

	if gap > avgLineHeight*g.config.ParagraphGapFactor ||
		indent ||
		g.startsWithBullet(line.Text) ||
		shift > prev.BBox.Width*g.config.ShiftRatio {
		return BreakParagraph
	}

	return BreakNone
}

// startsWithBullet reports whether s begins with a configured bullet glyph
func (g *ParagraphGrouper) startsWithBullet(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return false
	}
	return strings.ContainsRune(g.config.Bullets, r)
}

// newParagraph builds a paragraph from its lines
func newParagraph(lines []*Line, column int, startedBy BreakKind) Paragraph {
	bbox := lines[0].BBox
	for _, line := range lines[1:] {
		bbox = bbox.Union(line.BBox)
	}

	fontSize := averageOf(lines, func(l *Line) float64 { return l.FontSize })
	if fontSize == 0 {
		fontSize = bbox.Height / float64(len(lines))
	}

	return Paragraph{
		Lines:    lines,
		BBox:     bbox,
		Text:     strings.TrimSpace(MergeLineTexts(lines)),
		FontSize: fontSize,
		Column:   column,
		Break:    startedBy,
	}
}

// MergeLineTexts joins line texts with newlines. When a line ends in a
// letter followed by a hyphen, the hyphen is removed and the next line is
// appended directly with its leading whitespace trimmed.
func MergeLineTexts(lines []*Line) string {
	if len(lines) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(lines[0].Text)

	for i := 1; i < len(lines); i++ {
		if endsWithWordHyphen(lines[i-1].Text) {
			merged := sb.String()
			sb.Reset()
			sb.WriteString(merged[:len(merged)-1])
			sb.WriteString(strings.TrimLeftFunc(lines[i].Text, unicode.IsSpace))
			continue
		}
		sb.WriteByte('\n')
		sb.WriteString(lines[i].Text)
	}

	return sb.String()
}

// endsWithWordHyphen reports whether s ends in an ASCII letter followed by '-'
func endsWithWordHyphen(s string) bool {
	n := len(s)
	if n < 2 || s[n-1] != '-' {
		return false
	}
	c := s[n-2]
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// SortLinesTopToBottom orders lines by y, breaking near ties (within
// 2 units) by x. The sort is stable.
func SortLinesTopToBottom(lines []*Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i].BBox, lines[j].BBox
		if math.Abs(a.Y-b.Y) > 2 {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}
