package pdfsource

import (
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/pageblocks/model"
)

// glyphRun accumulates consecutive glyphs that share a font and baseline
type glyphRun struct {
	text     strings.Builder
	font     string
	fontSize float64
	x, y     float64
	lastX    float64
	end      float64
}

// MergeGlyphs joins per-glyph text reported by the PDF library into runs.
// A glyph extends the current run when it uses the same font and size, sits
// on the same baseline and starts no further than GapFactor × font size
// past the run's end. Line-feed glyphs and gaps end a run. Each run's
// transform is [fs 0 0 fs x y] in user space, its width the run's extent
// and its height the font size.
func MergeGlyphs(glyphs []pdf.Text, config Config) []model.TextRun {
	config = config.withDefaults()

	var runs []model.TextRun
	var current *glyphRun

	flush := func() {
		if current == nil {
			return
		}
		if current.text.Len() > 0 {
			runs = append(runs, current.toTextRun())
		}
		current = nil
	}

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		if g.S == "\n" || g.S == "\r" {
			flush()
			continue
		}

		fontSize := math.Abs(g.FontSize)
		if fontSize == 0 || !finite(g.X) || !finite(g.Y) || !finite(fontSize) {
			flush()
			continue
		}

		advance := g.W
		if advance <= 0 || !finite(advance) {
			advance = fontSize * config.FallbackGlyphWidth
		}

		if current != nil && current.accepts(g, fontSize, config) {
			current.add(g, advance)
			continue
		}

		flush()
		current = &glyphRun{
			font:     g.Font,
			fontSize: fontSize,
			x:        g.X,
			y:        g.Y,
			lastX:    g.X,
			end:      g.X,
		}
		current.add(g, advance)
	}
	flush()

	return runs
}

// accepts reports whether glyph g continues the run
func (r *glyphRun) accepts(g pdf.Text, fontSize float64, config Config) bool {
	if g.Font != r.font || math.Abs(fontSize-r.fontSize) > 0.01 {
		return false
	}
	if math.Abs(g.Y-r.y) > config.BaselineTolerance {
		return false
	}

	tolerance := r.fontSize * config.GapFactor
	return g.X >= r.lastX-tolerance && g.X <= r.end+tolerance
}

// add appends a glyph. Glyphs without a reported width do not move the
// library's pen, so their advance is added onto the run end instead.
func (r *glyphRun) add(g pdf.Text, advance float64) {
	r.text.WriteString(g.S)
	r.lastX = g.X
	if g.W > 0 {
		r.end = math.Max(r.end, g.X+g.W)
		return
	}
	r.end = math.Max(r.end, g.X) + advance
}

func (r *glyphRun) toTextRun() model.TextRun {
	fs := r.fontSize
	return model.TextRun{
		Text:      r.text.String(),
		Transform: []float64{fs, 0, 0, fs, r.x, r.y},
		Width:     r.end - r.x,
		Height:    fs,
		FontName:  r.font,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
