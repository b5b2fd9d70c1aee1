package images

import (
	"fmt"
	"math"

	"github.com/tidwall/rtree"

	"github.com/tsawler/pageblocks/classify"
	"github.com/tsawler/pageblocks/graphicsstate"
	"github.com/tsawler/pageblocks/model"
)

const (
	// OperatorImageText is the text of an operator-detected image block
	OperatorImageText = "[Image]"

	captionTextLimit = 40
)

// Config holds configuration for image region detection
type Config struct {
	// MinArea is the smallest accepted candidate area in page units
	// (default: 2000)
	MinArea float64 `yaml:"min_area"`

	// TextCoverRatio is the share of a candidate's own area a single text
	// block may cover before the candidate is dropped (default: 0.55)
	TextCoverRatio float64 `yaml:"text_cover_ratio"`

	// DedupOverlap is the overlap ratio above which a box duplicates an
	// earlier one (default: 0.75)
	DedupOverlap float64 `yaml:"dedup_overlap"`

	// Caption fallback geometry. The region is CaptionWidthFactor times the
	// caption width capped at CaptionMaxWidthRatio of the page, and
	// CaptionHeightFactor times the caption height capped at
	// CaptionMaxHeightRatio of the page. It is shifted left by
	// CaptionShiftRatio of the caption width and its bottom sits
	// CaptionGapRatio caption heights above the caption.
	CaptionWidthFactor    float64 `yaml:"caption_width_factor"`
	CaptionHeightFactor   float64 `yaml:"caption_height_factor"`
	CaptionMaxWidthRatio  float64 `yaml:"caption_max_width_ratio"`
	CaptionMaxHeightRatio float64 `yaml:"caption_max_height_ratio"`
	CaptionShiftRatio     float64 `yaml:"caption_shift_ratio"`
	CaptionGapRatio       float64 `yaml:"caption_gap_ratio"`
}

// DefaultConfig returns the tuned image detection thresholds
func DefaultConfig() Config {
	return Config{
		MinArea:               2000,
		TextCoverRatio:        0.55,
		DedupOverlap:          0.75,
		CaptionWidthFactor:    2,
		CaptionHeightFactor:   6,
		CaptionMaxWidthRatio:  0.8,
		CaptionMaxHeightRatio: 0.4,
		CaptionShiftRatio:     0.25,
		CaptionGapRatio:       0.5,
	}
}

// Detector finds image regions on a page. It holds no per-page state and
// is safe for concurrent use.
type Detector struct {
	config Config
}

// NewDetector creates an image detector with default configuration
func NewDetector() *Detector {
	return &Detector{config: DefaultConfig()}
}

// NewDetectorWithConfig creates an image detector with custom configuration
func NewDetectorWithConfig(config Config) *Detector {
	return &Detector{config: config}
}

// Config returns the detector configuration
func (d *Detector) Config() Config {
	return d.config
}

// FromOperators walks ops and returns the candidates that survive the
// text-cover filter and deduplication.
func (d *Detector) FromOperators(ops *model.OperatorList, base model.Matrix, pageNum int, textBlocks []model.TextBlock) []model.TextBlock {
	candidates := d.Walk(ops, base, pageNum)
	if len(candidates) == 0 {
		return nil
	}
	return d.Dedup(d.FilterCoveredByText(candidates, textBlocks))
}

// Walk replays the operator list and returns one IMAGE block per painted
// image whose box is valid and at least MinArea. IDs follow walk order.
func (d *Detector) Walk(ops *model.OperatorList, base model.Matrix, pageNum int) []model.TextBlock {
	st := graphicsstate.NewStack(base)
	var found []model.TextBlock

	for i := 0; i < ops.Len(); i++ {
		op := ops.Fns[i]
		switch {
		case op == model.OpSave:
			st.Save()
		case op == model.OpRestore:
			st.Restore()
		case op == model.OpTransform:
			st.Concat(MatrixFromArgs(ops.ArgsAt(i)))
		case op.PaintsImage():
			box, ok := unitSquareBox(st.Current())
			if !ok {
				continue
			}
			area := box.Area()
			if math.IsNaN(area) || math.IsInf(area, 0) || area < d.config.MinArea {
				continue
			}
			found = append(found, model.TextBlock{
				ID:          model.ImageBlockID(pageNum, len(found)),
				Text:        OperatorImageText,
				PageNum:     pageNum,
				BBox:        box,
				ContentType: model.ContentImage,
			})
		}
	}

	return found
}

// unitSquareBox maps the unit square through m and returns its bounding box
func unitSquareBox(m model.Matrix) (model.BBox, bool) {
	box := model.BBoxOfPoints(
		m.Transform(model.Point{X: 0, Y: 0}),
		m.Transform(model.Point{X: 1, Y: 0}),
		m.Transform(model.Point{X: 0, Y: 1}),
		m.Transform(model.Point{X: 1, Y: 1}),
	)
	return box, box.IsValid()
}

// FilterCoveredByText drops candidates whose area is covered by more than
// TextCoverRatio by any single non-IMAGE block. Order is preserved.
func (d *Detector) FilterCoveredByText(candidates, textBlocks []model.TextBlock) []model.TextBlock {
	var index rtree.RTreeG[int]
	for i, block := range textBlocks {
		if block.ContentType == model.ContentImage {
			continue
		}
		lo, hi := corners(block.BBox)
		index.Insert(lo, hi, i)
	}

	kept := make([]model.TextBlock, 0, len(candidates))
	for _, candidate := range candidates {
		area := candidate.Area()
		covered := false
		if area > 0 {
			lo, hi := corners(candidate.BBox)
			index.Search(lo, hi, func(_, _ [2]float64, i int) bool {
				inter := candidate.Intersection(textBlocks[i].BBox)
				if inter.Area()/area > d.config.TextCoverRatio {
					covered = true
					return false
				}
				return true
			})
		}
		if !covered {
			kept = append(kept, candidate)
		}
	}
	return kept
}

// Dedup keeps each block whose overlap ratio with every block kept before
// it is at most DedupOverlap.
func (d *Detector) Dedup(blocks []model.TextBlock) []model.TextBlock {
	var index rtree.RTreeG[int]
	unique := make([]model.TextBlock, 0, len(blocks))

	for _, block := range blocks {
		lo, hi := corners(block.BBox)
		duplicate := false
		index.Search(lo, hi, func(_, _ [2]float64, i int) bool {
			if unique[i].OverlapRatio(block.BBox) > d.config.DedupOverlap {
				duplicate = true
				return false
			}
			return true
		})
		if duplicate {
			continue
		}
		index.Insert(lo, hi, len(unique))
		unique = append(unique, block)
	}
	return unique
}

// CaptionRegions synthesizes an IMAGE block above every block whose text
// starts with a figure caption. pageWidth and pageHeight cap the region.
func (d *Detector) CaptionRegions(textBlocks []model.TextBlock, pageWidth, pageHeight float64, pageNum int) []model.TextBlock {
	var regions []model.TextBlock
	for _, caption := range textBlocks {
		if !classify.IsCaption(caption.Text) {
			continue
		}

		c := d.config
		width := math.Min(pageWidth*c.CaptionMaxWidthRatio, caption.Width*c.CaptionWidthFactor)
		height := math.Min(pageHeight*c.CaptionMaxHeightRatio, caption.Height*c.CaptionHeightFactor)
		x := math.Max(caption.X-caption.Width*c.CaptionShiftRatio, 0)
		y := math.Max(caption.Y-height-caption.Height*c.CaptionGapRatio, 0)

		regions = append(regions, model.TextBlock{
			ID:          model.CaptionImageBlockID(pageNum, len(regions)),
			Text:        fmt.Sprintf("[Image for: %s]", truncateRunes(caption.Text, captionTextLimit)),
			PageNum:     pageNum,
			BBox:        model.NewBBox(x, y, width, height),
			ContentType: model.ContentImage,
		})
	}
	return regions
}

// corners returns the min and max corners of a box for the R-tree
func corners(b model.BBox) (lo, hi [2]float64) {
	return [2]float64{b.Left(), b.Top()}, [2]float64{b.Right(), b.Bottom()}
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
