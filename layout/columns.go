package layout

import (
	"math"
	"sort"
)

// columnStatus is the stage of a line's column assignment
type columnStatus int

const (
	columnUnassigned columnStatus = iota
	columnTentative
	columnFinal
)

// columnState tracks a line's column membership. Lines only move along
// Unassigned -> Tentative(id) -> Final(id), with Tentative -> Unassigned for
// eviction and Unassigned -> Final(-1) for lines no column claims.
type columnState struct {
	status columnStatus
	id     int
}

// claim moves an unassigned line into a tentative column
func (l *Line) claim(id int) bool {
	if l.state.status != columnUnassigned {
		return false
	}
	l.state = columnState{status: columnTentative, id: id}
	return true
}

// evict returns a tentatively assigned line to the unassigned state
func (l *Line) evict() bool {
	if l.state.status != columnTentative {
		return false
	}
	l.state = columnState{status: columnUnassigned}
	return true
}

// finalize fixes the line's column. Tentative lines take id; unassigned
// lines end with -1 regardless of id.
func (l *Line) finalize(id int) bool {
	switch l.state.status {
	case columnTentative:
		l.state = columnState{status: columnFinal, id: id}
	case columnUnassigned:
		l.state = columnState{status: columnFinal, id: -1}
	default:
		return false
	}
	l.Column = l.state.id
	return true
}

// tentativeColumn returns the line's tentative column id
func (l *Line) tentativeColumn() (int, bool) {
	if l.state.status != columnTentative {
		return 0, false
	}
	return l.state.id, true
}

// IsFinal reports whether the line's column assignment is complete
func (l *Line) IsFinal() bool {
	return l.state.status == columnFinal
}

// Column is a detected reading column
type Column struct {
	// Index of the column (0-based, left to right)
	Index int

	// Center is the mean horizontal center of the member lines
	Center float64

	// MinX and MaxX are the horizontal extent of the member lines
	MinX, MaxX float64

	// Lines are the member lines in page order
	Lines []*Line
}

// ColumnLayout is the result of column assignment
type ColumnLayout struct {
	// Columns sorted left to right
	Columns []Column

	// Unassigned holds lines no column claimed, in page order
	Unassigned []*Line

	// PageWidth used for the ratios
	PageWidth float64

	// Config used for assignment
	Config ColumnConfig
}

// ColumnCount returns the number of detected columns
func (l *ColumnLayout) ColumnCount() int {
	if l == nil {
		return 0
	}
	return len(l.Columns)
}

// IsMultiColumn returns true if more than one column was detected
func (l *ColumnLayout) IsMultiColumn() bool {
	return l.ColumnCount() > 1
}

// ColumnConfig holds configuration for column assignment
type ColumnConfig struct {
	// NarrowRatio is the width, as a fraction of page width, below which a
	// line takes part in clustering (default: 0.75)
	NarrowRatio float64 `yaml:"narrow_ratio"`

	// SpreadRatio is the center spread, as a fraction of page width, above
	// which two columns are attempted (default: 0.25)
	SpreadRatio float64 `yaml:"spread_ratio"`

	// MaxIterations bounds the two-means rounds (default: 6)
	MaxIterations int `yaml:"max_iterations"`

	// Convergence stops the two-means early once both centers move less
	// than this many units (default: 1)
	Convergence float64 `yaml:"convergence"`

	// MinSeparationRatio is the smallest accepted distance between the two
	// cluster centers as a fraction of page width (default: 0.2)
	MinSeparationRatio float64 `yaml:"min_separation_ratio"`

	// MinClusterRatio is the smallest accepted share of candidate lines in
	// the smaller cluster (default: 0.12)
	MinClusterRatio float64 `yaml:"min_cluster_ratio"`

	// ClaimOverlap is the overlap above which an unassigned line joins a
	// column (default: 0.65)
	ClaimOverlap float64 `yaml:"claim_overlap"`

	// KeepOverlap is the best overlap below which an assigned line is
	// evicted (default: 0.45)
	KeepOverlap float64 `yaml:"keep_overlap"`

	// AmbiguityGap and AmbiguityFloor evict a line whose two best overlaps
	// differ by less than the gap while the second exceeds the floor
	// (defaults: 0.15 and 0.3)
	AmbiguityGap   float64 `yaml:"ambiguity_gap"`
	AmbiguityFloor float64 `yaml:"ambiguity_floor"`
}

// DefaultColumnConfig returns the tuned column assignment thresholds
func DefaultColumnConfig() ColumnConfig {
	return ColumnConfig{
		NarrowRatio:        0.75,
		SpreadRatio:        0.25,
		MaxIterations:      6,
		Convergence:        1.0,
		MinSeparationRatio: 0.2,
		MinClusterRatio:    0.12,
		ClaimOverlap:       0.65,
		KeepOverlap:        0.45,
		AmbiguityGap:       0.15,
		AmbiguityFloor:     0.3,
	}
}

// ColumnAssigner assigns lines to reading columns
type ColumnAssigner struct {
	config ColumnConfig
}

// NewColumnAssigner creates a column assigner with default configuration
func NewColumnAssigner() *ColumnAssigner {
	return &ColumnAssigner{
		config: DefaultColumnConfig(),
	}
}

// NewColumnAssignerWithConfig creates a column assigner with custom configuration
func NewColumnAssignerWithConfig(config ColumnConfig) *ColumnAssigner {
	return &ColumnAssigner{
		config: config,
	}
}

// columnGroup is a column under construction
type columnGroup struct {
	id     int
	center float64
	minX   float64
	maxX   float64
	lines  []*Line
}

// Assign clusters lines into columns and finalizes every line's Column.
// Lines are reset to unassigned first, so a slice may be assigned again.
func (a *ColumnAssigner) Assign(lines []*Line, pageWidth float64) *ColumnLayout {
	result := &ColumnLayout{
		PageWidth: pageWidth,
		Config:    a.config,
	}
	if len(lines) == 0 {
		return result
	}

	for _, line := range lines {
		line.state = columnState{}
		line.Column = -1
	}

	groups := a.cluster(lines, pageWidth)
	if len(groups) > 0 {
		groups = regroup(lines, groups)
		a.refine(lines, groups)
	}

	groups = regroup(lines, groups)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].center < groups[j].center
	})

	for idx, g := range groups {
		for _, line := range g.lines {
			line.finalize(idx)
		}
		result.Columns = append(result.Columns, Column{
			Index:  idx,
			Center: g.center,
			MinX:   g.minX,
			MaxX:   g.maxX,
			Lines:  g.lines,
		})
	}

	for _, line := range lines {
		if !line.IsFinal() {
			line.finalize(-1)
			result.Unassigned = append(result.Unassigned, line)
		}
	}

	return result
}

// cluster runs the first pass: narrow lines are split into one or two
// columns and claimed tentatively. It returns nil when no line is narrow.
func (a *ColumnAssigner) cluster(lines []*Line, pageWidth float64) []columnGroup {
	var narrow []*Line
	for _, line := range lines {
		if line.BBox.Width/pageWidth < a.config.NarrowRatio {
			narrow = append(narrow, line)
		}
	}
	if len(narrow) == 0 {
		return nil
	}

	centers := make([]float64, len(narrow))
	minC, maxC := math.Inf(1), math.Inf(-1)
	for i, line := range narrow {
		centers[i] = line.CenterX()
		minC = math.Min(minC, centers[i])
		maxC = math.Max(maxC, centers[i])
	}

	var groups []columnGroup
	if maxC-minC > pageWidth*a.config.SpreadRatio {
		groups = a.twoColumns(narrow, centers, pageWidth)
	}

	if len(groups) == 0 {
		groups = []columnGroup{newColumnGroup(0, narrow)}
	}

	for _, g := range groups {
		for _, line := range g.lines {
			line.claim(g.id)
		}
	}
	return groups
}

// twoColumns splits the narrow lines with a two-means over their centers
// and returns the two groups sorted left to right, or nil when the split
// is rejected.
func (a *ColumnAssigner) twoColumns(narrow []*Line, centers []float64, pageWidth float64) []columnGroup {
	assignments := a.kMeans1D(centers)
	if assignments == nil {
		return nil
	}

	var members [2][]*Line
	for i, cluster := range assignments {
		members[cluster] = append(members[cluster], narrow[i])
	}
	if len(members[0]) == 0 || len(members[1]) == 0 {
		return nil
	}

	groups := []columnGroup{
		newColumnGroup(0, members[0]),
		newColumnGroup(1, members[1]),
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].center < groups[j].center
	})
	for i := range groups {
		groups[i].id = i
	}

	separation := math.Abs(groups[0].center - groups[1].center)
	smallest := minInt(len(groups[0].lines), len(groups[1].lines))
	ratio := float64(smallest) / float64(len(narrow))

	if separation < pageWidth*a.config.MinSeparationRatio || ratio < a.config.MinClusterRatio {
		return nil
	}
	return groups
}

// kMeans1D splits values into two clusters seeded at the extremes.
// It returns per-value cluster ids (0 or 1), or nil when the values cannot
// be split.
func (a *ColumnAssigner) kMeans1D(values []float64) []int {
	if len(values) < 2 {
		return nil
	}

	c0, c1 := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		c0 = math.Min(c0, v)
		c1 = math.Max(c1, v)
	}
	if math.IsInf(c0, 0) || math.IsInf(c1, 0) || math.IsNaN(c0) || math.IsNaN(c1) || c0 == c1 {
		return nil
	}

	assignments := make([]int, len(values))
	for iter := 0; iter < a.config.MaxIterations; iter++ {
		var sums [2]float64
		var counts [2]int

		for i, v := range values {
			cluster := 0
			if math.Abs(v-c0) > math.Abs(v-c1) {
				cluster = 1
			}
			assignments[i] = cluster
			sums[cluster] += v
			counts[cluster]++
		}

		if counts[0] == 0 || counts[1] == 0 {
			return nil
		}

		next0 := sums[0] / float64(counts[0])
		next1 := sums[1] / float64(counts[1])
		if math.Abs(next0-c0) < a.config.Convergence && math.Abs(next1-c1) < a.config.Convergence {
			break
		}
		c0, c1 = next0, next1
	}

	return assignments
}

// refine runs the second pass over all lines. Unassigned lines are claimed
// by a column they overlap strongly; tentative lines with a weak or
// ambiguous best overlap are evicted. Column extents are fixed for the
// whole pass and a line claimed here is not examined again.
func (a *ColumnAssigner) refine(lines []*Line, groups []columnGroup) {
	for _, line := range lines {
		if _, ok := line.tentativeColumn(); !ok {
			best, bestOverlap := -1, 0.0
			for _, g := range groups {
				overlap := horizontalOverlapRatio(line, g)
				if best == -1 || overlap > bestOverlap {
					best, bestOverlap = g.id, overlap
				}
			}
			if best != -1 && bestOverlap > a.config.ClaimOverlap {
				line.claim(best)
			}
			continue
		}

		overlaps := make([]float64, len(groups))
		for i, g := range groups {
			overlaps[i] = horizontalOverlapRatio(line, g)
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(overlaps)))

		weak := overlaps[0] < a.config.KeepOverlap
		ambiguous := len(overlaps) > 1 &&
			overlaps[0]-overlaps[1] < a.config.AmbiguityGap &&
			overlaps[1] > a.config.AmbiguityFloor
		if weak || ambiguous {
			line.evict()
		}
	}
}

// regroup rebuilds each group from the lines tentatively assigned to it,
// dropping groups left empty. Group ids are kept.
func regroup(lines []*Line, groups []columnGroup) []columnGroup {
	var out []columnGroup
	for _, g := range groups {
		var members []*Line
		for _, line := range lines {
			if id, ok := line.tentativeColumn(); ok && id == g.id {
				members = append(members, line)
			}
		}
		if len(members) > 0 {
			out = append(out, newColumnGroup(g.id, members))
		}
	}
	return out
}

// newColumnGroup computes the extent and center of a set of lines
func newColumnGroup(id int, lines []*Line) columnGroup {
	g := columnGroup{
		id:    id,
		minX:  math.Inf(1),
		maxX:  math.Inf(-1),
		lines: lines,
	}
	for _, line := range lines {
		g.minX = math.Min(g.minX, line.BBox.Left())
		g.maxX = math.Max(g.maxX, line.BBox.Right())
	}
	g.center = averageOf(lines, func(l *Line) float64 { return l.CenterX() })
	return g
}

// horizontalOverlapRatio returns the share of the line's width that falls
// inside the column's extent.
func horizontalOverlapRatio(line *Line, g columnGroup) float64 {
	if line.BBox.Width == 0 {
		return 0
	}
	overlap := line.BBox.HorizontalOverlap(g.minX, g.maxX)
	if overlap <= 0 {
		return 0
	}
	return overlap / line.BBox.Width
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
