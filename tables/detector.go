package tables

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tsawler/pageblocks/model"
)

var (
	lineSplit = regexp.MustCompile(`\r?\n`)
	cellSplit = regexp.MustCompile(`\s{2,}|\t|\|`)
)

// Config holds detector configuration
type Config struct {
	// Minimum non-empty lines for a promoted block
	MinRows int `yaml:"min_rows"`

	// Minimum non-empty cells on every line
	MinCols int `yaml:"min_cols"`
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MinRows: 2,
		MinCols: 2,
	}
}

// Detector promotes tabular text blocks to TABLE
type Detector struct {
	config Config
}

// NewDetector creates a detector with default configuration
func NewDetector() *Detector {
	return &Detector{config: DefaultConfig()}
}

// NewDetectorWithConfig creates a detector with custom configuration
func NewDetectorWithConfig(config Config) *Detector {
	return &Detector{config: config}
}

// Name returns the detector name
func (d *Detector) Name() string {
	return "text-columns"
}

// IsTabular reports whether every line of text splits into enough cells
func (d *Detector) IsTabular(text string) bool {
	var rows []string
	for _, line := range lineSplit.Split(text, -1) {
		if line != "" {
			rows = append(rows, line)
		}
	}
	if len(rows) < d.config.MinRows {
		return false
	}

	for _, row := range rows {
		if countCells(row) < d.config.MinCols {
			return false
		}
	}
	return true
}

// DetectTableRegions promotes tabular TEXT blocks to TABLE in place and
// returns every TABLE block sorted by y. Blocks of other types are never
// promoted.
func (d *Detector) DetectTableRegions(blocks []model.TextBlock) []model.TextBlock {
	order := make([]int, len(blocks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return blocks[order[i]].Y < blocks[order[j]].Y
	})

	var found []model.TextBlock
	for _, idx := range order {
		block := &blocks[idx]
		switch block.ContentType {
		case model.ContentTable:
			found = append(found, *block)
		case model.ContentText:
			if d.IsTabular(block.Text) {
				block.ContentType = model.ContentTable
				found = append(found, *block)
			}
		}
	}
	return found
}

// DetectTableRegions runs a default detector over blocks
func DetectTableRegions(blocks []model.TextBlock) []model.TextBlock {
	return NewDetector().DetectTableRegions(blocks)
}

func countCells(row string) int {
	n := 0
	for _, cell := range cellSplit.Split(row, -1) {
		if strings.TrimSpace(cell) != "" {
			n++
		}
	}
	return n
}
