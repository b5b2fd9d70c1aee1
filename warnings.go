package pageblocks

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOperatorListUnavailable is returned by an OperatorSource that cannot
// provide an operator list for a page. The extractor treats it like a
// source without the capability and uses the caption fallback.
var ErrOperatorListUnavailable = errors.New("operator list unavailable")

// Pipeline stages named in warnings
const (
	StageText   = "text"
	StageImages = "images"
)

// Warning describes a non-fatal problem found while extracting a page
type Warning struct {
	Page    int    `json:"page"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// String formats the warning for display
func (w Warning) String() string {
	return fmt.Sprintf("page %d (%s): %s", w.Page, w.Stage, w.Message)
}

// FormatWarnings renders warnings one per line
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
