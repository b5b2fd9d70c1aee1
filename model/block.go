package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContentType classifies the content of a block
type ContentType int

const (
	ContentText ContentType = iota
	ContentMath
	ContentTable
	ContentImage
)

// String returns the wire name of the content type
func (ct ContentType) String() string {
	switch ct {
	case ContentMath:
		return "MATH"
	case ContentTable:
		return "TABLE"
	case ContentImage:
		return "IMAGE"
	default:
		return "TEXT"
	}
}

// ParseContentType parses a wire name back into a ContentType
func ParseContentType(s string) (ContentType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TEXT":
		return ContentText, nil
	case "MATH":
		return ContentMath, nil
	case "TABLE":
		return ContentTable, nil
	case "IMAGE":
		return ContentImage, nil
	default:
		return ContentText, fmt.Errorf("unknown content type %q", s)
	}
}

// MarshalJSON encodes the content type as its wire name
func (ct ContentType) MarshalJSON() ([]byte, error) {
	return json.Marshal(ct.String())
}

// UnmarshalJSON decodes a wire name
func (ct *ContentType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseContentType(s)
	if err != nil {
		return err
	}
	*ct = parsed
	return nil
}

// TextBlock is a typed content region of a page, the unit handed to
// downstream consumers. IDs are stable only within one extraction of one page.
type TextBlock struct {
	ID          string      `json:"id"`
	Text        string      `json:"text"`
	PageNum     int         `json:"pageNum"`
	BBox                    // x, y, width, height
	ContentType ContentType `json:"contentType"`
	FontSize    *float64    `json:"fontSize,omitempty"`
}

// FontSizeOr returns the block's font size or def when it has none
func (b *TextBlock) FontSizeOr(def float64) float64 {
	if b == nil || b.FontSize == nil {
		return def
	}
	return *b.FontSize
}

// WordCount returns the number of whitespace-separated words in the block
func (b *TextBlock) WordCount() int {
	if b == nil {
		return 0
	}
	return len(strings.Fields(b.Text))
}

// TextBlockID returns the identifier of the index-th text block on a page
func TextBlockID(page, index int) string {
	return fmt.Sprintf("block-%d-%d", page, index)
}

// ImageBlockID returns the identifier of an operator-detected image region
func ImageBlockID(page, index int) string {
	return fmt.Sprintf("image-%d-%d", page, index)
}

// CaptionImageBlockID returns the identifier of a caption-derived image region
func CaptionImageBlockID(page, index int) string {
	return fmt.Sprintf("image-%d-caption-%d", page, index)
}
