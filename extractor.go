package pageblocks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tsawler/pageblocks/classify"
	"github.com/tsawler/pageblocks/images"
	"github.com/tsawler/pageblocks/layout"
	"github.com/tsawler/pageblocks/model"
	"github.com/tsawler/pageblocks/tables"
	"github.com/tsawler/pageblocks/text"
)

// PageSource supplies the rendered content of one page
type PageSource interface {
	// TextContent returns the page's glyph runs in renderer order
	TextContent(ctx context.Context) ([]model.TextRun, error)

	// Viewport returns the page geometry at the given scale
	Viewport(scale float64) (model.Viewport, error)
}

// OperatorSource is implemented by page sources that can report the
// page's drawing operators
type OperatorSource interface {
	OperatorList(ctx context.Context) (*model.OperatorList, error)
}

// PageResult holds the blocks extracted from one page
type PageResult struct {
	PageNum int `json:"pageNum"`

	// Blocks are the text blocks in reading order followed by the image
	// blocks. Never nil.
	Blocks []model.TextBlock `json:"blocks"`

	// Tables are the blocks promoted to TABLE, sorted top to bottom, when
	// table promotion is enabled
	Tables []model.TextBlock `json:"tables,omitempty"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// Extractor turns page sources into typed blocks. It holds no per-page
// state and is safe for concurrent use. The With* methods return modified
// copies.
type Extractor struct {
	config     Config
	logger     *slog.Logger
	mapper     *text.Mapper
	analyzer   *layout.Analyzer
	classifier *classify.Classifier
	images     *images.Detector
	tables     *tables.Detector
}

// NewExtractor creates an extractor with the default configuration
func NewExtractor() *Extractor {
	return NewExtractorWithConfig(DefaultConfig())
}

// NewExtractorWithConfig creates an extractor with custom configuration
func NewExtractorWithConfig(config Config) *Extractor {
	return &Extractor{
		config:     config,
		mapper:     &text.Mapper{RotationThreshold: config.RotationThreshold},
		analyzer:   layout.NewAnalyzerWithConfig(config.Layout),
		classifier: classify.NewClassifier(),
		images:     images.NewDetectorWithConfig(config.Images),
		tables:     tables.NewDetectorWithConfig(config.Tables),
	}
}

// WithConfig returns a copy of the extractor using config
func (e *Extractor) WithConfig(config Config) *Extractor {
	next := NewExtractorWithConfig(config)
	next.logger = e.logger
	next.classifier = e.classifier
	return next
}

// WithLogger returns a copy of the extractor that logs to logger. A nil
// logger means slog.Default().
func (e *Extractor) WithLogger(logger *slog.Logger) *Extractor {
	next := *e
	next.logger = logger
	return &next
}

// WithClassifier returns a copy of the extractor that types paragraphs with
// classifier
func (e *Extractor) WithClassifier(classifier *classify.Classifier) *Extractor {
	next := *e
	if classifier == nil {
		classifier = classify.NewClassifier()
	}
	next.classifier = classifier
	return &next
}

// Config returns the extractor configuration
func (e *Extractor) Config() Config {
	return e.config
}

func (e *Extractor) log() *slog.Logger {
	if e.logger == nil {
		return slog.Default()
	}
	return e.logger
}

// warn records a warning and logs it
func (e *Extractor) warn(ctx context.Context, page int, stage string, err error) Warning {
	e.log().WarnContext(ctx, "page degraded",
		slog.Int("page", page),
		slog.String("stage", stage),
		slog.Any("error", err),
	)
	return Warning{Page: page, Stage: stage, Message: err.Error()}
}

// ExtractTextBlocks returns the page's text blocks in reading order. Block
// IDs are assigned before the noise filter runs, so they may skip numbers.
// On any failure the page yields no blocks and one warning.
func (e *Extractor) ExtractTextBlocks(ctx context.Context, src PageSource, pageNum int) (blocks []model.TextBlock, warnings []Warning) {
	defer func() {
		if r := recover(); r != nil {
			blocks = nil
			warnings = []Warning{e.warn(ctx, pageNum, StageText, fmt.Errorf("panic: %v", r))}
		}
	}()

	runs, err := src.TextContent(ctx)
	if err != nil {
		return nil, []Warning{e.warn(ctx, pageNum, StageText, fmt.Errorf("failed to get text content: %w", err))}
	}

	viewport, err := src.Viewport(1)
	if err != nil {
		return nil, []Warning{e.warn(ctx, pageNum, StageText, fmt.Errorf("failed to get viewport: %w", err))}
	}

	items := e.mapper.Map(runs, viewport.Height)
	if len(items) == 0 {
		e.log().DebugContext(ctx, "no positioned text", slog.Int("page", pageNum), slog.Int("runs", len(runs)))
		return nil, nil
	}

	pageLayout := e.analyzer.Analyze(items, viewport.Width)

	blocks = make([]model.TextBlock, 0, pageLayout.ParagraphCount())
	for i, paragraph := range pageLayout.Paragraphs {
		fontSize := paragraph.FontSize
		block := model.TextBlock{
			ID:          model.TextBlockID(pageNum, i),
			Text:        paragraph.Text,
			PageNum:     pageNum,
			BBox:        paragraph.BBox,
			ContentType: e.classifier.Classify(paragraph.Text),
			FontSize:    &fontSize,
		}
		if e.isNoise(block) {
			continue
		}
		blocks = append(blocks, block)
	}

	e.log().DebugContext(ctx, "text blocks extracted",
		slog.Int("page", pageNum),
		slog.Int("items", len(items)),
		slog.Int("lines", len(pageLayout.Lines)),
		slog.Int("columns", pageLayout.Columns.ColumnCount()),
		slog.Int("paragraphs", pageLayout.ParagraphCount()),
		slog.Int("blocks", len(blocks)),
	)
	return blocks, nil
}

// isNoise reports whether a block should be dropped: non-IMAGE blocks with
// no words, and single-word TEXT blocks shorter than HeightFactor times
// their font size
func (e *Extractor) isNoise(block model.TextBlock) bool {
	if block.ContentType == model.ContentImage {
		return false
	}

	words := block.WordCount()
	if words == 0 {
		return true
	}
	if block.ContentType != model.ContentText || words != 1 {
		return false
	}

	noise := e.config.Noise
	return block.Height < block.FontSizeOr(noise.DefaultFontSize)*noise.HeightFactor
}

// DetectImageRegions returns the page's image blocks. Operator-based
// detection is used when src implements OperatorSource; when the source
// lacks it, fails, or finds nothing, regions are synthesized above figure
// captions in textBlocks. A panic in src yields no regions and a warning.
func (e *Extractor) DetectImageRegions(ctx context.Context, src PageSource, pageNum int, textBlocks []model.TextBlock) (regions []model.TextBlock, warnings []Warning) {
	defer func() {
		if r := recover(); r != nil {
			regions = nil
			warnings = append(warnings, e.warn(ctx, pageNum, StageImages, fmt.Errorf("panic: %v", r)))
		}
	}()

	viewport, err := src.Viewport(1)
	if err != nil {
		return nil, []Warning{e.warn(ctx, pageNum, StageImages, fmt.Errorf("failed to get viewport: %w", err))}
	}

	fallback := func(reason string) ([]model.TextBlock, []Warning) {
		regions := e.images.CaptionRegions(textBlocks, viewport.Width, viewport.Height, pageNum)
		e.log().DebugContext(ctx, "caption image fallback",
			slog.Int("page", pageNum),
			slog.String("reason", reason),
			slog.Int("regions", len(regions)),
		)
		return regions, warnings
	}

	opSource, ok := src.(OperatorSource)
	if !ok {
		return fallback("no operator list")
	}

	regions, err = e.operatorRegions(ctx, opSource, viewport, pageNum, textBlocks)
	switch {
	case errors.Is(err, ErrOperatorListUnavailable):
		return fallback("operator list unavailable")
	case err != nil:
		warnings = append(warnings, e.warn(ctx, pageNum, StageImages, err))
		return fallback("operator list failed")
	case len(regions) == 0:
		return fallback("no operator images")
	}

	e.log().DebugContext(ctx, "operator images detected", slog.Int("page", pageNum), slog.Int("regions", len(regions)))
	return regions, warnings
}

// operatorRegions walks the operator list, converting a panic into an error
func (e *Extractor) operatorRegions(ctx context.Context, src OperatorSource, viewport model.Viewport, pageNum int, textBlocks []model.TextBlock) (regions []model.TextBlock, err error) {
	defer func() {
		if r := recover(); r != nil {
			regions = nil
			err = fmt.Errorf("panic while walking operators: %v", r)
		}
	}()

	ops, err := src.OperatorList(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get operator list: %w", err)
	}
	return e.images.FromOperators(ops, viewport.Transform, pageNum, textBlocks), nil
}

// ExtractPage extracts text blocks and image blocks from one page. When
// table promotion is enabled, tabular TEXT blocks are re-typed as TABLE
// before image detection. It never fails; problems are reported as
// warnings on the result.
func (e *Extractor) ExtractPage(ctx context.Context, src PageSource, pageNum int) *PageResult {
	result := &PageResult{PageNum: pageNum}

	textBlocks, warnings := e.ExtractTextBlocks(ctx, src, pageNum)
	result.Warnings = append(result.Warnings, warnings...)

	if e.config.PromoteTables {
		result.Tables = e.tables.DetectTableRegions(textBlocks)
	}

	imageBlocks, warnings := e.DetectImageRegions(ctx, src, pageNum, textBlocks)
	result.Warnings = append(result.Warnings, warnings...)

	result.Blocks = make([]model.TextBlock, 0, len(textBlocks)+len(imageBlocks))
	result.Blocks = append(result.Blocks, textBlocks...)
	result.Blocks = append(result.Blocks, imageBlocks...)

	e.log().DebugContext(ctx, "page extracted",
		slog.Int("page", pageNum),
		slog.Int("text_blocks", len(textBlocks)),
		slog.Int("image_blocks", len(imageBlocks)),
		slog.Int("warnings", len(result.Warnings)),
	)
	return result
}
