package pdfsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/pageblocks/model"
)

// ErrPageOutOfRange is returned by Document.Page for a page number outside
// 1..NumPages.
var ErrPageOutOfRange = errors.New("page number out of range")

// letterBox is the view box assumed for pages without a usable MediaBox
var letterBox = [4]float64{0, 0, 612, 792}

// Document is an open PDF file
type Document struct {
	file   *os.File
	reader *pdf.Reader
	config Config
}

// Open opens the PDF file at path with the default configuration
func Open(path string) (*Document, error) {
	return OpenWithConfig(path, DefaultConfig())
}

// OpenWithConfig opens the PDF file at path
func OpenWithConfig(path string, config Config) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	doc, err := NewDocument(f, info.Size(), config)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.file = f
	return doc, nil
}

// NewDocument reads a PDF from r, which holds size bytes. The caller keeps
// ownership of r.
func NewDocument(r io.ReaderAt, size int64, config Config) (doc *Document, err error) {
	defer recoverError(&err, "open")

	if err := checkHeader(r); err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	return &Document{reader: reader, config: config.withDefaults()}, nil
}

// NumPages returns the number of pages in the document
func (d *Document) NumPages() (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	return d.reader.NumPage()
}

// Page returns page n, counting from 1
func (d *Document) Page(n int) (page *Page, err error) {
	defer recoverError(&err, "page lookup")

	if n < 1 || n > d.NumPages() {
		return nil, fmt.Errorf("page %d of %d: %w", n, d.NumPages(), ErrPageOutOfRange)
	}

	p := d.reader.Page(n)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: not found in page tree", n)
	}

	return &Page{number: n, page: p, config: d.config}, nil
}

// Close releases the underlying file when the document was opened by path
func (d *Document) Close() error {
	if d == nil || d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// Page is a single page of a Document. It satisfies the extractor's page
// source and operator source contracts.
type Page struct {
	number int
	page   pdf.Page
	config Config
}

// Number returns the 1-based page number
func (p *Page) Number() int {
	return p.number
}

// TextContent returns the page's text as glyph runs in user space
func (p *Page) TextContent(ctx context.Context) (runs []model.TextRun, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer recoverError(&err, "text content")

	content := p.page.Content()
	return MergeGlyphs(content.Text, p.config), nil
}

// Viewport returns the page viewport at the given scale
func (p *Page) Viewport(scale float64) (vp model.Viewport, err error) {
	defer recoverError(&err, "viewport")

	box, ok := boxOf(inherited(p.page.V, "CropBox"))
	if !ok {
		box, ok = boxOf(inherited(p.page.V, "MediaBox"))
	}
	if !ok {
		box = letterBox
	}

	return model.NewViewport(box, scale, p.rotation()), nil
}

// rotation returns the page's /Rotate entry
func (p *Page) rotation() int {
	r := inherited(p.page.V, "Rotate")
	if r.Kind() != pdf.Integer && r.Kind() != pdf.Real {
		return 0
	}
	return int(r.Float64())
}

// maxTreeDepth bounds the walk up a page tree's /Parent chain
const maxTreeDepth = 32

// inherited looks key up on a page and then on its ancestors in the page
// tree. It returns a null value when no node defines it.
func inherited(page pdf.Value, key string) pdf.Value {
	v := page
	for depth := 0; depth < maxTreeDepth && v.Kind() == pdf.Dict; depth++ {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
		v = v.Key("Parent")
	}
	return pdf.Value{}
}

// OperatorList returns the image-related drawing operators of the page
func (p *Page) OperatorList(ctx context.Context) (list *model.OperatorList, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer recoverError(&err, "operator list")

	data, err := readContents(p.page.V.Key("Contents"))
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", p.number, err)
	}

	return BuildOperatorList(ctx, data, valueResources{p.page.Resources()}, p.config.MaxFormDepth)
}

// boxOf reads a rectangle value into normalized [x0 y0 x1 y1] form
func boxOf(v pdf.Value) ([4]float64, bool) {
	if v.Kind() != pdf.Array || v.Len() != 4 {
		return [4]float64{}, false
	}
	var values [4]float64
	for i := range values {
		values[i] = v.Index(i).Float64()
	}
	return normalizeBox(values)
}

// normalizeBox orders the corners of a rectangle and rejects empty ones
func normalizeBox(b [4]float64) ([4]float64, bool) {
	if b[0] > b[2] {
		b[0], b[2] = b[2], b[0]
	}
	if b[1] > b[3] {
		b[1], b[3] = b[3], b[1]
	}
	if b[2]-b[0] <= 0 || b[3]-b[1] <= 0 {
		return [4]float64{}, false
	}
	return b, true
}

// readContents concatenates the decoded data of a page's content streams
func readContents(v pdf.Value) ([]byte, error) {
	switch v.Kind() {
	case pdf.Null:
		return nil, nil
	case pdf.Stream:
		return readStream(v)
	case pdf.Array:
		var data []byte
		for i := 0; i < v.Len(); i++ {
			part, err := readStream(v.Index(i))
			if err != nil {
				return nil, fmt.Errorf("content stream %d: %w", i, err)
			}
			data = append(data, part...)
			data = append(data, '\n')
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unexpected /Contents kind %d", v.Kind())
	}
}

// readStream returns the decoded data of a stream value
func readStream(v pdf.Value) (data []byte, err error) {
	defer recoverError(&err, "stream decode")

	if v.Kind() != pdf.Stream {
		return nil, fmt.Errorf("expected a stream, got kind %d", v.Kind())
	}

	rc := v.Reader()
	defer rc.Close()

	data, err = io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stream: %w", err)
	}
	return data, nil
}

// recoverError converts a panic in the PDF library into an error
func recoverError(err *error, stage string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: pdf library panic: %v", stage, r)
	}
}
