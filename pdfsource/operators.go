package pdfsource

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/pageblocks/contentstream"
	"github.com/tsawler/pageblocks/model"
)

// XObject subtypes
const (
	SubtypeImage = "Image"
	SubtypeForm  = "Form"
)

// XObject is a named external object referenced by a Do operator
type XObject struct {
	Subtype   string
	ImageMask bool

	// ID identifies the object for cycle detection
	ID string

	// Form XObjects only
	Matrix    model.Matrix
	Content   func() ([]byte, error)
	Resources Resources
}

// Resources resolves the XObjects named in a content stream
type Resources interface {
	XObject(name string) (XObject, bool)
}

// BuildOperatorList tokenizes a content stream and keeps the operators that
// place images: q, Q, cm, Do of an image, and inline images. Do of a Form
// XObject expands to save, transform(/Matrix), the form's own operators and
// restore, recursing at most maxDepth levels. A form that is already being
// expanded is skipped.
func BuildOperatorList(ctx context.Context, data []byte, resources Resources, maxDepth int) (*model.OperatorList, error) {
	b := &listBuilder{
		ctx:      ctx,
		list:     &model.OperatorList{},
		maxDepth: maxDepth,
		active:   make(map[string]bool),
	}
	if err := b.walk(data, resources, 0); err != nil {
		return nil, err
	}
	return b.list, nil
}

type listBuilder struct {
	ctx      context.Context
	list     *model.OperatorList
	maxDepth int
	active   map[string]bool
}

func (b *listBuilder) walk(data []byte, resources Resources, depth int) error {
	if err := b.ctx.Err(); err != nil {
		return err
	}

	ops, err := contentstream.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse content stream: %w", err)
	}

	for _, op := range ops {
		switch op.Operator {
		case "q":
			b.list.Append(model.OpSave)
		case "Q":
			b.list.Append(model.OpRestore)
		case "cm":
			values, ok := op.Floats()
			if !ok || len(values) != 6 {
				continue
			}
			b.list.Append(model.OpTransform, model.MatrixFrom(values))
		case "BI":
			params, _ := op.Operands[0].(contentstream.Dict)
			if params.Bool("IM") || params.Bool("ImageMask") {
				b.list.Append(model.OpPaintImageMaskXObject)
			} else {
				b.list.Append(model.OpPaintInlineImageXObject)
			}
		case "Do":
			name, ok := op.NameAt(0)
			if !ok || resources == nil {
				continue
			}
			if err := b.paintXObject(string(name), resources, depth); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *listBuilder) paintXObject(name string, resources Resources, depth int) error {
	xobj, ok := resources.XObject(name)
	if !ok {
		return nil
	}

	switch xobj.Subtype {
	case SubtypeImage:
		if xobj.ImageMask {
			b.list.Append(model.OpPaintImageMaskXObject, name)
		} else {
			b.list.Append(model.OpPaintImageXObject, name)
		}
		return nil
	case SubtypeForm:
		return b.expandForm(xobj, resources, depth)
	}
	return nil
}

func (b *listBuilder) expandForm(form XObject, parent Resources, depth int) error {
	if depth >= b.maxDepth || form.Content == nil {
		return nil
	}
	if form.ID != "" {
		if b.active[form.ID] {
			return nil
		}
		b.active[form.ID] = true
		defer delete(b.active, form.ID)
	}

	data, err := form.Content()
	if err != nil {
		return fmt.Errorf("form XObject: %w", err)
	}

	resources := form.Resources
	if resources == nil {
		resources = parent
	}

	b.list.Append(model.OpSave)
	b.list.Append(model.OpTransform, form.Matrix)
	if err := b.walk(data, resources, depth+1); err != nil {
		return err
	}
	b.list.Append(model.OpRestore)
	return nil
}

// valueResources resolves XObjects from a /Resources dictionary
type valueResources struct {
	v pdf.Value
}

func (r valueResources) XObject(name string) (XObject, bool) {
	x := r.v.Key("XObject").Key(name)
	if x.Kind() != pdf.Stream {
		return XObject{}, false
	}

	xobj := XObject{
		Subtype:   x.Key("Subtype").Name(),
		ImageMask: x.Key("ImageMask").Bool(),
		ID:        x.String(),
	}

	if xobj.Subtype == SubtypeForm {
		xobj.Matrix = matrixOf(x.Key("Matrix"))
		xobj.Content = func() ([]byte, error) { return readStream(x) }
		if res := x.Key("Resources"); res.Kind() == pdf.Dict {
			xobj.Resources = valueResources{res}
		}
	}
	return xobj, true
}

// matrixOf reads a six-number array, defaulting to identity
func matrixOf(v pdf.Value) model.Matrix {
	if v.Kind() != pdf.Array || v.Len() != 6 {
		return model.Identity()
	}
	values := make([]float64, 6)
	for i := range values {
		values[i] = v.Index(i).Float64()
	}
	return model.MatrixFrom(values)
}
