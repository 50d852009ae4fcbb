package ply

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/df07/go-plymesh/pkg/mesh"
)

// Options controls how a geometry is encoded
type Options struct {
	Encoding          Format   // data section layout
	IncludeAttributes bool     // write vertex/face attributes and passthrough elements
	Comments          []string // written as comment lines
}

// DefaultOptions returns binary little endian output with attributes included
func DefaultOptions() Options {
	return Options{
		Encoding:          BinaryLittleEndian,
		IncludeAttributes: true,
	}
}

var (
	positionProps = []string{"x", "y", "z"}
	colorProps    = []string{"red", "green", "blue", "alpha"}
)

// Encode serializes a mesh or point cloud to PLY
func Encode(g mesh.Geometry, opts Options) ([]byte, error) {
	if opts.Encoding == 0 {
		opts.Encoding = BinaryLittleEndian
	}
	if opts.Encoding != ASCII && opts.Encoding != BinaryLittleEndian && opts.Encoding != BinaryBigEndian {
		return nil, fmt.Errorf("unsupported PLY format: %s", opts.Encoding)
	}

	base := g.Common()
	raw, _ := base.Metadata[mesh.MetadataPLYRaw].(*Raw)

	vertex, err := vertexElement(base, raw, opts.IncludeAttributes)
	if err != nil {
		return nil, err
	}
	elements := []*ElementData{vertex}

	switch g := g.(type) {
	case *mesh.Mesh:
		face, err := faceElement(g, raw, opts.IncludeAttributes)
		if err != nil {
			return nil, err
		}
		elements = append(elements, face)
	case *mesh.PointCloud:
		if g.Visual.Kind == mesh.VisualFace {
			return nil, &SchemaMismatchError{Element: "face", Reason: "point cloud cannot carry face colors"}
		}
	default:
		return nil, fmt.Errorf("unsupported geometry %T", g)
	}

	comments := opts.Comments
	var objInfo []string
	if opts.IncludeAttributes && raw != nil {
		for _, ed := range raw.Elements {
			if ed.Element.Name != "vertex" && ed.Element.Name != "face" {
				elements = append(elements, ed)
			}
		}
		comments = append(append([]string(nil), comments...), raw.Comments...)
		objInfo = raw.ObjInfo
	}

	layout := make([]Element, len(elements))
	for i, ed := range elements {
		layout[i] = ed.Element
	}
	if err := checkHeaderText(layout, comments, objInfo); err != nil {
		return nil, err
	}

	b := appendHeader(make([]byte, 0, estimateSize(elements)), opts.Encoding, comments, objInfo, layout)
	return appendData(b, opts.Encoding, elements), nil
}

// checkHeaderText rejects names and comment lines that would change the header layout
func checkHeaderText(layout []Element, comments, objInfo []string) error {
	for _, e := range layout {
		if !validName(e.Name) {
			return &SchemaMismatchError{Element: e.Name, Reason: "element name must be non-empty and contain no whitespace"}
		}
		for _, p := range e.Properties {
			if !validName(p.Name) {
				return &SchemaMismatchError{Element: e.Name, Property: p.Name, Reason: "property name must be non-empty and contain no whitespace"}
			}
		}
	}
	for _, lines := range [][]string{comments, objInfo} {
		for _, line := range lines {
			if strings.ContainsAny(line, "\r\n") {
				return &SchemaMismatchError{Reason: fmt.Sprintf("header text %q contains a line break", line)}
			}
		}
	}
	return nil
}

func validName(name string) bool {
	return name != "" && strings.IndexFunc(name, unicode.IsSpace) < 0
}

// Write encodes g and writes the result to w in one call
func Write(w io.Writer, g mesh.Geometry, opts Options) error {
	data, err := Encode(g, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// elementBuilder accumulates the columns of an element being encoded
type elementBuilder struct {
	ed   *ElementData
	hint *ElementData // same element in the passthrough, used for property kinds
}

func newElementBuilder(name string, count int, raw *Raw) *elementBuilder {
	b := &elementBuilder{ed: &ElementData{Element: Element{Name: name, Count: count}}}
	if raw != nil {
		if hint := raw.Element(name); hint != nil && hint.Element.Count == count {
			b.hint = hint
		}
	}
	return b
}

func (b *elementBuilder) add(prop Property, col *Column) error {
	if b.ed.Element.Property(prop.Name) >= 0 {
		return &SchemaMismatchError{Element: b.ed.Element.Name, Property: prop.Name, Reason: "duplicate property name"}
	}
	col.Property = prop
	b.ed.Element.Properties = append(b.ed.Element.Properties, prop)
	b.ed.Columns = append(b.ed.Columns, col)
	return nil
}

func (b *elementBuilder) addScalar(name string, kind Kind, values []float64) error {
	return b.add(Property{Name: name, Type: kind}, &Column{Width: 1, Values: values})
}

func (b *elementBuilder) addColors(colors []mesh.RGBA) error {
	if len(colors) != b.ed.Element.Count {
		return &SchemaMismatchError{Element: b.ed.Element.Name, Reason: fmt.Sprintf("expected %d colors, got %d", b.ed.Element.Count, len(colors))}
	}
	for c, name := range colorProps {
		values := make([]float64, len(colors))
		for i, color := range colors {
			values[i] = float64(color[c])
		}
		if err := b.addScalar(name, Uint8, values); err != nil {
			return err
		}
	}
	return nil
}

// addAttributes writes each attribute as one scalar property, or one property per
// component named name_0 .. name_N-1. Ragged attributes, and attributes read from a
// list property, are written as list properties.
func (b *elementBuilder) addAttributes(attrs mesh.Attributes) error {
	element := b.ed.Element.Name
	for _, name := range attrs.Names() {
		attr := attrs[name]
		if attr.Len() != b.ed.Element.Count || (!attr.IsRagged() && (attr.Width <= 0 || len(attr.Values)%attr.Width != 0)) {
			return &SchemaMismatchError{Element: element, Property: name, Reason: fmt.Sprintf("attribute has %d rows, expected %d", attr.Len(), b.ed.Element.Count)}
		}

		if attr.IsRagged() || b.hintList(name) != nil {
			if err := b.addList(name, attr); err != nil {
				return err
			}
			continue
		}
		if attr.Width == 1 {
			if err := b.addScalar(name, b.kindFor(name, attr.Values), attr.Values); err != nil {
				return err
			}
			continue
		}
		for c := 0; c < attr.Width; c++ {
			component := name + "_" + strconv.Itoa(c)
			values := attr.Column(c)
			if err := b.addScalar(component, b.kindFor(component, values), values); err != nil {
				return err
			}
		}
	}
	return nil
}

// addList writes an attribute as a list property. Count and value kinds come from
// the source file when the data still fits them.
func (b *elementBuilder) addList(name string, attr mesh.Attribute) error {
	countKind, valueKind := Uint8, Float64
	longest, values := 0, make([]float64, 0, len(attr.Values))
	for i := 0; i < attr.Len(); i++ {
		row := attr.Row(i)
		longest = max(longest, len(row))
		values = append(values, row...)
	}
	if hint := b.hintList(name); hint != nil {
		countKind = hint.Property.CountType
		valueKind = fitKind(hint.Property.Type, values)
	}
	if _, hi := countKind.Range(); float64(longest) > hi {
		countKind = Uint32
	}

	col := &Column{Width: attr.Width, Values: attr.Values}
	if attr.IsRagged() {
		col = &Column{Ragged: attr.Ragged}
	}
	return b.add(Property{Name: name, Type: valueKind, CountType: countKind}, col)
}

// hintList returns the list column of the same name in the source element, or nil
func (b *elementBuilder) hintList(name string) *Column {
	if b.hint == nil {
		return nil
	}
	if col := b.hint.Column(name); col != nil && col.Property.IsList() {
		return col
	}
	return nil
}

// kindFor returns the kind the property had in the source file when the values
// still fit it, otherwise float64
func (b *elementBuilder) kindFor(name string, values []float64) Kind {
	if b.hint == nil {
		return Float64
	}
	col := b.hint.Column(name)
	if col == nil || col.Property.IsList() {
		return Float64
	}
	return fitKind(col.Property.Type, values)
}

// fitKind returns kind if every value is exactly representable in it, otherwise float64
func fitKind(kind Kind, values []float64) Kind {
	if kind == Float64 {
		return kind
	}
	lo, hi := kind.Range()
	for _, v := range values {
		if kind.IsFloat() {
			if float64(float32(v)) != v {
				return Float64
			}
			continue
		}
		if v < lo || v > hi || v != math.Trunc(v) {
			return Float64
		}
	}
	return kind
}

func vertexElement(base *mesh.Base, raw *Raw, includeAttributes bool) (*ElementData, error) {
	n := len(base.Vertices)
	b := newElementBuilder("vertex", n, raw)

	for axis, name := range positionProps {
		values := make([]float64, n)
		for i, v := range base.Vertices {
			values[i] = v[axis]
		}
		if err := b.addScalar(name, Float64, values); err != nil {
			return nil, err
		}
	}

	if base.Visual.Kind == mesh.VisualVertex {
		if err := b.addColors(base.Visual.Colors); err != nil {
			return nil, err
		}
	}
	if includeAttributes {
		if err := b.addAttributes(base.VertexAttributes); err != nil {
			return nil, err
		}
	}
	return b.ed, nil
}

func faceElement(m *mesh.Mesh, raw *Raw, includeAttributes bool) (*ElementData, error) {
	n := len(m.Faces)
	b := newElementBuilder("face", n, raw)

	indices := make([]float64, 0, 3*n)
	for _, f := range m.Faces {
		indices = append(indices, float64(f[0]), float64(f[1]), float64(f[2]))
	}
	if err := b.add(Property{Name: "vertex_indices", Type: Uint32, CountType: Uint8}, &Column{Width: 3, Values: indices}); err != nil {
		return nil, err
	}

	if m.Visual.Kind == mesh.VisualFace {
		if err := b.addColors(m.Visual.Colors); err != nil {
			return nil, err
		}
	}
	if includeAttributes {
		if err := b.addAttributes(m.FaceAttributes); err != nil {
			return nil, err
		}
	}
	return b.ed, nil
}

// estimateSize returns the binary size of the data section, used to presize the buffer
func estimateSize(elements []*ElementData) int {
	size := 1024
	for _, ed := range elements {
		for _, col := range ed.Columns {
			if col.IsRagged() {
				for _, row := range col.Ragged {
					size += col.Property.CountType.Size() + len(row)*col.Property.Type.Size()
				}
				continue
			}
			size += len(col.Values) * col.Property.Type.Size()
			if col.Property.IsList() {
				size += col.Rows() * col.Property.CountType.Size()
			}
		}
	}
	return size
}

// appendData writes the rows of every element in the given encoding
func appendData(b []byte, format Format, elements []*ElementData) []byte {
	if format == ASCII {
		for _, ed := range elements {
			for row := 0; row < ed.Element.Count; row++ {
				for i, col := range ed.Columns {
					if i > 0 {
						b = append(b, ' ')
					}
					values := col.Row(row)
					if col.Property.IsList() {
						b = strconv.AppendInt(b, int64(len(values)), 10)
						for _, v := range values {
							b = append(b, ' ')
							b = appendText(b, v, col.Property.Type)
						}
						continue
					}
					b = appendText(b, values[0], col.Property.Type)
				}
				b = append(b, '\n')
			}
		}
		return b
	}

	var order binary.AppendByteOrder = binary.LittleEndian
	if format == BinaryBigEndian {
		order = binary.BigEndian
	}
	for _, ed := range elements {
		for row := 0; row < ed.Element.Count; row++ {
			for _, col := range ed.Columns {
				values := col.Row(row)
				if col.Property.IsList() {
					b = col.Property.CountType.appendValue(b, order, float64(len(values)))
				}
				for _, v := range values {
					b = col.Property.Type.appendValue(b, order, v)
				}
			}
		}
	}
	return b
}

// appendText writes v as decimal text with enough digits to round trip the kind
func appendText(b []byte, v float64, k Kind) []byte {
	switch k {
	case Float32:
		return strconv.AppendFloat(b, v, 'g', -1, 32)
	case Float64:
		return strconv.AppendFloat(b, v, 'g', -1, 64)
	default:
		return strconv.AppendInt(b, int64(v), 10)
	}
}
