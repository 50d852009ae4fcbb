package mesh

import (
	"fmt"
	"sort"
)

// Attribute is a numeric array aligned 1:1 with the rows of an element.
// Width values per row are stored row-major in Values; attributes whose rows differ
// in length use Ragged instead and have Width 0.
type Attribute struct {
	Width  int
	Values []float64
	Ragged [][]float64
}

// NewScalarAttribute creates a one-component attribute
func NewScalarAttribute(values []float64) Attribute {
	return Attribute{Width: 1, Values: values}
}

// NewVectorAttribute creates an attribute from equally sized rows
func NewVectorAttribute(rows [][]float64) (Attribute, error) {
	if len(rows) == 0 {
		return Attribute{Width: 1}, nil
	}
	width := len(rows[0])
	values := make([]float64, 0, width*len(rows))
	for i, row := range rows {
		if len(row) != width {
			return Attribute{}, fmt.Errorf("row %d has %d components, expected %d", i, len(row), width)
		}
		values = append(values, row...)
	}
	return Attribute{Width: width, Values: values}, nil
}

// NewRaggedAttribute creates an attribute whose rows may differ in length
func NewRaggedAttribute(rows [][]float64) Attribute {
	return Attribute{Ragged: rows}
}

// IsRagged reports whether rows may differ in length
func (a Attribute) IsRagged() bool {
	return a.Ragged != nil
}

// Len returns the number of rows
func (a Attribute) Len() int {
	if a.IsRagged() {
		return len(a.Ragged)
	}
	if a.Width == 0 {
		return 0
	}
	return len(a.Values) / a.Width
}

// Row returns the values of row i
func (a Attribute) Row(i int) []float64 {
	if a.IsRagged() {
		return a.Ragged[i]
	}
	return a.Values[i*a.Width : (i+1)*a.Width]
}

// Column returns component c of every row
func (a Attribute) Column(c int) []float64 {
	out := make([]float64, a.Len())
	for i := range out {
		out[i] = a.Row(i)[c]
	}
	return out
}

// Attributes maps attribute names to arrays aligned with an element
type Attributes map[string]Attribute

// Names returns the attribute names in sorted order
func (a Attributes) Names() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a Attributes) validate(element string, rows int) error {
	for _, name := range a.Names() {
		attr := a[name]
		if !attr.IsRagged() && attr.Width > 0 && len(attr.Values)%attr.Width != 0 {
			return fmt.Errorf("%s attribute %s: %d values do not divide into rows of %d", element, name, len(attr.Values), attr.Width)
		}
		if attr.Len() != rows {
			return fmt.Errorf("%s attribute %s: expected %d rows, got %d", element, name, rows, attr.Len())
		}
	}
	return nil
}
