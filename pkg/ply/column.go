package ply

// Column holds the decoded values of one property across all rows of an element.
//
// Every PLY kind fits exactly in a float64, so values are stored as float64 and the
// declared kind is kept on Property. Rectangular columns keep Width values per row in
// Values; ragged columns (list properties whose rows differ in length) keep one slice
// per row in Ragged and have Width 0.
type Column struct {
	Property Property
	Width    int
	Values   []float64
	Ragged   [][]float64
}

// IsRagged reports whether the column uses per-row storage
func (c *Column) IsRagged() bool {
	return c.Ragged != nil
}

// Rows returns the number of rows in the column
func (c *Column) Rows() int {
	if c.IsRagged() {
		return len(c.Ragged)
	}
	if c.Width == 0 {
		return 0
	}
	return len(c.Values) / c.Width
}

// Row returns the values of row i. The returned slice aliases the column.
func (c *Column) Row(i int) []float64 {
	if c.IsRagged() {
		return c.Ragged[i]
	}
	return c.Values[i*c.Width : (i+1)*c.Width]
}

// Scalar returns the first value of row i
func (c *Column) Scalar(i int) float64 {
	return c.Row(i)[0]
}

// pack converts list rows to rectangular storage when all rows share one length
func (c *Column) pack() {
	if !c.IsRagged() || len(c.Ragged) == 0 {
		return
	}
	width := len(c.Ragged[0])
	if width == 0 {
		return
	}
	for _, row := range c.Ragged[1:] {
		if len(row) != width {
			return
		}
	}
	values := make([]float64, 0, width*len(c.Ragged))
	for _, row := range c.Ragged {
		values = append(values, row...)
	}
	c.Width = width
	c.Values = values
	c.Ragged = nil
}

// ElementData is the decoded content of one element, one column per property
type ElementData struct {
	Element Element
	Columns []*Column
}

// Column returns the column for the named property, or nil
func (e *ElementData) Column(name string) *Column {
	if i := e.Element.Property(name); i >= 0 {
		return e.Columns[i]
	}
	return nil
}

// Raw is the complete decoded content of a PLY file in header order
type Raw struct {
	Format   Format
	Version  string
	Comments []string
	ObjInfo  []string
	Elements []*ElementData
}

// Element returns the named element data, or nil
func (r *Raw) Element(name string) *ElementData {
	for _, e := range r.Elements {
		if e.Element.Name == name {
			return e
		}
	}
	return nil
}

// Column returns the named property of the named element, or nil
func (r *Raw) Column(element, property string) *Column {
	if e := r.Element(element); e != nil {
		return e.Column(property)
	}
	return nil
}
