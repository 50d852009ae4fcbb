package ply

import (
	"encoding/binary"
	"fmt"
)

// cursor is the forward-only read position over a binary data section
type cursor struct {
	data  []byte
	pos   int
	order binary.ByteOrder
}

// read decodes one value of the given kind and advances the cursor
func (c *cursor) read(k Kind) (float64, bool) {
	n := k.Size()
	if c.pos+n > len(c.data) {
		return 0, false
	}
	v := k.decode(c.data[c.pos:], c.order)
	c.pos += n
	return v, true
}

// decodeBinary decodes every element of schema from data in header order
func decodeBinary(schema *Schema, data []byte, order binary.ByteOrder) ([]*ElementData, error) {
	cur := &cursor{data: data, order: order}
	elements := make([]*ElementData, 0, len(schema.Elements))

	for _, element := range schema.Elements {
		var ed *ElementData
		var err error
		if stride, ok := element.fixedStride(); ok {
			ed, err = decodeBinaryFixed(cur, element, stride)
		} else {
			ed, err = decodeBinaryRows(cur, element)
		}
		if err != nil {
			return nil, err
		}
		elements = append(elements, ed)
	}
	return elements, nil
}

// decodeBinaryFixed decodes an element whose properties are all scalar. The whole
// element is bounds checked once and then read with a fixed row stride.
func decodeBinaryFixed(cur *cursor, element Element, stride int) (*ElementData, error) {
	remaining := len(cur.data) - cur.pos
	if stride > 0 && element.Count > remaining/stride {
		row := remaining / stride
		prop, offset := "", cur.pos+row*stride
		for _, p := range element.Properties {
			if offset+p.Type.Size() > len(cur.data) {
				prop = p.Name
				break
			}
			offset += p.Type.Size()
		}
		return nil, &TruncatedDataError{Element: element.Name, Property: prop, Row: row, Offset: offset}
	}
	total := stride * element.Count

	columns := make([]*Column, len(element.Properties))
	for i, prop := range element.Properties {
		columns[i] = &Column{Property: prop, Width: 1, Values: make([]float64, element.Count)}
	}

	block := cur.data[cur.pos : cur.pos+total]
	offset := 0
	for i, prop := range element.Properties {
		kind := prop.Type
		values := columns[i].Values
		for row, at := 0, offset; row < element.Count; row, at = row+1, at+stride {
			values[row] = kind.decode(block[at:], cur.order)
		}
		offset += kind.Size()
	}
	cur.pos += total

	return &ElementData{Element: element, Columns: columns}, nil
}

// decodeBinaryRows decodes an element containing list properties one row at a time
func decodeBinaryRows(cur *cursor, element Element) (*ElementData, error) {
	minRow := 0
	for _, prop := range element.Properties {
		if prop.IsList() {
			minRow += prop.CountType.Size()
		} else {
			minRow += prop.Type.Size()
		}
	}
	columns := newRowColumns(element, rowCapacity(element.Count, len(cur.data)-cur.pos, minRow))

	for row := 0; row < element.Count; row++ {
		for i, prop := range element.Properties {
			col := columns[i]
			if !prop.IsList() {
				v, ok := cur.read(prop.Type)
				if !ok {
					return nil, &TruncatedDataError{Element: element.Name, Property: prop.Name, Row: row, Offset: cur.pos}
				}
				col.Values = append(col.Values, v)
				continue
			}

			n, ok := cur.read(prop.CountType)
			if !ok {
				return nil, &TruncatedDataError{Element: element.Name, Property: prop.Name, Row: row, Offset: cur.pos}
			}
			if n < 0 {
				return nil, &FormatError{Reason: fmt.Sprintf("negative list length %v for %s.%s row %d", n, element.Name, prop.Name, row)}
			}
			count := int(n)
			if cur.pos+count*prop.Type.Size() > len(cur.data) {
				return nil, &TruncatedDataError{Element: element.Name, Property: prop.Name, Row: row, Offset: cur.pos}
			}
			values := make([]float64, count)
			for j := range values {
				values[j], _ = cur.read(prop.Type)
			}
			col.Ragged = append(col.Ragged, values)
		}
	}

	for _, col := range columns {
		col.pack()
	}
	return &ElementData{Element: element, Columns: columns}, nil
}

// newRowColumns allocates columns for row-by-row decoding with room for capacity rows
func newRowColumns(element Element, capacity int) []*Column {
	columns := make([]*Column, len(element.Properties))
	for i, prop := range element.Properties {
		if prop.IsList() {
			columns[i] = &Column{Property: prop, Ragged: make([][]float64, 0, capacity)}
		} else {
			columns[i] = &Column{Property: prop, Width: 1, Values: make([]float64, 0, capacity)}
		}
	}
	return columns
}

// rowCapacity bounds the declared row count by the rows the remaining data could
// hold when every row takes at least minRow bytes
func rowCapacity(count, remaining, minRow int) int {
	if minRow <= 0 {
		return 0
	}
	return max(0, min(count, remaining/minRow))
}
