package ply

import (
	"fmt"
	"math"
	"strconv"
)

// tokenizer walks the whitespace separated tokens of an ASCII data section
type tokenizer struct {
	data []byte
	pos  int
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// next returns the next token, or false when the data is exhausted
func (t *tokenizer) next() (string, bool) {
	for t.pos < len(t.data) && isSpace(t.data[t.pos]) {
		t.pos++
	}
	if t.pos >= len(t.data) {
		return "", false
	}
	start := t.pos
	for t.pos < len(t.data) && !isSpace(t.data[t.pos]) {
		t.pos++
	}
	return string(t.data[start:t.pos]), true
}

// parseToken parses a decimal token as a value of kind k
func parseToken(token string, k Kind) (float64, error) {
	if k.IsFloat() {
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return 0, err
		}
		if k == Float32 {
			v = float64(float32(v))
		}
		return v, nil
	}

	if i, err := strconv.ParseInt(token, 10, 64); err == nil {
		v := float64(i)
		if lo, hi := k.Range(); v < lo || v > hi {
			return 0, fmt.Errorf("value %s out of range for %s", token, k)
		}
		return v, nil
	}
	// some writers emit integer columns as "3.0"
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("value %s is not an integer", token)
	}
	if lo, hi := k.Range(); v < lo || v > hi {
		return 0, fmt.Errorf("value %s out of range for %s", token, k)
	}
	return v, nil
}

// decodeASCII decodes every element of schema from a whitespace separated token stream
func decodeASCII(schema *Schema, data []byte) ([]*ElementData, error) {
	tok := &tokenizer{data: data}
	elements := make([]*ElementData, 0, len(schema.Elements))

	for _, element := range schema.Elements {
		// every token takes at least one character and one separator
		columns := newRowColumns(element, rowCapacity(element.Count, len(tok.data)-tok.pos+1, 2*len(element.Properties)))

		// read one value or fail with the position of the shortfall
		value := func(prop Property, kind Kind, row int) (float64, error) {
			token, ok := tok.next()
			if !ok {
				return 0, &TruncatedDataError{Element: element.Name, Property: prop.Name, Row: row, Offset: -1}
			}
			v, err := parseToken(token, kind)
			if err != nil {
				return 0, &FormatError{Reason: fmt.Sprintf("invalid value for %s.%s row %d: %v", element.Name, prop.Name, row, err)}
			}
			return v, nil
		}

		for row := 0; row < element.Count; row++ {
			for i, prop := range element.Properties {
				col := columns[i]
				if !prop.IsList() {
					v, err := value(prop, prop.Type, row)
					if err != nil {
						return nil, err
					}
					col.Values = append(col.Values, v)
					continue
				}

				n, err := value(prop, prop.CountType, row)
				if err != nil {
					return nil, err
				}
				if n < 0 {
					return nil, &FormatError{Reason: fmt.Sprintf("negative list length %v for %s.%s row %d", n, element.Name, prop.Name, row)}
				}
				// each value needs at least one character and one separator
				if int(n) > (len(tok.data)-tok.pos+1)/2 {
					return nil, &TruncatedDataError{Element: element.Name, Property: prop.Name, Row: row, Offset: -1}
				}
				values := make([]float64, int(n))
				for j := range values {
					if values[j], err = value(prop, prop.Type, row); err != nil {
						return nil, err
					}
				}
				col.Ragged = append(col.Ragged, values)
			}
		}

		for _, col := range columns {
			col.pack()
		}
		elements = append(elements, &ElementData{Element: element, Columns: columns})
	}
	return elements, nil
}
