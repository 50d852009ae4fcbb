package ply

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Format is the encoding of the data section declared by the format line
type Format int

const (
	ASCII Format = iota + 1
	BinaryLittleEndian
	BinaryBigEndian
)

// ParseFormat maps a format token to a Format
func ParseFormat(name string) (Format, error) {
	switch name {
	case "ascii":
		return ASCII, nil
	case "binary_little_endian":
		return BinaryLittleEndian, nil
	case "binary_big_endian":
		return BinaryBigEndian, nil
	default:
		return 0, fmt.Errorf("unsupported PLY format: %s", name)
	}
}

func (f Format) String() string {
	switch f {
	case ASCII:
		return "ascii"
	case BinaryLittleEndian:
		return "binary_little_endian"
	case BinaryBigEndian:
		return "binary_big_endian"
	default:
		return "unknown"
	}
}

// Property is a scalar or list field of an element
type Property struct {
	Name      string
	Type      Kind // scalar type, or value type for lists
	CountType Kind // zero for scalar properties
}

// IsList reports whether the property is a list property
func (p Property) IsList() bool {
	return p.CountType != 0
}

func (p Property) headerLine() string {
	return "property " + p.Declaration()
}

// Declaration returns the property as it appears after the property keyword,
// e.g. "float x" or "list uchar int vertex_indices"
func (p Property) Declaration() string {
	if p.IsList() {
		return fmt.Sprintf("list %s %s %s", p.CountType, p.Type, p.Name)
	}
	return fmt.Sprintf("%s %s", p.Type, p.Name)
}

// Element is a named record type with a declared row count
type Element struct {
	Name       string
	Count      int
	Properties []Property
}

// Property returns the index of the named property, or -1
func (e *Element) Property(name string) int {
	for i, p := range e.Properties {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// fixedStride returns the row size in bytes when every property is scalar
func (e *Element) fixedStride() (int, bool) {
	stride := 0
	for _, p := range e.Properties {
		if p.IsList() {
			return 0, false
		}
		stride += p.Type.Size()
	}
	return stride, true
}

// Schema is the parsed header of a PLY file
type Schema struct {
	Format   Format
	Version  string
	Comments []string
	ObjInfo  []string
	Elements []Element
}

// Element returns the named element, or nil
func (s *Schema) Element(name string) *Element {
	for i := range s.Elements {
		if s.Elements[i].Name == name {
			return &s.Elements[i]
		}
	}
	return nil
}

const endHeader = "end_header"

// ParseHeader parses the header at the start of data and returns the schema
// together with the offset of the first byte of the data section
func ParseHeader(data []byte) (*Schema, int, error) {
	schema := &Schema{}
	offset := 0
	lineNo := 0
	var current *Element

	for {
		if offset >= len(data) {
			return nil, 0, &FormatError{Line: lineNo, Reason: "missing end_header"}
		}
		end := bytes.IndexByte(data[offset:], '\n')
		var raw []byte
		if end < 0 {
			raw = data[offset:]
			offset = len(data)
		} else {
			raw = data[offset : offset+end]
			offset += end + 1
		}
		lineNo++
		line := strings.TrimSpace(string(raw))

		if lineNo == 1 {
			if line != "ply" {
				return nil, 0, &FormatError{Line: 1, Reason: "missing ply magic"}
			}
			continue
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if schema.Format != 0 {
				return nil, 0, &FormatError{Line: lineNo, Reason: "duplicate format line"}
			}
			if len(parts) != 3 {
				return nil, 0, &FormatError{Line: lineNo, Reason: "invalid format line"}
			}
			format, err := ParseFormat(parts[1])
			if err != nil {
				return nil, 0, &FormatError{Line: lineNo, Reason: err.Error()}
			}
			schema.Format = format
			schema.Version = parts[2]
		case "comment":
			schema.Comments = append(schema.Comments, strings.TrimSpace(strings.TrimPrefix(line, "comment")))
		case "obj_info":
			schema.ObjInfo = append(schema.ObjInfo, strings.TrimSpace(strings.TrimPrefix(line, "obj_info")))
		case "element":
			if len(parts) != 3 {
				return nil, 0, &FormatError{Line: lineNo, Reason: "invalid element line"}
			}
			count, err := strconv.ParseUint(parts[2], 10, 31)
			if err != nil {
				return nil, 0, &FormatError{Line: lineNo, Reason: fmt.Sprintf("invalid element count: %s", parts[2])}
			}
			schema.Elements = append(schema.Elements, Element{Name: parts[1], Count: int(count)})
			current = &schema.Elements[len(schema.Elements)-1]
		case "property":
			if current == nil {
				return nil, 0, &FormatError{Line: lineNo, Reason: "property before any element"}
			}
			prop, err := parseProperty(parts[1:], lineNo)
			if err != nil {
				if ute, ok := err.(*UnknownTypeError); ok {
					ute.Element = current.Name
				}
				return nil, 0, err
			}
			current.Properties = append(current.Properties, prop)
		case endHeader:
			if schema.Format == 0 {
				return nil, 0, &FormatError{Line: lineNo, Reason: "missing format line"}
			}
			return schema, offset, nil
		default:
			return nil, 0, &FormatError{Line: lineNo, Reason: fmt.Sprintf("unexpected keyword %q", parts[0])}
		}
	}
}

// parseProperty parses the fields after the "property" keyword
func parseProperty(parts []string, lineNo int) (Property, error) {
	if len(parts) > 0 && parts[0] == "list" {
		if len(parts) != 4 {
			return Property{}, &FormatError{Line: lineNo, Reason: "invalid list property definition"}
		}
		countType, err := ResolveType(parts[1])
		if err != nil {
			return Property{}, &UnknownTypeError{Token: parts[1], Property: parts[3]}
		}
		if countType.IsFloat() {
			return Property{}, &FormatError{Line: lineNo, Reason: fmt.Sprintf("list count type must be an integer, got %s", parts[1])}
		}
		valueType, err := ResolveType(parts[2])
		if err != nil {
			return Property{}, &UnknownTypeError{Token: parts[2], Property: parts[3]}
		}
		return Property{Name: parts[3], Type: valueType, CountType: countType}, nil
	}

	if len(parts) != 2 {
		return Property{}, &FormatError{Line: lineNo, Reason: "invalid property definition"}
	}
	kind, err := ResolveType(parts[0])
	if err != nil {
		return Property{}, &UnknownTypeError{Token: parts[0], Property: parts[1]}
	}
	return Property{Name: parts[1], Type: kind}, nil
}

// appendHeader writes the textual header for the given layout
func appendHeader(b []byte, format Format, comments, objInfo []string, elements []Element) []byte {
	b = append(b, "ply\n"...)
	b = append(b, "format "+format.String()+" 1.0\n"...)
	for _, c := range comments {
		b = append(b, "comment "+c+"\n"...)
	}
	for _, o := range objInfo {
		b = append(b, "obj_info "+o+"\n"...)
	}
	for _, e := range elements {
		b = append(b, fmt.Sprintf("element %s %d\n", e.Name, e.Count)...)
		for _, p := range e.Properties {
			b = append(b, p.headerLine()...)
			b = append(b, '\n')
		}
	}
	return append(b, endHeader+"\n"...)
}
