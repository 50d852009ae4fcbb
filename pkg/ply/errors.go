package ply

import "fmt"

// FormatError is returned when the header grammar or an ASCII token is malformed
type FormatError struct {
	Line   int // header line (1-based), 0 when not applicable
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("ply: %s at header line %d", e.Reason, e.Line)
	}
	return fmt.Sprintf("ply: %s", e.Reason)
}

// UnknownTypeError is returned for a type token outside the registry
type UnknownTypeError struct {
	Token    string
	Element  string
	Property string
}

func (e *UnknownTypeError) Error() string {
	if e.Element != "" {
		return fmt.Sprintf("ply: unknown type %q for property %s.%s", e.Token, e.Element, e.Property)
	}
	return fmt.Sprintf("ply: unknown type %q", e.Token)
}

// TruncatedDataError is returned when the data section ends before the schema is satisfied
type TruncatedDataError struct {
	Element  string
	Property string
	Row      int
	Offset   int // byte offset into the data section, -1 for ASCII
}

func (e *TruncatedDataError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("ply: data truncated reading %s.%s row %d at byte %d", e.Element, e.Property, e.Row, e.Offset)
	}
	return fmt.Sprintf("ply: data truncated reading %s.%s row %d", e.Element, e.Property, e.Row)
}

// SchemaMismatchError is returned when decoded data cannot be mapped onto a mesh,
// or a mesh cannot be expressed as PLY properties
type SchemaMismatchError struct {
	Element  string
	Property string
	Reason   string
}

func (e *SchemaMismatchError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("ply: %s.%s: %s", e.Element, e.Property, e.Reason)
	}
	if e.Element == "" {
		return "ply: " + e.Reason
	}
	return fmt.Sprintf("ply: %s: %s", e.Element, e.Reason)
}
