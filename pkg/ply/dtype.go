package ply

import (
	"encoding/binary"
	"math"
)

// Kind is a fixed-width numeric type that a PLY property can be declared with
type Kind uint8

const (
	Int8 Kind = iota + 1
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float32
	Float64
)

// Kinds lists every registered kind in registry order
var Kinds = [...]Kind{Int8, Uint8, Int16, Uint16, Int32, Uint32, Float32, Float64}

// ResolveType maps a header type token (including the legacy aliases) to its kind
func ResolveType(token string) (Kind, error) {
	switch token {
	case "char", "int8":
		return Int8, nil
	case "uchar", "uint8":
		return Uint8, nil
	case "short", "int16":
		return Int16, nil
	case "ushort", "uint16":
		return Uint16, nil
	case "int", "int32":
		return Int32, nil
	case "uint", "uint32":
		return Uint32, nil
	case "float", "float32":
		return Float32, nil
	case "double", "float64":
		return Float64, nil
	default:
		return 0, &UnknownTypeError{Token: token}
	}
}

// Size returns the width of the kind in bytes
func (k Kind) Size() int {
	switch k {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// String returns the canonical header token written for the kind
func (k Kind) String() string {
	switch k {
	case Int8:
		return "char"
	case Uint8:
		return "uchar"
	case Int16:
		return "short"
	case Uint16:
		return "ushort"
	case Int32:
		return "int"
	case Uint32:
		return "uint"
	case Float32:
		return "float"
	case Float64:
		return "double"
	default:
		return "invalid"
	}
}

// IsFloat reports whether the kind is a floating point type
func (k Kind) IsFloat() bool {
	return k == Float32 || k == Float64
}

// Range returns the smallest and largest value an integer kind can hold.
// Float kinds report an unbounded range.
func (k Kind) Range() (float64, float64) {
	switch k {
	case Int8:
		return math.MinInt8, math.MaxInt8
	case Uint8:
		return 0, math.MaxUint8
	case Int16:
		return math.MinInt16, math.MaxInt16
	case Uint16:
		return 0, math.MaxUint16
	case Int32:
		return math.MinInt32, math.MaxInt32
	case Uint32:
		return 0, math.MaxUint32
	default:
		return math.Inf(-1), math.Inf(1)
	}
}

// decode reads one value of this kind from the front of b
func (k Kind) decode(b []byte, order binary.ByteOrder) float64 {
	switch k {
	case Int8:
		return float64(int8(b[0]))
	case Uint8:
		return float64(b[0])
	case Int16:
		return float64(int16(order.Uint16(b)))
	case Uint16:
		return float64(order.Uint16(b))
	case Int32:
		return float64(int32(order.Uint32(b)))
	case Uint32:
		return float64(order.Uint32(b))
	case Float32:
		return float64(math.Float32frombits(order.Uint32(b)))
	case Float64:
		return math.Float64frombits(order.Uint64(b))
	default:
		return 0
	}
}

// appendValue appends v encoded as this kind to b
func (k Kind) appendValue(b []byte, order binary.AppendByteOrder, v float64) []byte {
	switch k {
	case Int8:
		return append(b, byte(int8(v)))
	case Uint8:
		return append(b, uint8(v))
	case Int16:
		return order.AppendUint16(b, uint16(int16(v)))
	case Uint16:
		return order.AppendUint16(b, uint16(v))
	case Int32:
		return order.AppendUint32(b, uint32(int32(v)))
	case Uint32:
		return order.AppendUint32(b, uint32(v))
	case Float32:
		return order.AppendUint32(b, math.Float32bits(float32(v)))
	case Float64:
		return order.AppendUint64(b, math.Float64bits(v))
	default:
		return b
	}
}
