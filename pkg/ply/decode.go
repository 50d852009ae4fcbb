package ply

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/df07/go-plymesh/pkg/mesh"
)

// DecodeRaw parses the header of data and decodes the data section into columns
func DecodeRaw(data []byte) (*Raw, error) {
	schema, offset, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	body := data[offset:]

	var elements []*ElementData
	switch schema.Format {
	case ASCII:
		elements, err = decodeASCII(schema, body)
	case BinaryLittleEndian:
		elements, err = decodeBinary(schema, body, binary.LittleEndian)
	case BinaryBigEndian:
		elements, err = decodeBinary(schema, body, binary.BigEndian)
	default:
		return nil, &FormatError{Reason: fmt.Sprintf("unsupported PLY format: %s", schema.Format)}
	}
	if err != nil {
		return nil, err
	}

	return &Raw{
		Format:   schema.Format,
		Version:  schema.Version,
		Comments: schema.Comments,
		ObjInfo:  schema.ObjInfo,
		Elements: elements,
	}, nil
}

// Decode decodes a complete PLY buffer into a mesh or point cloud
func Decode(data []byte) (mesh.Geometry, error) {
	raw, err := DecodeRaw(data)
	if err != nil {
		return nil, err
	}
	return Assemble(raw)
}

// Load reads r to the end and decodes it
func Load(r io.Reader) (mesh.Geometry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read PLY data: %w", err)
	}
	return Decode(data)
}
