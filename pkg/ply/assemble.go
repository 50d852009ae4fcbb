package ply

import (
	"fmt"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"

	"github.com/ungerik/go3d/float64/vec3"

	"github.com/df07/go-plymesh/pkg/mesh"
)

// accepted property names for each color channel, in priority order
var colorNames = [4][]string{
	{"red", "r", "diffuse_red"},
	{"green", "g", "diffuse_green"},
	{"blue", "b", "diffuse_blue"},
	{"alpha", "a", "diffuse_alpha"},
}

var indexNames = []string{"vertex_indices", "vertex_index"}

// componentName matches the per-component property names written for N-D attributes
var componentName = regexp.MustCompile(`^(.+)_(\d+)$`)

// Assemble interprets decoded element data as a mesh or point cloud. The complete raw
// data is stored in the result's metadata under mesh.MetadataPLYRaw.
func Assemble(raw *Raw) (mesh.Geometry, error) {
	vertexData := raw.Element("vertex")
	if vertexData == nil {
		pc := mesh.NewPointCloud(nil)
		pc.Metadata[mesh.MetadataPLYRaw] = raw
		return pc, nil
	}

	vertices, err := assemblePositions(vertexData)
	if err != nil {
		return nil, err
	}
	vertexClaimed := map[string]bool{"x": true, "y": true, "z": true}
	// color channels stay attributes unless they become the visual
	colorClaimed := make(map[string]bool)
	vertexColors, ok := assembleColors(vertexData, colorClaimed)

	var indexColumn *Column
	faceData := raw.Element("face")
	if faceData != nil && faceData.Element.Count > 0 {
		indexColumn = findIndexColumn(faceData)
	}

	if indexColumn == nil {
		pc := mesh.NewPointCloud(vertices)
		if ok {
			pc.Visual = mesh.NewVertexVisual(vertexColors)
			maps.Copy(vertexClaimed, colorClaimed)
		}
		pc.VertexAttributes = collectAttributes(vertexData, vertexClaimed)
		pc.Metadata[mesh.MetadataPLYRaw] = raw
		return pc, nil
	}

	faces, source, err := triangulate(indexColumn, len(vertices))
	if err != nil {
		return nil, err
	}

	m := mesh.NewMesh(vertices, faces)
	faceClaimed := map[string]bool{indexColumn.Property.Name: true}
	if faceColors, found := assembleColors(faceData, faceClaimed); found {
		colors := make([]mesh.RGBA, len(source))
		for i, row := range source {
			colors[i] = faceColors[row]
		}
		m.Visual = mesh.NewFaceVisual(colors)
	} else if ok {
		m.Visual = mesh.NewVertexVisual(vertexColors)
		maps.Copy(vertexClaimed, colorClaimed)
	}

	m.VertexAttributes = collectAttributes(vertexData, vertexClaimed)
	for name, attr := range collectAttributes(faceData, faceClaimed) {
		m.FaceAttributes[name] = expandRows(attr, source)
	}
	m.Metadata[mesh.MetadataPLYRaw] = raw
	return m, nil
}

// assemblePositions reads x, y and z from the vertex element
func assemblePositions(vertexData *ElementData) ([]vec3.T, error) {
	var axes [3]*Column
	for i, name := range []string{"x", "y", "z"} {
		col := vertexData.Column(name)
		if col == nil {
			return nil, &SchemaMismatchError{Element: "vertex", Property: name, Reason: "missing position property"}
		}
		if col.Property.IsList() {
			return nil, &SchemaMismatchError{Element: "vertex", Property: name, Reason: "position property must be scalar"}
		}
		axes[i] = col
	}

	vertices := make([]vec3.T, vertexData.Element.Count)
	for i := range vertices {
		vertices[i] = vec3.T{axes[0].Values[i], axes[1].Values[i], axes[2].Values[i]}
	}
	return vertices, nil
}

// findColorColumns returns the color channel columns of an element. Alpha is optional.
func findColorColumns(ed *ElementData) ([4]*Column, bool) {
	var channels [4]*Column
	for i, names := range colorNames {
		for _, name := range names {
			if col := ed.Column(name); col != nil && !col.Property.IsList() {
				channels[i] = col
				break
			}
		}
	}
	return channels, channels[0] != nil && channels[1] != nil && channels[2] != nil
}

// assembleColors converts the color channels of an element to RGBA and marks them claimed
func assembleColors(ed *ElementData, claimed map[string]bool) ([]mesh.RGBA, bool) {
	channels, ok := findColorColumns(ed)
	if !ok {
		return nil, false
	}

	colors := make([]mesh.RGBA, ed.Element.Count)
	for c, col := range channels {
		if col == nil {
			for i := range colors {
				colors[i][c] = 255
			}
			continue
		}
		claimed[col.Property.Name] = true
		for i := range colors {
			colors[i][c] = colorByte(col.Values[i], col.Property.Type)
		}
	}
	return colors, true
}

// colorByte normalizes a channel value to 0-255. Float channels are taken as 0-1.
func colorByte(v float64, k Kind) uint8 {
	if k.IsFloat() {
		v *= 255
	}
	v = math.Round(v)
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func findIndexColumn(faceData *ElementData) *Column {
	for _, name := range indexNames {
		if col := faceData.Column(name); col != nil && col.Property.IsList() {
			return col
		}
	}
	return nil
}

// triangulate fans every index row from its first vertex and returns the triangles
// together with the face row each triangle came from. Rows with fewer than three
// indices produce nothing. Non-convex and non-planar polygons are not detected.
func triangulate(col *Column, vertexCount int) ([]mesh.Triangle, []int, error) {
	rows := col.Rows()
	triangles := make([]mesh.Triangle, 0, rows)
	source := make([]int, 0, rows)

	for row := 0; row < rows; row++ {
		indices := col.Row(row)
		for _, v := range indices {
			if v < 0 || v >= float64(vertexCount) {
				return nil, nil, &SchemaMismatchError{
					Element:  "face",
					Property: col.Property.Name,
					Reason:   fmt.Sprintf("row %d references vertex %v, only %d vertices", row, v, vertexCount),
				}
			}
		}
		for k := 1; k+1 < len(indices); k++ {
			triangles = append(triangles, mesh.Triangle{uint32(indices[0]), uint32(indices[k]), uint32(indices[k+1])})
			source = append(source, row)
		}
	}
	return triangles, source, nil
}

// collectAttributes turns every unclaimed property of an element into an attribute.
// Adjacent scalars named name_0 .. name_N-1 become one N-component attribute.
func collectAttributes(ed *ElementData, claimed map[string]bool) mesh.Attributes {
	attrs := make(mesh.Attributes)
	props := ed.Element.Properties

	for i := 0; i < len(props); i++ {
		col := ed.Columns[i]
		name := props[i].Name
		if claimed[name] {
			continue
		}

		if base, n := componentRun(ed, i, claimed); n >= 2 {
			if _, taken := attrs[base]; !taken && ed.Element.Property(base) < 0 {
				attrs[base] = interleave(ed.Columns[i : i+n])
				i += n - 1
				continue
			}
		}

		switch {
		case col.IsRagged():
			rows := make([][]float64, len(col.Ragged))
			for r, row := range col.Ragged {
				rows[r] = slices.Clone(row)
			}
			attrs[name] = mesh.NewRaggedAttribute(rows)
		default:
			attrs[name] = mesh.Attribute{Width: col.Width, Values: slices.Clone(col.Values)}
		}
	}
	return attrs
}

// componentRun returns the base name and length of the run of scalar properties
// base_0, base_1, ... starting at index i
func componentRun(ed *ElementData, i int, claimed map[string]bool) (string, int) {
	props := ed.Element.Properties
	match := componentName.FindStringSubmatch(props[i].Name)
	if match == nil || match[2] != "0" || props[i].IsList() {
		return "", 0
	}
	base := match[1]

	n := 0
	for j := i; j < len(props); j++ {
		p := props[j]
		if p.IsList() || claimed[p.Name] || p.Name != base+"_"+strconv.Itoa(n) {
			break
		}
		n++
	}
	return base, n
}

// interleave packs scalar columns into one row-major attribute
func interleave(cols []*Column) mesh.Attribute {
	width := len(cols)
	rows := cols[0].Rows()
	values := make([]float64, rows*width)
	for c, col := range cols {
		for r := 0; r < rows; r++ {
			values[r*width+c] = col.Values[r]
		}
	}
	return mesh.Attribute{Width: width, Values: values}
}

// expandRows repeats each face row for every triangle produced from it
func expandRows(attr mesh.Attribute, source []int) mesh.Attribute {
	if attr.IsRagged() {
		rows := make([][]float64, len(source))
		for i, row := range source {
			rows[i] = slices.Clone(attr.Ragged[row])
		}
		return mesh.NewRaggedAttribute(rows)
	}
	values := make([]float64, 0, len(source)*attr.Width)
	for _, row := range source {
		values = append(values, attr.Row(row)...)
	}
	return mesh.Attribute{Width: attr.Width, Values: values}
}
