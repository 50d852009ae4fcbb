package loaders

import (
	"fmt"
	"io"
	"strings"

	"github.com/df07/go-plymesh/pkg/mesh"
	"github.com/df07/go-plymesh/pkg/ply"
)

// ElementSummary describes one element of the source file
type ElementSummary struct {
	Name       string   `json:"name"`
	Count      int      `json:"count"`
	Properties []string `json:"properties"`
}

// BoundsSummary is an axis-aligned box in JSON form
type BoundsSummary struct {
	Min  [3]float64 `json:"min"`
	Max  [3]float64 `json:"max"`
	Size [3]float64 `json:"size"`
}

// Summary is a printable overview of a decoded geometry
type Summary struct {
	Type             string           `json:"type"` // "mesh" or "point_cloud"
	Format           string           `json:"format,omitempty"`
	Vertices         int              `json:"vertices"`
	Faces            int              `json:"faces"`
	Colors           string           `json:"colors"`
	Bounds           *BoundsSummary   `json:"bounds,omitempty"`
	VertexAttributes []string         `json:"vertexAttributes"`
	FaceAttributes   []string         `json:"faceAttributes"`
	Elements         []ElementSummary `json:"elements,omitempty"`
	Comments         []string         `json:"comments,omitempty"`
	ObjInfo          []string         `json:"objInfo,omitempty"`
}

// Summarize collects counts, bounds and the source element layout of g
func Summarize(g mesh.Geometry) Summary {
	base := g.Common()
	s := Summary{
		Type:             "point_cloud",
		Vertices:         len(base.Vertices),
		Colors:           base.Visual.Kind.String(),
		VertexAttributes: base.VertexAttributes.Names(),
		FaceAttributes:   []string{},
	}

	if m, ok := g.(*mesh.Mesh); ok {
		s.Type = "mesh"
		s.Faces = len(m.Faces)
		s.FaceAttributes = m.FaceAttributes.Names()
	}

	if len(base.Vertices) > 0 {
		b := base.Bounds()
		s.Bounds = &BoundsSummary{Min: b.Min, Max: b.Max, Size: b.Size()}
	}

	if raw, ok := base.Metadata[mesh.MetadataPLYRaw].(*ply.Raw); ok {
		s.Format = raw.Format.String()
		s.Comments = raw.Comments
		s.ObjInfo = raw.ObjInfo
		for _, ed := range raw.Elements {
			s.Elements = append(s.Elements, SummarizeElement(ed.Element))
		}
	}
	return s
}

// SummarizeElement lists the declarations of an element's properties
func SummarizeElement(e ply.Element) ElementSummary {
	props := make([]string, len(e.Properties))
	for i, p := range e.Properties {
		props[i] = p.Declaration()
	}
	return ElementSummary{Name: e.Name, Count: e.Count, Properties: props}
}

// Print writes the summary in a human readable layout
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Type:       %s\n", s.Type)
	if s.Format != "" {
		fmt.Fprintf(w, "Format:     %s\n", s.Format)
	}
	fmt.Fprintf(w, "Vertices:   %d\n", s.Vertices)
	if s.Type == "mesh" {
		fmt.Fprintf(w, "Triangles:  %d\n", s.Faces)
	}
	fmt.Fprintf(w, "Colors:     %s\n", s.Colors)
	if s.Bounds != nil {
		fmt.Fprintf(w, "Bounds:     %v .. %v (size %v)\n", s.Bounds.Min, s.Bounds.Max, s.Bounds.Size)
	}
	if len(s.VertexAttributes) > 0 {
		fmt.Fprintf(w, "Vertex attributes: %s\n", strings.Join(s.VertexAttributes, ", "))
	}
	if len(s.FaceAttributes) > 0 {
		fmt.Fprintf(w, "Face attributes:   %s\n", strings.Join(s.FaceAttributes, ", "))
	}
	for _, c := range s.Comments {
		fmt.Fprintf(w, "comment %s\n", c)
	}
	for _, o := range s.ObjInfo {
		fmt.Fprintf(w, "obj_info %s\n", o)
	}
	for _, e := range s.Elements {
		e.Print(w)
	}
}

// Print writes the element in header form
func (e ElementSummary) Print(w io.Writer) {
	fmt.Fprintf(w, "element %s %d\n", e.Name, e.Count)
	for _, p := range e.Properties {
		fmt.Fprintf(w, "  property %s\n", p)
	}
}
