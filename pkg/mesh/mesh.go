// Package mesh holds the in-memory mesh and point cloud representation produced and
// consumed by the PLY codec.
package mesh

import (
	"fmt"

	"github.com/ungerik/go3d/float64/vec3"
)

// MetadataPLYRaw is the metadata key under which the PLY decoder stores the complete
// raw element data of the source file
const MetadataPLYRaw = "ply_raw"

// Metadata is an opaque store carried alongside a geometry
type Metadata map[string]any

// Triangle is three vertex indices
type Triangle [3]uint32

// Geometry is either a *Mesh or a *PointCloud
type Geometry interface {
	// Common returns the vertex data shared by meshes and point clouds
	Common() *Base
	isGeometry()
}

// Base is the vertex data shared by meshes and point clouds
type Base struct {
	Vertices         []vec3.T
	VertexAttributes Attributes
	Visual           Visual
	Metadata         Metadata
}

func (b *Base) Common() *Base { return b }

func (b *Base) isGeometry() {}

// SetVertexColor assigns one color to every vertex
func (b *Base) SetVertexColor(c RGBA) {
	b.Visual = NewVertexVisual(uniformColors(len(b.Vertices), c))
}

// Bounds returns the bounding box of the vertices
func (b *Base) Bounds() Bounds {
	return NewBoundsFromPoints(b.Vertices...)
}

// PointCloud is a set of vertices without faces
type PointCloud struct {
	Base
}

// NewPointCloud creates a point cloud from vertex positions
func NewPointCloud(vertices []vec3.T) *PointCloud {
	return &PointCloud{Base: Base{
		Vertices:         vertices,
		VertexAttributes: make(Attributes),
		Metadata:         make(Metadata),
	}}
}

// Mesh is a triangle mesh
type Mesh struct {
	Base
	Faces          []Triangle
	FaceAttributes Attributes
}

// NewMesh creates a mesh from vertex positions and triangles
func NewMesh(vertices []vec3.T, faces []Triangle) *Mesh {
	return &Mesh{
		Base: Base{
			Vertices:         vertices,
			VertexAttributes: make(Attributes),
			Metadata:         make(Metadata),
		},
		Faces:          faces,
		FaceAttributes: make(Attributes),
	}
}

// SetFaceColor assigns one color to every face
func (m *Mesh) SetFaceColor(c RGBA) {
	m.Visual = NewFaceVisual(uniformColors(len(m.Faces), c))
}

// Validate checks that faces reference existing vertices and that colors and
// attributes are aligned with their element
func (m *Mesh) Validate() error {
	n := uint32(len(m.Vertices))
	for i, f := range m.Faces {
		if f[0] >= n || f[1] >= n || f[2] >= n {
			return fmt.Errorf("face %d references vertex outside [0, %d)", i, n)
		}
	}
	if err := m.Base.validate(); err != nil {
		return err
	}
	if m.Visual.Kind == VisualFace && len(m.Visual.Colors) != len(m.Faces) {
		return fmt.Errorf("face colors: expected %d, got %d", len(m.Faces), len(m.Visual.Colors))
	}
	return m.FaceAttributes.validate("face", len(m.Faces))
}

// Validate checks that colors and attributes are aligned with the vertices
func (p *PointCloud) Validate() error {
	if p.Visual.Kind == VisualFace {
		return fmt.Errorf("point cloud cannot carry face colors")
	}
	return p.Base.validate()
}

func (b *Base) validate() error {
	if b.Visual.Kind == VisualVertex && len(b.Visual.Colors) != len(b.Vertices) {
		return fmt.Errorf("vertex colors: expected %d, got %d", len(b.Vertices), len(b.Visual.Colors))
	}
	return b.VertexAttributes.validate("vertex", len(b.Vertices))
}

// Validate dispatches to the concrete geometry's validation
func Validate(g Geometry) error {
	switch g := g.(type) {
	case *Mesh:
		return g.Validate()
	case *PointCloud:
		return g.Validate()
	default:
		return fmt.Errorf("unsupported geometry %T", g)
	}
}
