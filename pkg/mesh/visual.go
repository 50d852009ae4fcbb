package mesh

// VisualKind is the element granularity that carries color
type VisualKind int

const (
	VisualNone VisualKind = iota
	VisualVertex
	VisualFace
)

func (k VisualKind) String() string {
	switch k {
	case VisualVertex:
		return "vertex"
	case VisualFace:
		return "face"
	default:
		return "none"
	}
}

// RGBA is an 8-bit per channel color
type RGBA [4]uint8

// Visual is the color of a geometry, aligned with vertices or faces
type Visual struct {
	Kind   VisualKind
	Colors []RGBA
}

// NewVertexVisual creates a visual with one color per vertex
func NewVertexVisual(colors []RGBA) Visual {
	return Visual{Kind: VisualVertex, Colors: colors}
}

// NewFaceVisual creates a visual with one color per face
func NewFaceVisual(colors []RGBA) Visual {
	return Visual{Kind: VisualFace, Colors: colors}
}

func uniformColors(n int, c RGBA) []RGBA {
	colors := make([]RGBA, n)
	for i := range colors {
		colors[i] = c
	}
	return colors
}
