package mesh

import "github.com/ungerik/go3d/float64/vec3"

// Bounds represents an axis-aligned bounding box
type Bounds struct {
	Min vec3.T // Minimum corner
	Max vec3.T // Maximum corner
}

// NewBoundsFromPoints creates a box that bounds all given points
func NewBoundsFromPoints(points ...vec3.T) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}

	min := points[0]
	max := points[0]

	for i := range points[1:] {
		point := &points[i+1]
		min = vec3.Min(&min, point)
		max = vec3.Max(&max, point)
	}

	return Bounds{Min: min, Max: max}
}

// Size returns the extent of the box along each axis
func (b Bounds) Size() vec3.T {
	return vec3.Sub(&b.Max, &b.Min)
}

// Center returns the center point of the box
func (b Bounds) Center() vec3.T {
	sum := vec3.Add(&b.Min, &b.Max)
	return vec3.T{sum[0] * 0.5, sum[1] * 0.5, sum[2] * 0.5}
}
