// Package geom provides the minimal vector and triangle math the tracer,
// sampling and surfel packages build on: a narrow, internal collaborator
// exactly as wide as its call sites require, not a general-purpose geometry
// library.
package geom

import "github.com/go-gl/mathgl/mgl32"

// Vec3 is the module-wide vector type, aliased directly over mgl32's so
// every package shares one representation without wrapper conversions.
type Vec3 = mgl32.Vec3

// Vertex is a single mesh vertex: position, shading normal and UV.
type Vertex struct {
	Position Vec3
	Normal   Vec3
	UV       mgl32.Vec2
}

// Lerp interpolates two vertices component-wise.
func (v Vertex) Lerp(other Vertex, t float32) Vertex {
	return Vertex{
		Position: v.Position.Mul(1 - t).Add(other.Position.Mul(t)),
		Normal:   v.Normal.Mul(1 - t).Add(other.Normal.Mul(t)),
		UV:       v.UV.Mul(1 - t).Add(other.UV.Mul(t)),
	}
}
