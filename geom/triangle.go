package geom

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// Triangle is a CCW vertex triple. Normal, tangent and bitangent are derived
// from vertex data rather than stored, mirroring the original aitios-sim
// TupleTriangle<Vertex> which carries only the three vertices.
type Triangle struct {
	A, B, C Vertex
}

// Normal returns the geometric (face) normal, independent of the shading
// normals carried by the vertices.
func (t Triangle) Normal() Vec3 {
	e1 := t.B.Position.Sub(t.A.Position)
	e2 := t.C.Position.Sub(t.A.Position)
	return e1.Cross(e2).Normalize()
}

// Tangent returns the UV-space tangent vector, orthonormalized against the
// face normal so TangentToWorld produces an orthogonal basis.
func (t Triangle) Tangent() Vec3 {
	tangent, _ := t.tangentBitangent()
	return tangent
}

// Bitangent returns the UV-space bitangent, derived as Normal x Tangent so
// the (tangent, bitangent, normal) frame stays right-handed.
func (t Triangle) Bitangent() Vec3 {
	_, bitangent := t.tangentBitangent()
	return bitangent
}

func (t Triangle) tangentBitangent() (tangent, bitangent Vec3) {
	normal := t.Normal()

	e1 := t.B.Position.Sub(t.A.Position)
	e2 := t.C.Position.Sub(t.A.Position)
	duv1 := t.B.UV.Sub(t.A.UV)
	duv2 := t.C.UV.Sub(t.A.UV)

	det := duv1.X()*duv2.Y() - duv2.X()*duv1.Y()
	if math.Abs(float64(det)) < 1e-8 {
		// Degenerate UVs: fall back to an arbitrary basis perpendicular to
		// the normal rather than dividing by (near) zero.
		tangent = arbitraryPerpendicular(normal)
	} else {
		f := 1.0 / det
		tangent = e1.Mul(duv2.Y() * f).Sub(e2.Mul(duv1.Y() * f))
	}

	// Gram-Schmidt against the normal, then re-derive the bitangent so the
	// basis is orthogonal regardless of UV shear.
	tangent = tangent.Sub(normal.Mul(tangent.Dot(normal)))
	if tangent.LenSqr() < 1e-12 {
		tangent = arbitraryPerpendicular(normal)
	} else {
		tangent = tangent.Normalize()
	}
	bitangent = normal.Cross(tangent)
	return tangent, bitangent
}

func arbitraryPerpendicular(n Vec3) Vec3 {
	up := Vec3{0, 1, 0}
	if math.Abs(float64(n.Dot(up))) > 0.99 {
		up = Vec3{1, 0, 0}
	}
	return up.Cross(n).Normalize()
}

// TangentToWorld returns the matrix mapping a tangent-space vector (x, y as
// the in-plane axes, z as the along-normal axis) to world space, matching
// the basis original_source/src/tracer.rs samples hemisphere directions
// into via tangent_to_world_matrix().
func (t Triangle) TangentToWorld() mgl32.Mat3 {
	tangent, bitangent := t.tangentBitangent()
	normal := t.Normal()
	// mgl32.Mat3 is column-major, so this literal lays out [tangent |
	// bitangent | normal] as the three columns -- the same construction
	// style physics.go's QuatToMat3 uses for its rotation matrix.
	return mgl32.Mat3{
		tangent.X(), tangent.Y(), tangent.Z(),
		bitangent.X(), bitangent.Y(), bitangent.Z(),
		normal.X(), normal.Y(), normal.Z(),
	}
}

// Centroid returns the arithmetic mean of the three vertex positions.
func (t Triangle) Centroid() Vec3 {
	return t.A.Position.Add(t.B.Position).Add(t.C.Position).Mul(1.0 / 3.0)
}

// Area returns the triangle's surface area.
func (t Triangle) Area() float32 {
	e1 := t.B.Position.Sub(t.A.Position)
	e2 := t.C.Position.Sub(t.A.Position)
	return 0.5 * e1.Cross(e2).Len()
}

// InterpolateAt blends the three vertices by barycentric weights (u, v, w)
// with u+v+w == 1, u/v/w each weighting A/B/C respectively.
func (t Triangle) InterpolateAt(bary Vec3) Vertex {
	u, v, w := bary.X(), bary.Y(), bary.Z()
	return Vertex{
		Position: t.A.Position.Mul(u).Add(t.B.Position.Mul(v)).Add(t.C.Position.Mul(w)),
		Normal:   t.A.Normal.Mul(u).Add(t.B.Normal.Mul(v)).Add(t.C.Normal.Mul(w)),
		UV:       t.A.UV.Mul(u).Add(t.B.UV.Mul(v)).Add(t.C.UV.Mul(w)),
	}
}

// UniformBarycentric draws barycentric coordinates uniformly over the
// triangle's area (Osada et al.'s sqrt-based parameterization).
func (t Triangle) UniformBarycentric(rng *rand.Rand) Vec3 {
	r1 := float32(math.Sqrt(float64(rng.Float32())))
	r2 := rng.Float32()
	u := 1 - r1
	v := r2 * r1
	w := 1 - u - v
	return Vec3{u, v, w}
}

// ProjectOntoTangentialPlane projects a world-space direction onto the
// triangle's tangent plane (removing the component along Normal). Returns
// ok=false when the result is (near) zero, e.g. when v is parallel to the
// normal, matching original_source/src/sim.rs's fallback-to-random-triangle
// handling of a degenerate flow direction.
func (t Triangle) ProjectOntoTangentialPlane(v Vec3) (projected Vec3, ok bool) {
	n := t.Normal()
	proj := v.Sub(n.Mul(v.Dot(n)))
	if proj.LenSqr() < 1e-12 {
		return Vec3{}, false
	}
	return proj.Normalize(), true
}
