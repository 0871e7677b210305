// Package sampling provides the random-direction and random-triangle
// distributions the ton and tracer packages consume: uniform points on the
// unit sphere and the positive-Z hemisphere, and area-weighted triangle
// selection. Narrow on purpose, mirroring original_source/src/ton.rs's
// UnitSphere/UnitHemisphere/TriangleBins helpers.
package sampling

import (
	"math"
	"math/rand"
	"sort"

	"github.com/krachzack/aitios-sim/geom"
)

// UniformUnitSphere draws a direction uniformly distributed over the unit
// sphere, in the style of particles_ecs.go's sampleDirectionRng but without
// the cone restriction: z is uniform in (-1, 1] so surface area is sampled
// evenly.
func UniformUnitSphere(rng *rand.Rand) geom.Vec3 {
	z := 1 - 2*rng.Float32()
	r := float32(math.Sqrt(math.Max(0, float64(1-z*z))))
	phi := 2 * math.Pi * float64(rng.Float32())
	return geom.Vec3{r * float32(math.Cos(phi)), r * float32(math.Sin(phi)), z}
}

// UniformUnitHemispherePosZ draws a direction uniformly over the hemisphere
// whose pole is +Z, matching original_source's UnitHemisphere::PosZ used to
// sample straight/parabolic takeoff directions in triangle-tangent space.
func UniformUnitHemispherePosZ(rng *rand.Rand) geom.Vec3 {
	z := rng.Float32()
	r := float32(math.Sqrt(math.Max(0, float64(1-z*z))))
	phi := 2 * math.Pi * float64(rng.Float32())
	return geom.Vec3{r * float32(math.Cos(phi)), r * float32(math.Sin(phi)), z}
}

// TriangleBins selects triangles with probability proportional to their
// surface area, via a cumulative-weight binary search -- the Go analogue of
// original_source/src/ton.rs's TriangleBins::sample.
type TriangleBins struct {
	triangles  []geom.Triangle
	cumulative []float32
	totalArea  float32
}

// NewTriangleBins builds the cumulative-area table once up front; Sample is
// then O(log n) per draw.
func NewTriangleBins(triangles []geom.Triangle) *TriangleBins {
	bins := &TriangleBins{
		triangles:  triangles,
		cumulative: make([]float32, len(triangles)),
	}
	var acc float32
	for i, tri := range triangles {
		acc += tri.Area()
		bins.cumulative[i] = acc
	}
	bins.totalArea = acc
	return bins
}

// Sample draws a triangle with probability proportional to its area. Panics
// if the bins were built from an empty triangle slice -- a construction-time
// programmer error, not a runtime anomaly.
func (b *TriangleBins) Sample(rng *rand.Rand) geom.Triangle {
	if len(b.triangles) == 0 {
		panic("sampling: TriangleBins.Sample called with no triangles")
	}
	if b.totalArea <= 0 {
		return b.triangles[rng.Intn(len(b.triangles))]
	}
	target := rng.Float32() * b.totalArea
	idx := sort.Search(len(b.cumulative), func(i int) bool {
		return b.cumulative[i] >= target
	})
	if idx >= len(b.triangles) {
		idx = len(b.triangles) - 1
	}
	return b.triangles[idx]
}

// Len reports the number of triangles backing the bins.
func (b *TriangleBins) Len() int { return len(b.triangles) }
