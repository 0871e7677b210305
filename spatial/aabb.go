package spatial

import (
	"math"

	"github.com/krachzack/aitios-sim/geom"
)

// AABB is an axis-aligned bounding box, min/max inclusive.
type AABB struct {
	Min, Max geom.Vec3
}

func emptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: geom.Vec3{inf, inf, inf},
		Max: geom.Vec3{-inf, -inf, -inf},
	}
}

func (b AABB) extend(p geom.Vec3) AABB {
	return AABB{
		Min: geom.Vec3{min32(b.Min.X(), p.X()), min32(b.Min.Y(), p.Y()), min32(b.Min.Z(), p.Z())},
		Max: geom.Vec3{max32(b.Max.X(), p.X()), max32(b.Max.Y(), p.Y()), max32(b.Max.Z(), p.Z())},
	}
}

func (b AABB) union(o AABB) AABB {
	return AABB{
		Min: geom.Vec3{min32(b.Min.X(), o.Min.X()), min32(b.Min.Y(), o.Min.Y()), min32(b.Min.Z(), o.Min.Z())},
		Max: geom.Vec3{max32(b.Max.X(), o.Max.X()), max32(b.Max.Y(), o.Max.Y()), max32(b.Max.Z(), o.Max.Z())},
	}
}

func (b AABB) Center() geom.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// IsPointInside reports whether p lies within the box, inclusive of the
// boundary. Used by tracer.TraceParabolic to detect when a falling gammaton
// has left the scene bounds (with the +Y face opened to +Inf, per
// original_source/src/tracer.rs's trace_parabolic).
func (b AABB) IsPointInside(p geom.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

// WithOpenTop returns a copy of the box with its +Y face pushed to +Inf,
// matching trace_parabolic's "bounds.max.y = INFINITY" scene-bounds widening
// so a gammaton arcing upward is never considered out-of-bounds.
func (b AABB) WithOpenTop() AABB {
	b.Max[1] = float32(math.Inf(1))
	return b
}

// intersectsRay performs a slab test, returning the entry distance along the
// ray when it intersects (entry may be negative if the origin is inside).
func (b AABB) intersectsRay(from, dir geom.Vec3) (tmin float32, ok bool) {
	tMin := float32(math.Inf(-1))
	tMax := float32(math.Inf(1))

	for axis := 0; axis < 3; axis++ {
		o, d := from[axis], dir[axis]
		lo, hi := b.Min[axis], b.Max[axis]
		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		inv := 1 / d
		t1 := (lo - o) * inv
		t2 := (hi - o) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, false
		}
	}
	if tMax < 0 {
		return 0, false
	}
	return tMin, true
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
