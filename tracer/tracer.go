// Package tracer implements the three closest-hit queries the simulation
// steps gammatons with: straight rays, gravity-integrated ballistic
// segments, and a three-segment tangential "flow" probe. Grounded
// line-for-line on original_source/src/tracer.rs.
package tracer

import (
	"math"

	"github.com/krachzack/aitios-sim/geom"
	"github.com/krachzack/aitios-sim/spatial"
)

const (
	// SelfIntersectionEpsilon nudges a trace's origin forward along its
	// direction before testing intersections, so a ray cast from a
	// triangle's own surface doesn't immediately re-hit it.
	SelfIntersectionEpsilon = 1e-4

	// FlowAdhesiveness extends the tangential/downward flow segment
	// slightly past its expected length, tolerating a small uphill
	// continuation before the probe gives up.
	FlowAdhesiveness = 1.1

	gravityAccel  = 9.81
	parabolaDt    = 1.0 / 60.0
)

// Hit is a single ray/segment-triangle intersection: where it happened,
// the direction the gammaton was travelling, and the index of the
// triangle it struck (not a pointer, per the borrowed-reference note in
// spec.md §9 -- resolve through Tracer.Triangle).
type Hit struct {
	IntersectionPoint geom.Vec3
	IncomingDirection geom.Vec3
	TriangleIndex     int
}

// EventRecorder is an optional hook Tracer calls after every segment test,
// hit or miss, for visual debugging of ray paths. Supplements
// original_source/src/tracer.rs's #[cfg(feature = "debug_tracing")]
// OBJ/MTL dumper as a runtime-injectable interface instead of a compile-time
// flag, in the style of voxel_debug_and_raycast.go's DrawDebugRay hook.
type EventRecorder interface {
	RecordSegment(kind string, from, to geom.Vec3, hit bool)
}

type noopRecorder struct{}

func (noopRecorder) RecordSegment(string, geom.Vec3, geom.Vec3, bool) {}

// Tracer wraps a fixed triangle set in a spatial octree and answers
// closest-hit queries against it. Immutable after construction, per
// spec.md §3's lifecycle note.
type Tracer struct {
	octree           *spatial.Octree
	gravityDirection geom.Vec3
	recorder         EventRecorder
}

// New builds a Tracer over the given triangles. gravityDirection defaults
// to (0, -1, 0) when the zero vector is passed.
func New(triangles []geom.Triangle, gravityDirection geom.Vec3) *Tracer {
	if gravityDirection == (geom.Vec3{}) {
		gravityDirection = geom.Vec3{0, -1, 0}
	}
	return &Tracer{
		octree:           spatial.NewOctree(triangles),
		gravityDirection: gravityDirection,
		recorder:         noopRecorder{},
	}
}

// SetEventRecorder installs a debug recorder; passing nil restores the
// no-op default.
func (t *Tracer) SetEventRecorder(r EventRecorder) {
	if r == nil {
		r = noopRecorder{}
	}
	t.recorder = r
}

// Triangle resolves a Hit's TriangleIndex back to the backing triangle.
func (t *Tracer) Triangle(idx int) *geom.Triangle {
	return t.octree.Triangle(idx)
}

// Bounds returns the scene's bounding box.
func (t *Tracer) Bounds() spatial.AABB {
	return t.octree.Bounds()
}

func (t *Tracer) toHit(from, dir geom.Vec3, triIdx int, distance float32) Hit {
	return Hit{
		IntersectionPoint: from.Add(dir.Mul(distance)),
		IncomingDirection: dir,
		TriangleIndex:     triIdx,
	}
}

// TraceStraight casts an unbounded ray from a self-intersection-biased
// origin and returns the closest triangle it hits, if any.
func (t *Tracer) TraceStraight(from, direction geom.Vec3) (Hit, bool) {
	dir := direction.Normalize()
	origin := from.Add(dir.Mul(1e-7))

	idx, dist, ok := t.octree.RayIntersection(origin, dir, 0)
	t.recorder.RecordSegment("straight", origin, origin.Add(dir.Mul(maxFinite(dist, 1))), ok)
	if !ok {
		return Hit{}, false
	}
	return t.toHit(origin, dir, idx, dist), true
}

// TraceParabolic integrates a ballistic arc under constant gravity via
// semi-implicit Euler, testing each timestep's displacement segment for an
// intersection, and gives up once the current position leaves the scene's
// bounds (opened upward to +Inf, so ascending arcs are never considered
// out of bounds).
func (t *Tracer) TraceParabolic(from, direction geom.Vec3, upwardParabolaHeight float32) (Hit, bool) {
	bounds := t.octree.Bounds().WithOpenTop()

	dir := direction.Normalize()
	v0 := float32(math.Sqrt(2 * gravityAccel * float64(upwardParabolaHeight)))
	v := dir.Mul(v0)
	p := from.Add(dir.Mul(SelfIntersectionEpsilon))

	gravity := t.gravityDirection.Mul(gravityAccel * parabolaDt)

	for bounds.IsPointInside(p) {
		v = v.Add(gravity)
		delta := v.Mul(parabolaDt)
		length := delta.Len()
		if length == 0 {
			break
		}
		segDir := delta.Mul(1 / length)

		idx, dist, ok := t.octree.LineSegmentIntersection(p, segDir, 0, length)
		t.recorder.RecordSegment("parabolic", p, p.Add(delta), ok)
		if ok {
			return t.toHit(p, segDir, idx, dist), true
		}
		p = p.Add(delta)
	}
	return Hit{}, false
}

// TraceFlow probes a droplet hugging the surface with three segments: an
// upward nudge (catching concave pockets), a tangential/downward glide,
// and an unbounded gravity-direction fallback ray.
func (t *Tracer) TraceFlow(from, up, tangentialDirection geom.Vec3, flowDistance float32) (Hit, bool) {
	upN := up.Normalize()
	origin := from.Add(upN.Mul(SelfIntersectionEpsilon))
	upwardEpsilon := 1.3 * flowDistance

	if idx, dist, ok := t.octree.LineSegmentIntersection(origin, upN, 0, upwardEpsilon); ok {
		t.recorder.RecordSegment("flow-up", origin, origin.Add(upN.Mul(upwardEpsilon)), true)
		return t.toHit(origin, upN, idx, dist), true
	}
	t.recorder.RecordSegment("flow-up", origin, origin.Add(upN.Mul(upwardEpsilon)), false)

	atop := origin.Add(upN.Mul(upwardEpsilon))
	to := origin.Add(tangentialDirection.Mul(flowDistance))
	glideDelta := to.Sub(atop)
	glideLen := glideDelta.Len()
	var glideDir geom.Vec3
	if glideLen > 0 {
		glideDir = glideDelta.Mul(1 / glideLen)
	} else {
		glideDir = tangentialDirection.Normalize()
	}
	expected := float32(math.Sqrt(float64(upwardEpsilon*upwardEpsilon) + float64(flowDistance*flowDistance)))
	glideTestLen := expected + FlowAdhesiveness

	if idx, dist, ok := t.octree.LineSegmentIntersection(atop, glideDir, 0, glideTestLen); ok {
		t.recorder.RecordSegment("flow-glide", atop, atop.Add(glideDir.Mul(glideTestLen)), true)
		return t.toHit(atop, glideDir, idx, dist), true
	}
	t.recorder.RecordSegment("flow-glide", atop, atop.Add(glideDir.Mul(glideTestLen)), false)

	fallFrom := atop.Add(glideDir.Mul(glideTestLen))
	gravDir := t.gravityDirection.Normalize()
	idx, dist, ok := t.octree.RayIntersection(fallFrom, gravDir, 0)
	t.recorder.RecordSegment("flow-fall", fallFrom, fallFrom.Add(gravDir.Mul(maxFinite(dist, 1))), ok)
	if !ok {
		return Hit{}, false
	}
	return t.toHit(fallFrom, gravDir, idx, dist), true
}

func maxFinite(v, fallback float32) float32 {
	if math.IsInf(float64(v), 0) || math.IsNaN(float64(v)) {
		return fallback
	}
	return v
}
