package spatial

import (
	"math"

	"github.com/krachzack/aitios-sim/geom"
)

// leafThreshold and maxDepth bound recursion the same way
// voxelrt/rt/bvh/builder.go's TLASBuilder stops subdividing once a node's
// item count is small enough that further splitting doesn't pay for
// itself -- adapted here from a binary longest-axis BVH split to an 8-way
// spatial octree over triangles.
const (
	leafThreshold = 8
	maxDepth      = 24
)

type octreeNode struct {
	bounds   AABB
	indexes  []int // triangle indexes, populated only on leaves
	children [8]*octreeNode
	leaf     bool
}

// Octree is a fixed, immutable spatial index over a triangle set, built once
// at construction and queried many times by the tracer -- the same
// build-once/query-many shape as voxelrt/rt/bvh's TLASBuilder, generalized
// from AABB-wrapped scene objects to bare triangles.
type Octree struct {
	triangles []geom.Triangle
	root      *octreeNode
	bounds    AABB
}

// NewOctree builds an octree over the given triangles. The slice is kept by
// reference (not copied) so Tracer.Triangle can resolve a Hit's triangle
// index back against the same backing array.
func NewOctree(triangles []geom.Triangle) *Octree {
	bounds := emptyAABB()
	indexes := make([]int, len(triangles))
	centroids := make([]geom.Vec3, len(triangles))
	for i, tri := range triangles {
		indexes[i] = i
		centroids[i] = tri.Centroid()
		bounds = bounds.extend(tri.A.Position).extend(tri.B.Position).extend(tri.C.Position)
	}

	o := &Octree{triangles: triangles, bounds: bounds}
	o.root = o.build(bounds, indexes, centroids, 0)
	return o
}

func (o *Octree) build(bounds AABB, indexes []int, centroids []geom.Vec3, depth int) *octreeNode {
	node := &octreeNode{bounds: bounds}
	if len(indexes) <= leafThreshold || depth >= maxDepth {
		node.leaf = true
		node.indexes = indexes
		return node
	}

	center := bounds.Center()
	var octants [8][]int
	for _, idx := range indexes {
		octants[octantOf(centroids[idx], center)] = append(octants[octantOf(centroids[idx], center)], idx)
	}

	// If every triangle centroid fell into the same octant (degenerate /
	// coplanar input), splitting would not divide the set; stop here.
	nonEmpty := 0
	for _, oct := range octants {
		if len(oct) > 0 {
			nonEmpty++
		}
	}
	if nonEmpty <= 1 {
		node.leaf = true
		node.indexes = indexes
		return node
	}

	for i, oct := range octants {
		if len(oct) == 0 {
			continue
		}
		childBounds := octantBounds(bounds, center, i)
		// A triangle is filed under its centroid's octant but can reach past
		// that octant's box; grow the child's bounds to enclose every vertex
		// so queryNode's bounds test never culls a triangle it holds.
		for _, idx := range oct {
			tri := o.triangles[idx]
			childBounds = childBounds.extend(tri.A.Position).extend(tri.B.Position).extend(tri.C.Position)
		}
		node.children[i] = o.build(childBounds, oct, centroids, depth+1)
	}
	return node
}

func octantOf(p, center geom.Vec3) int {
	idx := 0
	if p.X() >= center.X() {
		idx |= 1
	}
	if p.Y() >= center.Y() {
		idx |= 2
	}
	if p.Z() >= center.Z() {
		idx |= 4
	}
	return idx
}

func octantBounds(parent AABB, center geom.Vec3, octant int) AABB {
	b := AABB{Min: parent.Min, Max: parent.Max}
	if octant&1 != 0 {
		b.Min[0] = center.X()
	} else {
		b.Max[0] = center.X()
	}
	if octant&2 != 0 {
		b.Min[1] = center.Y()
	} else {
		b.Max[1] = center.Y()
	}
	if octant&4 != 0 {
		b.Min[2] = center.Z()
	} else {
		b.Max[2] = center.Z()
	}
	return b
}

// Bounds returns the scene-wide bounding box used to seed
// AABB.WithOpenTop for ballistic out-of-bounds detection.
func (o *Octree) Bounds() AABB {
	return o.bounds
}

// Triangle resolves a triangle index against the backing slice.
func (o *Octree) Triangle(idx int) *geom.Triangle {
	return &o.triangles[idx]
}

// RayIntersection finds the closest triangle hit by the unbounded ray
// (from, dir), requiring t > minT (the caller's self-intersection epsilon).
func (o *Octree) RayIntersection(from, dir geom.Vec3, minT float32) (triIdx int, t float32, ok bool) {
	return o.query(from, dir, minT, float32(math.Inf(1)))
}

// LineSegmentIntersection finds the closest triangle hit within
// (minT, maxT] along (from, dir); dir need not be normalized, maxT is in
// units of dir's length.
func (o *Octree) LineSegmentIntersection(from, dir geom.Vec3, minT, maxT float32) (triIdx int, t float32, ok bool) {
	return o.query(from, dir, minT, maxT)
}

func (o *Octree) query(from, dir geom.Vec3, minT, maxT float32) (bestIdx int, bestT float32, ok bool) {
	bestIdx = -1
	bestT = float32(math.Inf(1))
	o.queryNode(o.root, from, dir, minT, maxT, &bestIdx, &bestT)
	return bestIdx, bestT, bestIdx >= 0
}

func (o *Octree) queryNode(n *octreeNode, from, dir geom.Vec3, minT, maxT float32, bestIdx *int, bestT *float32) {
	if n == nil {
		return
	}
	if _, hit := n.bounds.intersectsRay(from, dir); !hit {
		return
	}
	if n.leaf {
		for _, idx := range n.indexes {
			tri := o.triangles[idx]
			if t, hit := rayTriangle(from, dir, tri); hit && t > minT && t <= maxT && t < *bestT {
				*bestT = t
				*bestIdx = idx
			}
		}
		return
	}
	for _, child := range n.children {
		o.queryNode(child, from, dir, minT, maxT, bestIdx, bestT)
	}
}

// rayTriangle is the Moller-Trumbore ray/triangle intersection test.
func rayTriangle(from, dir geom.Vec3, tri geom.Triangle) (t float32, ok bool) {
	const epsilon = 1e-7

	e1 := tri.B.Position.Sub(tri.A.Position)
	e2 := tri.C.Position.Sub(tri.A.Position)
	pvec := dir.Cross(e2)
	det := e1.Dot(pvec)
	if det > -epsilon && det < epsilon {
		return 0, false
	}
	invDet := 1 / det

	tvec := from.Sub(tri.A.Position)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	qvec := tvec.Cross(e1)
	v := dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = e2.Dot(qvec) * invDet
	return t, true
}
