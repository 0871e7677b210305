// Package surf provides dense surfel storage with sphere/nearest spatial
// queries, generic over the per-surfel payload -- the external collaborator
// spec.md §4.3 describes, generalized from mod_spatialgrid.go's
// SpatialHashGrid (which buckets entity AABBs for broadphase collision) to a
// uniform grid over static surfel positions.
package surf

import (
	"math"

	"github.com/krachzack/aitios-sim/geom"
)

// Surfel is a single oriented surface sample: a vertex (position + normal)
// plus an arbitrary payload, mirroring original_source's
// Surfel<Vertex, D>.
type Surfel[D any] struct {
	Vertex geom.Vertex
	data   D
}

// Data returns a pointer to the surfel's payload so callers can mutate it
// in place (substance exchange writes through this pointer).
func (s *Surfel[D]) Data() *D { return &s.data }

// NewSurfel constructs a surfel from a vertex and its payload.
func NewSurfel[D any](v geom.Vertex, data D) Surfel[D] {
	return Surfel[D]{Vertex: v, data: data}
}

type cellKey struct{ x, y, z int32 }

// Surface is a fixed collection of surfels indexed by a uniform grid for
// sphere/nearest queries -- the same bucket-then-filter shape as
// mod_spatialgrid.go's SpatialHashGrid.QueryRadius, but over point samples
// instead of AABBs.
type Surface[D any] struct {
	Samples  []Surfel[D]
	cellSize float32
	cells    map[cellKey][]int
	minKey   cellKey
	maxKey   cellKey
}

// NewSurface builds the spatial grid over samples once; cellSize should be
// on the order of the expected interaction radius so a sphere query touches
// only a handful of neighboring cells.
func NewSurface[D any](samples []Surfel[D], cellSize float32) *Surface[D] {
	if cellSize <= 0 {
		cellSize = 1
	}
	s := &Surface[D]{
		Samples:  samples,
		cellSize: cellSize,
		cells:    make(map[cellKey][]int, len(samples)),
	}
	for i, surfel := range samples {
		key := s.keyOf(surfel.Vertex.Position)
		s.cells[key] = append(s.cells[key], i)
		if i == 0 {
			s.minKey, s.maxKey = key, key
		} else {
			s.minKey = cellKey{min32(s.minKey.x, key.x), min32(s.minKey.y, key.y), min32(s.minKey.z, key.z)}
			s.maxKey = cellKey{max32(s.maxKey.x, key.x), max32(s.maxKey.y, key.y), max32(s.maxKey.z, key.z)}
		}
	}
	return s
}

func (s *Surface[D]) keyOf(p geom.Vec3) cellKey {
	return cellKey{
		x: int32(math.Floor(float64(p.X() / s.cellSize))),
		y: int32(math.Floor(float64(p.Y() / s.cellSize))),
		z: int32(math.Floor(float64(p.Z() / s.cellSize))),
	}
}

// FindWithinSphereIndexes returns the indexes of every surfel whose position
// lies within radius of center, scanning only the grid cells the sphere's
// bounding box overlaps.
func (s *Surface[D]) FindWithinSphereIndexes(center geom.Vec3, radius float32) []int {
	if len(s.Samples) == 0 {
		return nil
	}
	radiusSq := radius * radius
	cellRadius := int32(math.Ceil(float64(radius / s.cellSize)))
	origin := s.keyOf(center)

	var found []int
	for dx := -cellRadius; dx <= cellRadius; dx++ {
		for dy := -cellRadius; dy <= cellRadius; dy++ {
			for dz := -cellRadius; dz <= cellRadius; dz++ {
				key := cellKey{origin.x + dx, origin.y + dy, origin.z + dz}
				for _, idx := range s.cells[key] {
					if s.Samples[idx].Vertex.Position.Sub(center).LenSqr() <= radiusSq {
						found = append(found, idx)
					}
				}
			}
		}
	}
	return found
}

// NearestIndex returns the index of the surfel closest to point. Grows the
// search radius outward shell by shell until a candidate is found, then
// scans one extra shell (a closer sample can sit just across a cell
// boundary) before returning. Returns -1 if the surface has no samples.
func (s *Surface[D]) NearestIndex(point geom.Vec3) int {
	if len(s.Samples) == 0 {
		return -1
	}
	origin := s.keyOf(point)
	best := -1
	bestDistSq := float32(math.Inf(1))
	// maxRadius must cover the whole occupied grid extent from origin's
	// perspective, not just the occupied cell count -- a sparse grid with
	// few occupied cells spread far apart still needs a wide shell search.
	maxRadius := maxAbs32(
		maxOf(abs32(origin.x-s.minKey.x), abs32(origin.x-s.maxKey.x)),
		maxOf(abs32(origin.y-s.minKey.y), abs32(origin.y-s.maxKey.y)),
		maxOf(abs32(origin.z-s.minKey.z), abs32(origin.z-s.maxKey.z)),
	) + 1

	foundAtRadius := int32(-1)
	for radius := int32(0); radius <= maxRadius; radius++ {
		for dx := -radius; dx <= radius; dx++ {
			for dy := -radius; dy <= radius; dy++ {
				for dz := -radius; dz <= radius; dz++ {
					if maxAbs32(dx, dy, dz) != radius {
						continue
					}
					key := cellKey{origin.x + dx, origin.y + dy, origin.z + dz}
					for _, idx := range s.cells[key] {
						d := s.Samples[idx].Vertex.Position.Sub(point).LenSqr()
						if d < bestDistSq {
							bestDistSq = d
							best = idx
						}
					}
				}
			}
		}
		if best >= 0 && foundAtRadius < 0 {
			foundAtRadius = radius
		}
		if foundAtRadius >= 0 && radius > foundAtRadius {
			break
		}
	}
	return best
}

func maxAbs32(a, b, c int32) int32 {
	m := abs32(a)
	if v := abs32(b); v > m {
		m = v
	}
	if v := abs32(c); v > m {
		m = v
	}
	return m
}

func abs32(a int32) int32 {
	if a < 0 {
		return -a
	}
	return a
}

func maxOf(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
