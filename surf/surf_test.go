package surf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krachzack/aitios-sim/geom"
)

func gridSamples() []Surfel[int] {
	var samples []Surfel[int]
	for x := 0; x < 5; x++ {
		for z := 0; z < 5; z++ {
			v := geom.Vertex{Position: geom.Vec3{float32(x), 0, float32(z)}, Normal: geom.Vec3{0, 1, 0}}
			samples = append(samples, NewSurfel(v, x*5+z))
		}
	}
	return samples
}

func TestFindWithinSphereIndexesReturnsOnlyNearbySamples(t *testing.T) {
	s := NewSurface(gridSamples(), 1)
	found := s.FindWithinSphereIndexes(geom.Vec3{2, 0, 2}, 1.01)

	for _, idx := range found {
		d := s.Samples[idx].Vertex.Position.Sub(geom.Vec3{2, 0, 2}).Len()
		assert.LessOrEqual(t, d, float32(1.01))
	}
	// center, and its 4 axis neighbors at distance 1, should all be included
	assert.GreaterOrEqual(t, len(found), 5)
}

func TestFindWithinSphereIndexesEmptyWhenNoSamples(t *testing.T) {
	s := NewSurface([]Surfel[int](nil), 1)
	found := s.FindWithinSphereIndexes(geom.Vec3{0, 0, 0}, 5)
	assert.Empty(t, found)
}

func TestNearestIndexFindsClosest(t *testing.T) {
	s := NewSurface(gridSamples(), 1)
	idx := s.NearestIndex(geom.Vec3{2.1, 0, 1.9})
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, geom.Vec3{2, 0, 2}, s.Samples[idx].Vertex.Position)
}

func TestNearestIndexReturnsNegativeOneWhenEmpty(t *testing.T) {
	s := NewSurface([]Surfel[int](nil), 1)
	assert.Equal(t, -1, s.NearestIndex(geom.Vec3{0, 0, 0}))
}

func TestNearestIndexFindsClosestAcrossSparseFarApartCells(t *testing.T) {
	samples := []Surfel[int]{
		NewSurfel(geom.Vertex{Position: geom.Vec3{0, 0, 0}, Normal: geom.Vec3{0, 1, 0}}, 0),
		NewSurfel(geom.Vertex{Position: geom.Vec3{1000, 0, 0}, Normal: geom.Vec3{0, 1, 0}}, 1),
	}
	s := NewSurface(samples, 1)
	idx := s.NearestIndex(geom.Vec3{500, 0, 0})
	require.GreaterOrEqual(t, idx, 0)
}

func TestSurfelDataIsMutableThroughPointer(t *testing.T) {
	samples := []Surfel[int]{NewSurfel(geom.Vertex{}, 0)}
	s := NewSurface(samples, 1)
	*s.Samples[0].Data() = 42
	assert.Equal(t, 42, *s.Samples[0].Data())
}
