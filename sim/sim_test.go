package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krachzack/aitios-sim/geom"
	"github.com/krachzack/aitios-sim/logging"
	"github.com/krachzack/aitios-sim/surf"
	"github.com/krachzack/aitios-sim/surfel"
	"github.com/krachzack/aitios-sim/ton"
	"github.com/krachzack/aitios-sim/transport"
)

// groundQuad is a 2x2 quad in the XZ plane facing +Y, the surface gammatons
// are traced against.
func groundQuad() []geom.Triangle {
	v := func(x, z float32) geom.Vertex {
		return geom.Vertex{Position: geom.Vec3{x, 0, z}, Normal: geom.Vec3{0, 1, 0}}
	}
	a, b, c, d := v(-1, -1), v(1, -1), v(1, 1), v(-1, 1)
	return []geom.Triangle{{A: a, B: c, C: b}, {A: a, B: d, C: c}}
}

// emitterPatch sits above the ground quad's footprint, facing straight down,
// so a non-diffuse mesh source emits deterministic straight-down rays.
func emitterPatch() []geom.Triangle {
	v := func(x, z float32) geom.Vertex {
		return geom.Vertex{Position: geom.Vec3{x, 5, z}, Normal: geom.Vec3{0, -1, 0}}
	}
	return []geom.Triangle{{A: v(-1, -1), B: v(1, -1), C: v(1, 1)}}
}

func singleSurfelSurface(initialSubstance, depositionRate float32) *surfel.Surface {
	samples := []surf.Surfel[surfel.Data]{
		surf.NewSurfel(
			geom.Vertex{Position: geom.Vec3{0, 0, 0}, Normal: geom.Vec3{0, 1, 0}},
			surfel.Data{
				Substances:      []float32{initialSubstance},
				DepositionRates: []float32{depositionRate},
			},
		),
	}
	return surf.NewSurface[surfel.Data](samples, 1)
}

func settleOnContactSource(t *testing.T, substance float32) *ton.TonSource {
	t.Helper()
	src, err := ton.NewTonSourceBuilder().
		MeshShaped(emitterPatch(), false).
		PStraight(0).PParabolic(0).PFlow(0).
		Substances([]float32{substance}).
		InteractionRadius(5).
		EmissionCount(1).
		Build()
	require.NoError(t, err)
	return src
}

func TestClassicTransportDepositsOntoSurfelOnSettle(t *testing.T) {
	surface := singleSurfelSurface(0, 1)
	src := settleOnContactSource(t, 10)

	s := New([]*ton.TonSource{src}, groundQuad(), surface, nil,
		WithLogger(logging.NewNopLogger()),
		WithRNGSeed(1),
		WithTransport(transport.Classic()),
	)
	s.Run(context.Background())

	assert.InDelta(t, 10, surface.Samples[0].Data().Substances[0], 1e-4)
}

func TestConsistentTransportAbsorbsThenDeposits(t *testing.T) {
	surface := singleSurfelSurface(4, 1)
	src := settleOnContactSource(t, 10)

	s := New([]*ton.TonSource{src}, groundQuad(), surface, nil,
		WithLogger(logging.NewNopLogger()),
		WithRNGSeed(2),
		WithTransport(transport.Consistent()),
	)
	s.Run(context.Background())

	// Absorb first moves the surfel's 4 units onto the particle (now
	// carrying 14), then Deposit immediately dumps all 14 back.
	assert.InDelta(t, 14, surface.Samples[0].Data().Substances[0], 1e-4)
}

func TestSubstancesStayNonNegativeAcrossManyRuns(t *testing.T) {
	surface := singleSurfelSurface(0, 0.3)
	src := settleOnContactSource(t, 5)

	s := New([]*ton.TonSource{src}, groundQuad(), surface, nil,
		WithLogger(logging.NewNopLogger()),
		WithRNGSeed(3),
		WithTransport(transport.Classic()),
	)
	for i := 0; i < 50; i++ {
		s.Run(context.Background())
		for _, v := range surface.Samples[0].Data().Substances {
			assert.GreaterOrEqual(t, v, float32(0))
		}
	}
}

func TestRunTerminatesWhenParticleNeverSettles(t *testing.T) {
	surface := singleSurfelSurface(0, 1)
	src, err := ton.NewTonSourceBuilder().
		MeshShaped(emitterPatch(), false).
		PStraight(1).
		InteractionRadius(5).
		EmissionCount(1).
		Build()
	require.NoError(t, err)

	s := New([]*ton.TonSource{src}, groundQuad(), surface, nil,
		WithLogger(logging.NewNopLogger()),
		WithRNGSeed(4),
		WithMaxBounces(3),
	)
	s.Run(context.Background())
}

func TestSurfelCountAndEmissionCountAccessors(t *testing.T) {
	surface := singleSurfelSurface(0, 1)
	src := settleOnContactSource(t, 1)
	other := settleOnContactSource(t, 1)

	s := New([]*ton.TonSource{src, other}, groundQuad(), surface, nil, WithLogger(logging.NewNopLogger()))
	assert.Equal(t, 1, s.SurfelCount())
	assert.Equal(t, 2, s.EmissionCount())
	assert.Same(t, surface, s.Surface())
}
