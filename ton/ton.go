// Package ton implements the gammaton particle type and its sources,
// grounded directly on original_source/src/ton.rs: the probabilistic
// motion-mode weights, per-substance payload, and the three emission
// shapes (point, hemisphere, mesh).
package ton

import (
	"math/rand"

	"github.com/krachzack/aitios-sim/geom"
	"github.com/krachzack/aitios-sim/sampling"
)

// FlowDirectionKind distinguishes the two ways a Ton's flow direction can
// be resolved at a contact.
type FlowDirectionKind int

const (
	// FlowIncident resolves the flow direction to the gammaton's incoming
	// travel direction at each contact (the common case).
	FlowIncident FlowDirectionKind = iota
	// FlowStaticKind resolves to a fixed world-space direction regardless
	// of how the gammaton arrived, e.g. simulating prevailing wind.
	FlowStaticKind
)

// FlowDirection mirrors original_source's FlowDirection enum
// (Incident | Static(Vec3)).
type FlowDirection struct {
	Kind   FlowDirectionKind
	Static geom.Vec3
}

// Resolve returns the direction flow tracing should probe along, given the
// gammaton's direction of arrival at the current contact.
func (f FlowDirection) Resolve(incoming geom.Vec3) geom.Vec3 {
	if f.Kind == FlowStaticKind {
		return f.Static
	}
	return incoming
}

// Ton is a single gammaton: the probabilistic motion-mode weights that
// govern how it travels between contacts, its substance payload, and the
// pickup rates controlling how eagerly it absorbs substance on contact.
type Ton struct {
	PStraight  float32
	PParabolic float32
	PFlow      float32

	InteractionRadius float32
	ParabolaHeight    float32
	FlowDistance      float32
	FlowDir           FlowDirection

	Substances   []float32
	PickupRates  []float32
}

// Emission is one emitted gammaton: its starting point, initial travel
// direction, and the Ton payload it carries.
type Emission struct {
	Origin    geom.Vec3
	Direction geom.Vec3
	Particle  Ton
}

// emissionEpsilon nudges a mesh-shaped emission's origin forward along its
// direction so the straight-line trace cast from it doesn't immediately
// re-hit the emitting triangle itself, mirroring original_source/src/ton.rs's
// own EPSILON constant (kept separate from tracer's self-intersection
// epsilon since the two crates never shared the constant either).
const emissionEpsilon = 1e-4

type shapeKind int

const (
	shapePoint shapeKind = iota
	shapeHemisphere
	shapeMesh
)

type shape struct {
	kind shapeKind

	point geom.Vec3

	hemisphereCenter geom.Vec3
	hemisphereRadius float32

	meshBins    *sampling.TriangleBins
	meshDiffuse bool
}

// TonSource emits a fixed number of Tons per simulation run from a single
// emission shape, per original_source/src/ton.rs's TonSource/emit.
type TonSource struct {
	shape         shape
	proto         Ton
	emissionCount int
}

// EmissionCount is how many gammatons this source emits per Simulation.Run.
func (s *TonSource) EmissionCount() int { return s.emissionCount }

// EmitOne draws a single emission (origin + direction) from the source's
// shape, using the caller-supplied RNG so callers can control determinism
// per-worker.
func (s *TonSource) EmitOne(rng *rand.Rand) Emission {
	origin, direction := s.sampleOriginDirection(rng)
	return Emission{Origin: origin, Direction: direction, Particle: s.proto}
}

// Emit draws EmissionCount emissions in one call; most callers instead
// parallelize over EmitOne directly (see the sim package's worker pool),
// but Emit is kept for single-threaded use and tests.
func (s *TonSource) Emit(rng *rand.Rand) []Emission {
	out := make([]Emission, s.emissionCount)
	for i := range out {
		out[i] = s.EmitOne(rng)
	}
	return out
}

func (s *TonSource) sampleOriginDirection(rng *rand.Rand) (origin, direction geom.Vec3) {
	switch s.shape.kind {
	case shapePoint:
		return s.shape.point, sampling.UniformUnitSphere(rng)

	case shapeHemisphere:
		dir := sampling.UniformUnitHemispherePosZ(rng)
		origin := s.shape.hemisphereCenter.Add(dir.Mul(s.shape.hemisphereRadius))
		// Emit inward, back toward the hemisphere's center region, the
		// same "rain down onto the scene" shape original_source uses for
		// its hemisphere-shaped sources.
		return origin, dir.Mul(-1)

	case shapeMesh:
		tri := s.shape.meshBins.Sample(rng)
		bary := tri.UniformBarycentric(rng)
		vertex := tri.InterpolateAt(bary)
		if s.shape.meshDiffuse {
			tbn := tri.TangentToWorld()
			dir := tbn.Mul3x1(sampling.UniformUnitHemispherePosZ(rng))
			return vertex.Position.Add(dir.Mul(emissionEpsilon)), dir
		}
		dir := vertex.Normal.Normalize()
		return vertex.Position.Add(dir.Mul(emissionEpsilon)), dir
	}
	panic("ton: TonSource has unset shape")
}
