package ton

import (
	"fmt"

	"github.com/krachzack/aitios-sim/geom"
	"github.com/krachzack/aitios-sim/sampling"
)

// TonSourceBuilder builds a TonSource through a fluent chain, in the same
// pointer-receiver style as the teacher's AppBuilder
// (app_builder.go's NewApp/UseStates/UseModules), mirroring every method
// original_source/src/ton.rs's TonSourceBuilder exposes.
type TonSourceBuilder struct {
	source TonSource
}

// NewTonSourceBuilder starts a builder with the same defaults
// original_source/src/ton.rs's TonSourceBuilder::new() uses: zero initial
// motion probability (a caller must opt into straight/parabolic/flow), a
// small interaction radius and parabola/flow distances suited to
// scene-scale geometry, and a large emission count.
func NewTonSourceBuilder() *TonSourceBuilder {
	b := &TonSourceBuilder{}
	b.source.proto.PStraight = 0
	b.source.proto.InteractionRadius = 0.1
	b.source.proto.ParabolaHeight = 0.05
	b.source.proto.FlowDistance = 0.02
	b.source.emissionCount = 10000
	return b
}

// PointShaped emits every gammaton from a single fixed point, scattering
// directions uniformly over the sphere.
func (b *TonSourceBuilder) PointShaped(point geom.Vec3) *TonSourceBuilder {
	b.source.shape = shape{kind: shapePoint, point: point}
	return b
}

// HemisphereShaped emits from random points on a hemisphere shell, aimed
// back toward its center -- the "rain" source shape.
func (b *TonSourceBuilder) HemisphereShaped(center geom.Vec3, radius float32) *TonSourceBuilder {
	b.source.shape = shape{kind: shapeHemisphere, hemisphereCenter: center, hemisphereRadius: radius}
	return b
}

// MeshShaped emits from random points on the given triangle mesh, weighted
// by triangle area. diffuse selects uniform-hemisphere scattering off the
// surface normal instead of emitting straight along it.
func (b *TonSourceBuilder) MeshShaped(triangles []geom.Triangle, diffuse bool) *TonSourceBuilder {
	b.source.shape = shape{
		kind:        shapeMesh,
		meshBins:    sampling.NewTriangleBins(triangles),
		meshDiffuse: diffuse,
	}
	return b
}

// EmissionCount sets how many gammatons this source emits per run.
func (b *TonSourceBuilder) EmissionCount(n int) *TonSourceBuilder {
	b.source.emissionCount = n
	return b
}

// PStraight sets the initial probability of straight-line motion.
func (b *TonSourceBuilder) PStraight(p float32) *TonSourceBuilder {
	b.source.proto.PStraight = p
	return b
}

// PParabolic sets the initial probability of ballistic (parabolic) motion.
func (b *TonSourceBuilder) PParabolic(p float32) *TonSourceBuilder {
	b.source.proto.PParabolic = p
	return b
}

// PFlow sets the initial probability of tangential flow motion.
func (b *TonSourceBuilder) PFlow(p float32) *TonSourceBuilder {
	b.source.proto.PFlow = p
	return b
}

// Substances sets the initial substance payload each emitted Ton carries.
func (b *TonSourceBuilder) Substances(values []float32) *TonSourceBuilder {
	b.source.proto.Substances = append([]float32(nil), values...)
	return b
}

// PickupRates sets the per-substance pickup rate, parallel to Substances.
func (b *TonSourceBuilder) PickupRates(rates []float32) *TonSourceBuilder {
	b.source.proto.PickupRates = append([]float32(nil), rates...)
	return b
}

// InteractionRadius sets the sphere radius used to select the
// interaction-neighborhood at each contact.
func (b *TonSourceBuilder) InteractionRadius(r float32) *TonSourceBuilder {
	b.source.proto.InteractionRadius = r
	return b
}

// ParabolaHeight sets the apex height of the ballistic arc.
func (b *TonSourceBuilder) ParabolaHeight(h float32) *TonSourceBuilder {
	b.source.proto.ParabolaHeight = h
	return b
}

// FlowDistance sets the nominal tangential travel distance of a flow probe.
func (b *TonSourceBuilder) FlowDistance(d float32) *TonSourceBuilder {
	b.source.proto.FlowDistance = d
	return b
}

// FlowDirectionStatic fixes the flow direction to a constant world-space
// vector instead of the gammaton's incoming direction.
func (b *TonSourceBuilder) FlowDirectionStatic(dir geom.Vec3) *TonSourceBuilder {
	b.source.proto.FlowDir = FlowDirection{Kind: FlowStaticKind, Static: dir}
	return b
}

// Build validates the accumulated configuration and returns the finished
// TonSource. Returns an error rather than panicking (unlike the runtime
// invariant panics elsewhere in this module) because a length mismatch
// here is a construction-time configuration mistake a caller can recover
// from, not a broken internal invariant -- original_source's
// assert_eq! would abort the whole process, which a library has no
// business doing to its caller.
func (b *TonSourceBuilder) Build() (*TonSource, error) {
	proto := b.source.proto
	if len(proto.PickupRates) != 0 && len(proto.PickupRates) != len(proto.Substances) {
		return nil, fmt.Errorf(
			"ton: pickup rate count %d does not match substance count %d",
			len(proto.PickupRates), len(proto.Substances),
		)
	}
	if len(proto.PickupRates) == 0 && len(proto.Substances) != 0 {
		proto.PickupRates = make([]float32, len(proto.Substances))
		for i := range proto.PickupRates {
			proto.PickupRates[i] = 1
		}
	}
	if b.source.shape.kind == shapeMesh && b.source.shape.meshBins.Len() == 0 {
		return nil, fmt.Errorf("ton: mesh-shaped source built with zero triangles")
	}

	out := b.source
	out.proto = proto
	return &out, nil
}
