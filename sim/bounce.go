package sim

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/krachzack/aitios-sim/geom"
	"github.com/krachzack/aitios-sim/logging"
	"github.com/krachzack/aitios-sim/sampling"
	"github.com/krachzack/aitios-sim/surfel"
	"github.com/krachzack/aitios-sim/ton"
	"github.com/krachzack/aitios-sim/tracer"
)

// seedBase picks the base seed the next parallel phase's workers derive
// their per-worker *rand.Rand from. In deterministic mode it's a pure
// function of the configured seed and a counter advanced on every call
// (once per parallel phase: emission, then each bounce layer), per spec.md §9's
// "seed = iteration*particle_count + index" suggestion generalized to a
// per-phase base; otherwise it's wall-clock-derived, matching the
// original's thread_rng non-determinism (spec.md §1 Non-goals explicitly
// excludes deterministic reproduction across thread counts).
func (s *Simulation) seedBase() int64 {
	if s.deterministic {
		s.iteration++
		return s.rngSeed*1_000_003 + s.iteration
	}
	return time.Now().UnixNano()
}

// initialHits emits every source's gammatons in parallel and traces each
// one's initial straight ray, discarding misses.
func (s *Simulation) initialHits(runID uuid.UUID) []bounceHit {
	type job struct {
		sourceIdx int
		localIdx  int
	}
	var jobs []job
	for srcIdx, src := range s.sources {
		for i := 0; i < src.EmissionCount(); i++ {
			jobs = append(jobs, job{sourceIdx: srcIdx, localIdx: i})
		}
	}

	results := parallelMap(jobs, s.seedBase(), func(rng *rand.Rand, j job, idx int) *bounceHit {
		emission := s.sources[j.sourceIdx].EmitOne(rng)
		hit, ok := s.tracer.TraceStraight(emission.Origin, emission.Direction)
		if !ok {
			return nil
		}
		return &bounceHit{particle: emission.Particle, hit: hit}
	})

	out := make([]bounceHit, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// traceDeepen advances every in-flight gammaton by one bounce layer:
// parallel interaction-selection, parallel deterioration, a strictly
// sequential substance-exchange write barrier, then parallel next-hit
// computation. Returns the surviving hits for the next layer.
func (s *Simulation) traceDeepen(hits []bounceHit, runID uuid.UUID) []bounceHit {
	phaseSeed := s.seedBase()

	type selection struct {
		neighborhood []int
		motion       MotionType
	}
	selections := parallelMap(hits, phaseSeed, func(rng *rand.Rand, h bounceHit, idx int) selection {
		tri := s.tracer.Triangle(h.hit.TriangleIndex)
		n := s.selectInteractionIndexes(tri, h.hit.IntersectionPoint, h.particle.InteractionRadius, runID)
		return selection{neighborhood: n, motion: selectMotionType(rng, &h.particle)}
	})
	for i := range hits {
		hits[i].neighborhood = selections[i].neighborhood
		hits[i].motion = selections[i].motion
	}

	parallelMap(hits, phaseSeed^0x5bd1e995, func(rng *rand.Rand, h bounceHit, idx int) struct{} {
		if hits[idx].motion == MotionSettled || len(hits[idx].neighborhood) == 0 {
			return struct{}{}
		}
		data := s.surface.Samples[hits[idx].neighborhood[0]].Data()
		deteriorate(&hits[idx].particle, data, s.logger, runID)
		return struct{}{}
	})

	for i := range hits {
		w := weightOf(hits[i].neighborhood)
		if w == 0 {
			continue
		}
		rule := s.transport.Bounce
		if hits[i].motion == MotionSettled {
			rule = s.transport.Settle
		}
		for _, idx := range hits[i].neighborhood {
			rule.Transport(&hits[i].particle, s.surface.Samples[idx].Data(), w)
		}
	}

	next := parallelMap(hits, phaseSeed^0x27d4eb2f, func(rng *rand.Rand, h bounceHit, idx int) *bounceHit {
		if h.motion == MotionSettled {
			return nil
		}
		nh, ok := s.nextHit(rng, h, runID)
		if !ok {
			return nil
		}
		return &nh
	})

	out := make([]bounceHit, 0, len(next))
	for _, n := range next {
		if n != nil {
			out = append(out, *n)
		}
	}
	return out
}

func weightOf(neighborhood []int) float32 {
	if len(neighborhood) == 0 {
		return 0
	}
	return 1.0 / float32(len(neighborhood))
}

func selectMotionType(rng *rand.Rand, p *ton.Ton) MotionType {
	r := rng.Float32()
	switch {
	case r < p.PStraight:
		return MotionStraight
	case r < p.PStraight+p.PParabolic:
		return MotionParabolic
	case r < p.PStraight+p.PParabolic+p.PFlow:
		return MotionFlow
	default:
		return MotionSettled
	}
}

// selectInteractionIndexes gathers the surfels within the particle's
// interaction radius, drops any facing away from the hit triangle, and
// falls back to the single nearest surfel (with a warning) when that
// leaves nothing -- per spec.md §4.6a's front-face filter.
func (s *Simulation) selectInteractionIndexes(hitTriangle *geom.Triangle, point geom.Vec3, radius float32, runID uuid.UUID) []int {
	candidates := s.surface.FindWithinSphereIndexes(point, radius)
	triNormal := hitTriangle.Normal()

	filtered := make([]int, 0, len(candidates))
	for _, idx := range candidates {
		if triNormal.Dot(s.surface.Samples[idx].Vertex.Normal) > 0 {
			filtered = append(filtered, idx)
		}
	}
	if len(filtered) > 0 {
		return filtered
	}

	nearest := s.surface.NearestIndex(point)
	if nearest < 0 {
		return nil
	}
	s.logger.Warnf("run %s: empty interaction neighborhood at %v after front-face filter, falling back to nearest surfel %d", runID, point, nearest)
	return []int{nearest}
}

// deteriorate reduces a gammaton's straight/parabolic probabilities by the
// contacted surfel's deltas and, per the source quirk spec.md §9 says to
// reproduce verbatim, folds the (already-reduced) parabolic probability
// into the flow probability before subtracting its own delta.
func deteriorate(p *ton.Ton, s *surfel.Data, logger logging.Logger, runID uuid.UUID) {
	p.PStraight = max0(p.PStraight - s.DeltaStraight)
	p.PParabolic = max0(p.PParabolic - s.DeltaParabolic)
	p.PFlow = max0(p.PFlow + p.PParabolic - s.DeltaFlow)

	sum := p.PStraight + p.PParabolic + p.PFlow
	if sum > 1 {
		excess := sum - 1
		p.PFlow = max0(p.PFlow - excess)
		logger.Warnf("run %s: motion probability sum %.4f exceeded 1, reduced p_flow by %.4f", runID, sum, excess)
	}
}

func max0(v float32) float32 {
	if v < 0 {
		return 0
	}
	return v
}

// nextHit steps a gammaton to its next contact given the motion mode
// selected for this layer; Settled particles never reach this function
// (traceDeepen drops them before calling it).
func (s *Simulation) nextHit(rng *rand.Rand, h bounceHit, runID uuid.UUID) (bounceHit, bool) {
	tri := s.tracer.Triangle(h.hit.TriangleIndex)

	switch h.motion {
	case MotionStraight, MotionParabolic:
		u := sampling.UniformUnitHemispherePosZ(rng)
		dir := tri.TangentToWorld().Mul3x1(u)

		var hit tracer.Hit
		var ok bool
		if h.motion == MotionStraight {
			hit, ok = s.tracer.TraceStraight(h.hit.IntersectionPoint, dir)
		} else {
			hit, ok = s.tracer.TraceParabolic(h.hit.IntersectionPoint, dir, h.particle.ParabolaHeight)
		}
		if !ok {
			return bounceHit{}, false
		}
		return bounceHit{particle: h.particle, hit: hit}, true

	case MotionFlow:
		up := tri.Normal()
		dir0 := h.particle.FlowDir.Resolve(h.hit.IncomingDirection)

		projected, ok := tri.ProjectOntoTangentialPlane(dir0)
		if !ok {
			s.logger.Warnf("run %s: flow direction %v is perpendicular to the hit triangle, retrying with random in-plane directions", runID, dir0)
		}
		for attempt := 0; !ok && attempt < 16; attempt++ {
			bary := tri.UniformBarycentric(rng)
			sample := tri.InterpolateAt(bary)
			projected, ok = tri.ProjectOntoTangentialPlane(sample.Position.Sub(tri.Centroid()))
		}
		if !ok {
			return bounceHit{}, false
		}

		hit, hok := s.tracer.TraceFlow(h.hit.IntersectionPoint, up, projected, h.particle.FlowDistance)
		if !hok {
			return bounceHit{}, false
		}
		return bounceHit{particle: h.particle, hit: hit}, true
	}

	return bounceHit{}, false
}

// performRules applies the global surfel rules, in declaration order, to
// every surfel, then each surfel's own local rules, per spec.md §4.5.
func (s *Simulation) performRules() {
	for _, rule := range s.globalRules {
		for i := range s.surface.Samples {
			rule.Apply(s.surface.Samples[i].Data())
		}
	}
	for i := range s.surface.Samples {
		data := s.surface.Samples[i].Data()
		for _, rule := range data.Rules {
			rule.Apply(data)
		}
	}
}
