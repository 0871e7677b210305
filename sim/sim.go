// Package sim orchestrates one weathering iteration: emission, initial
// tracing, the bounce loop (interaction selection, deterioration,
// sequential substance exchange, next-hit computation), and post-iteration
// rule application. Grounded on original_source/src/sim.rs for algorithm
// shape and on particles_ecs.go's worker-pool pattern for the concurrency
// realization spec.md §5 requires.
package sim

import (
	"context"

	"github.com/google/uuid"

	"github.com/krachzack/aitios-sim/geom"
	"github.com/krachzack/aitios-sim/logging"
	"github.com/krachzack/aitios-sim/surfel"
	"github.com/krachzack/aitios-sim/ton"
	"github.com/krachzack/aitios-sim/tracer"
	"github.com/krachzack/aitios-sim/transport"
)

// Simulation owns the sources, tracer, surface and global rules exclusively
// for the duration of a run, per spec.md §3's ownership note.
type Simulation struct {
	sources     []*ton.TonSource
	tracer      *tracer.Tracer
	surface     *surfel.Surface
	globalRules []surfel.Rule
	transport   transport.Pair
	logger      logging.Logger

	maxBounces    int
	rngSeed       int64
	deterministic bool
	iteration     int64
}

// New constructs a Simulation. gravityDirection for the underlying Tracer
// defaults to (0, -1, 0); pass opts to override the transport
// configuration, logger, RNG seed or bounce cap.
func New(sources []*ton.TonSource, triangles []geom.Triangle, surface *surfel.Surface, globalRules []surfel.Rule, opts ...Option) *Simulation {
	s := &Simulation{
		sources:     sources,
		tracer:      tracer.New(triangles, geom.Vec3{}),
		surface:     surface,
		globalRules: globalRules,
		transport:   transport.Classic(),
		logger:      logging.NewDefaultLogger("aitios-sim", false),
		maxBounces:  MaxBounces,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one weathering iteration. ctx is checked cooperatively
// between bounce layers only -- the core never blocks or yields mid-layer,
// per spec.md §5 -- so cancellation can leave the in-flight gammatons of
// the current layer to finish that layer's sequential exchange phase
// before returning.
func (s *Simulation) Run(ctx context.Context) {
	runID := uuid.New()

	hits := s.initialHits(runID)

	bounces := 0
	for len(hits) > 0 && bounces < s.maxBounces {
		select {
		case <-ctx.Done():
			s.logger.Warnf("run %s: cancelled after %d bounce layers with %d gammatons in flight", runID, bounces, len(hits))
			return
		default:
		}
		hits = s.traceDeepen(hits, runID)
		bounces++
	}
	if bounces >= s.maxBounces && len(hits) > 0 {
		s.logger.Warnf("run %s: reached max bounces (%d) with %d gammatons still in flight; their remaining substance is lost", runID, s.maxBounces, len(hits))
	}

	s.performRules()
}

// SurfelCount reports the number of surfels on the simulation's Surface.
func (s *Simulation) SurfelCount() int {
	return len(s.surface.Samples)
}

// EmissionCount reports the total number of gammatons emitted per Run,
// summed across all sources.
func (s *Simulation) EmissionCount() int {
	total := 0
	for _, src := range s.sources {
		total += src.EmissionCount()
	}
	return total
}

// Surface exposes read access to the accumulated surfel state.
func (s *Simulation) Surface() *surfel.Surface {
	return s.surface
}
