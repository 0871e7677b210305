package sim

import (
	"github.com/krachzack/aitios-sim/logging"
	"github.com/krachzack/aitios-sim/transport"
)

// Option configures a Simulation at construction, in the functional-options
// style the teacher's app_builder.go realizes as chained *App methods --
// here expressed as the more idiomatic option-slice form since
// Simulation has no other reason to be a fluent builder.
type Option func(*Simulation)

// WithLogger overrides the default stdout/stderr logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

// WithTransport overrides the default Classic transport configuration.
func WithTransport(p transport.Pair) Option {
	return func(s *Simulation) { s.transport = p }
}

// WithRNGSeed switches the simulation into deterministic mode: each Run
// derives its worker seeds from seed and an internal iteration counter
// instead of wall-clock time, per spec.md §9's note on reproducibility.
// Determinism still only holds for a fixed worker count and fixed
// parallel-collection order, which spec.md §5 explicitly does not
// guarantee across thread counts.
func WithRNGSeed(seed int64) Option {
	return func(s *Simulation) {
		s.rngSeed = seed
		s.deterministic = true
	}
}

// WithMaxBounces overrides the default MAX_BOUNCES cap.
func WithMaxBounces(n int) Option {
	return func(s *Simulation) { s.maxBounces = n }
}
