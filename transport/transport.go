// Package transport implements the four substance-exchange policies
// gammatons apply against surfels on bounce and on settle, grounded on
// original_source/src/transport.rs and the inline absorb/deposit
// functions in src/sim.rs, supplemented with DepositAll and Differential
// per spec.md §4.4's full four-row table.
package transport

import (
	"fmt"

	"github.com/krachzack/aitios-sim/surfel"
	"github.com/krachzack/aitios-sim/ton"
)

// Rule is a single substance-exchange policy applied between a particle
// and a surfel with neighborhood weight w = 1/|neighborhood|.
// original_source uses a compile-time type parameter for this; spec.md §9
// names the interface-plus-four-implementations rephrasing as equivalent.
type Rule interface {
	Transport(t *ton.Ton, s *surfel.Data, w float32)
}

func requireEqualLengths(t *ton.Ton, s *surfel.Data) {
	if len(t.Substances) != len(s.Substances) {
		panic(fmt.Sprintf(
			"transport: particle has %d substances, surfel has %d",
			len(t.Substances), len(s.Substances),
		))
	}
}

// Absorb moves substance from the surfel into the particle, scaled by the
// particle's pickup rate. A negative pickup rate reverses the direction,
// moving substance out of the particle instead.
type Absorb struct{}

func (Absorb) Transport(t *ton.Ton, s *surfel.Data, w float32) {
	requireEqualLengths(t, s)
	for i := range t.Substances {
		rate := w * t.PickupRates[i]
		var amount float32
		if rate >= 0 {
			amount = rate * s.Substances[i]
		} else {
			amount = rate * t.Substances[i]
		}
		s.Substances[i] = max0(s.Substances[i] - amount)
		t.Substances[i] = max0(t.Substances[i] + amount)
	}
}

// Deposit moves substance from the particle onto the surfel, scaled by the
// surfel's deposition rate. The particle is left unchanged.
type Deposit struct{}

func (Deposit) Transport(t *ton.Ton, s *surfel.Data, w float32) {
	requireEqualLengths(t, s)
	for i := range t.Substances {
		amount := w * s.DepositionRates[i] * t.Substances[i]
		s.Substances[i] = max0(s.Substances[i] + amount)
	}
}

// AbsorbThenDeposit applies Absorb then Deposit, in that order, with the
// same weight against the same particle and surfel.
type AbsorbThenDeposit struct{}

func (AbsorbThenDeposit) Transport(t *ton.Ton, s *surfel.Data, w float32) {
	(Absorb{}).Transport(t, s, w)
	(Deposit{}).Transport(t, s, w)
}

// DepositAll dumps the particle's entire substance payload onto the
// surfel, unconditionally (no pickup/deposition rate applied). The
// particle is left unchanged.
type DepositAll struct{}

func (DepositAll) Transport(t *ton.Ton, s *surfel.Data, w float32) {
	requireEqualLengths(t, s)
	for i := range t.Substances {
		s.Substances[i] = max0(s.Substances[i] + w*t.Substances[i])
	}
}

// Differential moves substance in the direction driven by the difference
// between the surfel's deposition rate and the particle's pickup rate,
// regardless of either side's current amount.
type Differential struct{}

func (Differential) Transport(t *ton.Ton, s *surfel.Data, w float32) {
	requireEqualLengths(t, s)
	for i := range t.Substances {
		r := w * (s.DepositionRates[i] - t.PickupRates[i])
		if r > 0 {
			moved := t.Substances[i] * r
			t.Substances[i] = max0(t.Substances[i] - moved)
			s.Substances[i] = max0(s.Substances[i] + moved)
		} else {
			moved := s.Substances[i] * -r
			s.Substances[i] = max0(s.Substances[i] - moved)
			t.Substances[i] = max0(t.Substances[i] + moved)
		}
	}
}

// Pair bundles the bounce and settle rule for one transport configuration,
// per spec.md §4.4's table and §9's note that the rule choice itself must
// never become mutable per-call state.
type Pair struct {
	Bounce Rule
	Settle Rule
}

// Classic is the default configuration: absorb on bounce, deposit on
// settle.
func Classic() Pair { return Pair{Bounce: Absorb{}, Settle: Deposit{}} }

// Consistent applies AbsorbThenDeposit uniformly on both bounce and
// settle.
func Consistent() Pair { return Pair{Bounce: AbsorbThenDeposit{}, Settle: AbsorbThenDeposit{}} }

// Conserving absorbs-then-deposits on bounce but dumps everything on
// settle, so no substance is lost to repeated partial deposits across a
// gammaton's path.
func Conserving() Pair { return Pair{Bounce: AbsorbThenDeposit{}, Settle: DepositAll{}} }

// DifferentialPair applies the rate-driven Differential rule uniformly on
// both bounce and settle.
func DifferentialPair() Pair { return Pair{Bounce: Differential{}, Settle: Differential{}} }

func max0(v float32) float32 {
	if v < 0 {
		return 0
	}
	return v
}
