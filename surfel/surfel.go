// Package surfel holds the simulation's per-surfel payload and the local
// post-iteration rules applied to it -- part of the core (not the external
// surf collaborator), grounded directly on
// original_source/src/surfel_data.rs and src/surfel_rule.rs.
package surfel

import "github.com/krachzack/aitios-sim/surf"

// Data is the per-surfel payload the simulation accumulates into: which
// entity the surfel belongs to, per-motion-mode deterioration deltas
// applied at each contact, the running substance amounts, deposition
// rates controlling how readily each substance settles, and the surfel's
// own local rules (supplemented feature: original_source builds these at
// construction time, read every iteration in the sim package's performRules).
type Data struct {
	EntityIdx int

	DeltaStraight  float32
	DeltaParabolic float32
	DeltaFlow      float32

	Substances      []float32
	DepositionRates []float32

	Rules []Rule
}

// Surface is the concrete Surface type this module's simulation operates
// on: a surf.Surface of Data payloads, mirroring original_source's
// `type Surface = surf::Surface<Surfel<Vertex, SurfelData>>` alias.
type Surface = surf.Surface[Data]

// Sample is this module's concrete surfel type.
type Sample = surf.Surfel[Data]

// Rule is a local, per-surfel post-iteration transformation applied after
// Data accumulates substance for an entire simulation run, per
// original_source/src/surfel_rule.rs's SurfelRule enum.
type Rule interface {
	Apply(d *Data)
}

// Deteriorate scales one substance by (1 + Factor), e.g. simulating slow
// evaporation or decay of a deposited substance between runs: Factor is
// typically negative, so the substance decays exponentially toward zero
// rather than being multiplied away in one application.
type Deteriorate struct {
	SubstanceIdx int
	Factor       float32
}

func (r Deteriorate) Apply(d *Data) {
	if r.SubstanceIdx < 0 || r.SubstanceIdx >= len(d.Substances) {
		return
	}
	d.Substances[r.SubstanceIdx] = (1 + r.Factor) * d.Substances[r.SubstanceIdx]
	if d.Substances[r.SubstanceIdx] < 0 {
		d.Substances[r.SubstanceIdx] = 0
	}
}

// Transfer moves Factor·Substances[source] from one substance into another,
// e.g. rust consuming bare metal into a rust substance at the same surfel. A
// negative Factor reverses the transfer direction. Both sides are clamped to
// zero independently, since a Factor outside [0, 1] can drive either side
// negative.
type Transfer struct {
	SourceSubstanceIdx int
	TargetSubstanceIdx int
	Factor             float32
}

func (r Transfer) Apply(d *Data) {
	if r.SourceSubstanceIdx < 0 || r.SourceSubstanceIdx >= len(d.Substances) ||
		r.TargetSubstanceIdx < 0 || r.TargetSubstanceIdx >= len(d.Substances) {
		return
	}
	moved := r.Factor * d.Substances[r.SourceSubstanceIdx]
	d.Substances[r.SourceSubstanceIdx] = max0(d.Substances[r.SourceSubstanceIdx] - moved)
	d.Substances[r.TargetSubstanceIdx] = max0(d.Substances[r.TargetSubstanceIdx] + moved)
}

// Deposit adds a fixed amount onto one substance unconditionally, e.g.
// seeding a surfel with an initial coat of a substance regardless of what it
// already carries.
type Deposit struct {
	SubstanceIdx int
	Amount       float32
}

func (r Deposit) Apply(d *Data) {
	if r.SubstanceIdx < 0 || r.SubstanceIdx >= len(d.Substances) {
		return
	}
	d.Substances[r.SubstanceIdx] = max0(d.Substances[r.SubstanceIdx] + r.Amount)
}

func max0(v float32) float32 {
	if v < 0 {
		return 0
	}
	return v
}
