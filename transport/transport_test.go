package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krachzack/aitios-sim/surfel"
	"github.com/krachzack/aitios-sim/ton"
)

func particleAndSurfel() (*ton.Ton, *surfel.Data) {
	p := &ton.Ton{
		Substances:  []float32{0, 5},
		PickupRates: []float32{1, 0.5},
	}
	s := &surfel.Data{
		Substances:      []float32{10, 0},
		DepositionRates: []float32{0.5, 1},
	}
	return p, s
}

func TestAbsorbMovesFromSurfelToParticle(t *testing.T) {
	p, s := particleAndSurfel()
	Absorb{}.Transport(p, s, 1)
	assert.InDelta(t, 10, p.Substances[0], 1e-5)
	assert.InDelta(t, 0, s.Substances[0], 1e-5)
}

func TestAbsorbConservesTotalMass(t *testing.T) {
	p, s := particleAndSurfel()
	before := p.Substances[0] + s.Substances[0]
	Absorb{}.Transport(p, s, 0.3)
	after := p.Substances[0] + s.Substances[0]
	assert.InDelta(t, before, after, 1e-4)
}

func TestAbsorbNeverProducesNegativeAmounts(t *testing.T) {
	p, s := particleAndSurfel()
	for i := 0; i < 20; i++ {
		Absorb{}.Transport(p, s, 1)
	}
	for _, v := range p.Substances {
		assert.GreaterOrEqual(t, v, float32(0))
	}
	for _, v := range s.Substances {
		assert.GreaterOrEqual(t, v, float32(0))
	}
}

func TestDepositMovesFromParticleToSurfelAndLeavesParticleUnchanged(t *testing.T) {
	p, s := particleAndSurfel()
	pBefore := append([]float32(nil), p.Substances...)
	Deposit{}.Transport(p, s, 1)
	assert.Equal(t, pBefore, p.Substances)
	assert.Greater(t, s.Substances[1], float32(0))
}

func TestAbsorbThenDepositComposesBothSteps(t *testing.T) {
	p1, s1 := particleAndSurfel()
	p2, s2 := particleAndSurfel()

	AbsorbThenDeposit{}.Transport(p1, s1, 0.5)

	Absorb{}.Transport(p2, s2, 0.5)
	Deposit{}.Transport(p2, s2, 0.5)

	assert.Equal(t, p2.Substances, p1.Substances)
	assert.Equal(t, s2.Substances, s1.Substances)
}

func TestDepositAllDumpsEntirePayload(t *testing.T) {
	p, s := particleAndSurfel()
	total := p.Substances[1]
	DepositAll{}.Transport(p, s, 1)
	assert.InDelta(t, total, s.Substances[1], 1e-5)
}

func TestDifferentialDirectionFollowsRateSign(t *testing.T) {
	p := &ton.Ton{Substances: []float32{4}, PickupRates: []float32{0}}
	s := &surfel.Data{Substances: []float32{4}, DepositionRates: []float32{1}}
	Differential{}.Transport(p, s, 1)
	// DepositionRate > PickupRate -> net flow from particle to surfel
	assert.Greater(t, s.Substances[0], float32(4))
	assert.Less(t, p.Substances[0], float32(4))
}

func TestTransportPanicsOnLengthMismatch(t *testing.T) {
	p := &ton.Ton{Substances: []float32{1}, PickupRates: []float32{1}}
	s := &surfel.Data{Substances: []float32{1, 2}, DepositionRates: []float32{1, 1}}
	assert.Panics(t, func() {
		Absorb{}.Transport(p, s, 1)
	})
}

func TestClassicConsistentConservingDifferentialPairsWireCorrectRules(t *testing.T) {
	require.IsType(t, Absorb{}, Classic().Bounce)
	require.IsType(t, Deposit{}, Classic().Settle)

	require.IsType(t, AbsorbThenDeposit{}, Consistent().Bounce)
	require.IsType(t, AbsorbThenDeposit{}, Consistent().Settle)

	require.IsType(t, AbsorbThenDeposit{}, Conserving().Bounce)
	require.IsType(t, DepositAll{}, Conserving().Settle)

	require.IsType(t, Differential{}, DifferentialPair().Bounce)
	require.IsType(t, Differential{}, DifferentialPair().Settle)
}
