package surfel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeteriorateDecaysTowardZeroAndClamps(t *testing.T) {
	d := &Data{Substances: []float32{100, 5}}
	Deteriorate{SubstanceIdx: 0, Factor: -0.1}.Apply(d)
	assert.InDelta(t, 90, d.Substances[0], 1e-5)
	assert.InDelta(t, 5, d.Substances[1], 1e-6)

	Deteriorate{SubstanceIdx: 1, Factor: -2}.Apply(d)
	assert.Equal(t, float32(0), d.Substances[1])
}

func TestDeteriorateIgnoresOutOfRangeIndex(t *testing.T) {
	d := &Data{Substances: []float32{1}}
	Deteriorate{SubstanceIdx: 5, Factor: 2}.Apply(d)
	assert.Equal(t, []float32{1}, d.Substances)
}

func TestTransferMovesFractionBetweenSubstances(t *testing.T) {
	d := &Data{Substances: []float32{10, 0}}
	Transfer{SourceSubstanceIdx: 0, TargetSubstanceIdx: 1, Factor: 0.25}.Apply(d)
	assert.InDelta(t, 7.5, d.Substances[0], 1e-6)
	assert.InDelta(t, 2.5, d.Substances[1], 1e-6)
}

func TestTransferConservesTotalMass(t *testing.T) {
	d := &Data{Substances: []float32{3, 7}}
	before := d.Substances[0] + d.Substances[1]
	Transfer{SourceSubstanceIdx: 1, TargetSubstanceIdx: 0, Factor: 0.6}.Apply(d)
	after := d.Substances[0] + d.Substances[1]
	assert.InDelta(t, before, after, 1e-5)
}

func TestTransferIgnoresOutOfRangeIndexes(t *testing.T) {
	d := &Data{Substances: []float32{1, 2}}
	Transfer{SourceSubstanceIdx: 0, TargetSubstanceIdx: 9, Factor: 1}.Apply(d)
	assert.Equal(t, []float32{1, 2}, d.Substances)
}

func TestTransferNegativeFactorReversesDirection(t *testing.T) {
	d := &Data{Substances: []float32{10, 8}}
	Transfer{SourceSubstanceIdx: 0, TargetSubstanceIdx: 1, Factor: -0.5}.Apply(d)
	assert.InDelta(t, 15, d.Substances[0], 1e-5)
	assert.InDelta(t, 3, d.Substances[1], 1e-5)
}

func TestTransferClampsEachSideIndependently(t *testing.T) {
	d := &Data{Substances: []float32{5, 0}}
	Transfer{SourceSubstanceIdx: 0, TargetSubstanceIdx: 1, Factor: 2}.Apply(d)
	assert.Equal(t, float32(0), d.Substances[0])
	assert.InDelta(t, 10, d.Substances[1], 1e-5)
}

func TestDepositAddsFixedAmountUnconditionally(t *testing.T) {
	d := &Data{Substances: []float32{1, 1}}
	Deposit{SubstanceIdx: 1, Amount: 4}.Apply(d)
	assert.InDelta(t, 1, d.Substances[0], 1e-6)
	assert.InDelta(t, 5, d.Substances[1], 1e-6)
}

func TestDepositClampsNegativeAmountAtZero(t *testing.T) {
	d := &Data{Substances: []float32{1}}
	Deposit{SubstanceIdx: 0, Amount: -5}.Apply(d)
	assert.Equal(t, float32(0), d.Substances[0])
}

func TestDepositIgnoresOutOfRangeIndex(t *testing.T) {
	d := &Data{Substances: []float32{1}}
	Deposit{SubstanceIdx: 9, Amount: 4}.Apply(d)
	assert.Equal(t, []float32{1}, d.Substances)
}
