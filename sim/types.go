package sim

import (
	"github.com/krachzack/aitios-sim/ton"
	"github.com/krachzack/aitios-sim/tracer"
)

// MotionType is the next motion mode a gammaton will travel under, chosen
// probabilistically at each contact per spec.md §4.6.
type MotionType int

const (
	MotionStraight MotionType = iota
	MotionParabolic
	MotionFlow
	MotionSettled
)

func (m MotionType) String() string {
	switch m {
	case MotionStraight:
		return "straight"
	case MotionParabolic:
		return "parabolic"
	case MotionFlow:
		return "flow"
	case MotionSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// MaxBounces is the default bounce-layer cap backstopping a gammaton that
// never settles or misses, per spec.md §6.
const MaxBounces = 128

// bounceHit is one in-flight gammaton: its current particle state, the
// contact it's sitting at, and (while a bounce layer is being processed)
// the interaction neighborhood and motion type selected for this layer.
type bounceHit struct {
	particle     ton.Ton
	hit          tracer.Hit
	neighborhood []int
	motion       MotionType
}
