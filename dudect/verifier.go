package dudect

import (
	"math"

	"github.com/sidefuzz/sidefuzz/wasm"
)

// Thresholds the verifier applies, taken from the core specification:
// a t-statistic at or above tSuccess is strong enough evidence of a
// timing difference to accept; a t-statistic that stays below tGiveUp
// after minSamplesBeforeGiveUp samples is treated as constant-time.
// Anything in between means keep sampling.
const (
	tSuccess               = 4.5
	tGiveUp                = 0.674
	minSamplesBeforeGiveUp = 100_000
)

// Outcome is the verifier's current verdict after however many samples
// have been taken so far.
type Outcome int

const (
	Continue Outcome = iota
	Accept
	Reject
)

// Verifier runs a Welch's t-test over repeated instruction counts of two
// fixed inputs against one wasm module, incrementally accumulating
// statistics until it can accept or reject the hypothesis that the
// inputs take a different number of instructions. Grounded on
// original_source/src/dudect.rs's DudeCT.
type Verifier struct {
	exec          *wasm.Executor
	first, second []byte
	stats1, stats2 runningStats
}

// New builds a verifier over a module instance dedicated to this
// comparison. Callers should pass a freshly cloned Executor: sharing one
// with concurrent work would interleave on its single linear memory.
func New(exec *wasm.Executor, first, second []byte) *Verifier {
	return &Verifier{exec: exec, first: first, second: second}
}

// Sample takes n more paired measurements, interleaving the two inputs
// one at a time so a systematic drift in the host (not the guest) would
// affect both sides evenly.
func (v *Verifier) Sample(n int) error {
	for i := 0; i < n; i++ {
		n1, err := v.exec.CountInstructions(v.first)
		if err != nil {
			return err
		}
		n2, err := v.exec.CountInstructions(v.second)
		if err != nil {
			return err
		}
		v.stats1.push(float64(n1))
		v.stats2.push(float64(n2))
	}
	return nil
}

// Samples reports how many paired measurements have been taken so far.
func (v *Verifier) Samples() uint64 { return v.stats1.count }

// T returns the current Welch's t-statistic between the two sides.
func (v *Verifier) T() float64 { return welchT(&v.stats1, &v.stats2) }

// Confidence returns the current confidence, as a percentage, that the
// two inputs take a genuinely different number of instructions.
func (v *Verifier) Confidence() float64 {
	p := pValueFromT(math.Abs(v.T()))
	return (1 - p) * 100
}

// Outcome evaluates the accept/reject/continue decision against the
// samples accumulated so far.
func (v *Verifier) Outcome() Outcome {
	t := math.Abs(v.T())
	if t >= tSuccess {
		return Accept
	}
	if v.Samples() > minSamplesBeforeGiveUp && t <= tGiveUp {
		return Reject
	}
	return Continue
}
