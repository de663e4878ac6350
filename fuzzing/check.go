package fuzzing

import (
	"errors"
	"fmt"
	"io"

	"github.com/sidefuzz/sidefuzz/dudect"
	"github.com/sidefuzz/sidefuzz/wasm"
)

// ErrInputsDifferentSizes is returned when the two candidate inputs
// passed to check are not the same length.
var ErrInputsDifferentSizes = errors.New("fuzzing: the two inputs have different sizes")

// ErrInputWrongSize is returned when a candidate input's length does
// not match the guest's declared fuzz length.
var ErrInputWrongSize = errors.New("fuzzing: wrong size")

// CheckResult is the outcome of verifying one specific candidate pair.
type CheckResult struct {
	Accepted    bool
	Confidence  float64
	FirstCount  uint64
	SecondCount uint64
}

// RunCheck verifies whether first and second produce a statistically
// significant instruction-count difference on exec. Unlike RunFuzz, it
// always terminates: a Reject is as final an answer as an Accept.
func RunCheck(exec *wasm.Executor, first, second []byte, out io.Writer) (CheckResult, error) {
	if len(first) != len(second) {
		return CheckResult{}, ErrInputsDifferentSizes
	}
	if uint32(len(first)) != exec.InputLength() {
		return CheckResult{}, fmt.Errorf("%w; expected %d", ErrInputWrongSize, exec.InputLength())
	}

	scored := generateCounts(exec, first, second)
	if scored.err != nil {
		return CheckResult{}, scored.err
	}

	v := dudect.New(exec, first, second)
	for {
		if err := v.Sample(verifierBatchSize); err != nil {
			// A trap during verification counts as a rejection of the pair.
			return CheckResult{Accepted: false}, nil
		}
		fmt.Fprintln(out, FormatVerifierProgress(v.Samples(), v.T(), v.Confidence()))

		switch v.Outcome() {
		case dudect.Accept:
			score := float64(scored.highest - scored.lowest)
			fmt.Fprintln(out, FormatWitnessWithCounts(score, v.Confidence(), first, scored.firstCount, second, scored.secondCount))
			return CheckResult{
				Accepted:    true,
				Confidence:  v.Confidence(),
				FirstCount:  scored.firstCount,
				SecondCount: scored.secondCount,
			}, nil
		case dudect.Reject:
			fmt.Fprintln(out, rejectedDuringCheck)
			return CheckResult{Accepted: false}, nil
		}
	}
}

type countPair struct {
	firstCount, secondCount uint64
	highest, lowest         uint64
	err                     error
}

func generateCounts(exec *wasm.Executor, first, second []byte) countPair {
	n1, err := exec.CountInstructions(first)
	if err != nil {
		return countPair{err: err}
	}
	n2, err := exec.CountInstructions(second)
	if err != nil {
		return countPair{err: err}
	}
	hi, lo := n1, n2
	if n2 > n1 {
		hi, lo = n2, n1
	}
	return countPair{firstCount: n1, secondCount: n2, highest: hi, lowest: lo}
}
