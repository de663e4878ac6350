package fuzzing

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/sidefuzz/sidefuzz/dudect"
	"github.com/sidefuzz/sidefuzz/log"
	"github.com/sidefuzz/sidefuzz/optimizer"
	"github.com/sidefuzz/sidefuzz/wasm"
)

const (
	generationsPerRound = 500
	windowSize          = 10
	verifierBatchSize   = 10_000
)

// FuzzResult is the outcome of a fuzz campaign: either a confirmed
// timing-difference witness, or no result if the campaign was
// interrupted before one was found.
type FuzzResult struct {
	Accepted   bool
	Score      float64
	Confidence float64
	First      []byte
	Second     []byte
}

// RunFuzz evolves input pairs against exec, verifying any local optimum
// it finds, until a witness is accepted. One progress line is written to
// out per round of 500 optimizer steps; the campaign itself never
// terminates on its own short of an accept, matching a fuzz campaign's
// job of running until it finds something or the operator stops it.
func RunFuzz(exec *wasm.Executor, out io.Writer) (FuzzResult, error) {
	logger := log.Module("fuzzing")
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	estimate := exec.MeasureTime() * 40 * generationsPerRound * populationSizeHint
	fmt.Fprintf(out, "Fuzzing will take approximately %s\n", estimate)
	fmt.Fprintln(out, "Evolving candidate input pairs")

	opt := optimizer.New(exec, int(exec.InputLength()), rng)

	window := make([]float64, 0, windowSize)
	var best optimizer.ScoredPair // zero default: Score 0

	for {
		for step := 0; step < generationsPerRound; step++ {
			opt.Step()
		}
		popBest := opt.Best()
		fmt.Fprintln(out, FormatProgress(popBest))

		window = append(window, popBest.Score)
		if len(window) > windowSize {
			window = window[1:]
		}

		if popBest.Score > best.Score {
			best = popBest
		}

		if localOptimum(window, best.Score) {
			logger.Debug("local optimum detected", "score", best.Score)
			result, err := verify(exec, best, out)
			switch {
			case err != nil:
				// A trap during verification counts as a rejection.
				logger.Debug("verification aborted", "err", err)
			case result.Accepted:
				return result, nil
			default:
				fmt.Fprintln(out, rejectedDuringFuzz)
			}
			best = optimizer.ScoredPair{}
			window = window[:0]
		}
	}
}

// populationSizeHint mirrors the optimizer's populationSize constant for
// the runtime estimate banner without exporting it from package
// optimizer, where it is an implementation detail.
const populationSizeHint = 200

func localOptimum(window []float64, best float64) bool {
	if len(window) < windowSize || best <= 0 {
		return false
	}
	for _, s := range window {
		if s != best {
			return false
		}
	}
	return true
}

// verify runs the dudect verifier against a fresh, independent module
// instance (so verification never races with the optimizer's own
// executor) until it reaches Accept or Reject.
func verify(exec *wasm.Executor, best optimizer.ScoredPair, out io.Writer) (FuzzResult, error) {
	fmt.Fprintln(out, FormatChecking(best.Pair.First, best.Pair.Second))

	verifierExec, err := exec.Clone()
	if err != nil {
		return FuzzResult{}, err
	}
	v := dudect.New(verifierExec, best.Pair.First, best.Pair.Second)

	for {
		if err := v.Sample(verifierBatchSize); err != nil {
			return FuzzResult{}, err
		}
		fmt.Fprintln(out, FormatVerifierProgress(v.Samples(), v.T(), v.Confidence()))

		switch v.Outcome() {
		case dudect.Accept:
			fmt.Fprintln(out, FormatWitness(best.Score, v.Confidence(), best.Pair.First, best.Pair.Second))
			return FuzzResult{
				Accepted:   true,
				Score:      best.Score,
				Confidence: v.Confidence(),
				First:      best.Pair.First,
				Second:     best.Pair.Second,
			}, nil
		case dudect.Reject:
			return FuzzResult{Accepted: false}, nil
		}
	}
}
