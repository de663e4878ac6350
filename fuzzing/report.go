// Package fuzzing implements the two end-user campaigns built on top of
// the wasm executor, optimizer, and dudect verifier: fuzz (evolve a
// timing-difference witness from scratch) and check (verify one
// specific candidate pair). Grounded on original_source/src/fuzz.rs and
// original_source/src/check.rs.
package fuzzing

import (
	"encoding/hex"
	"fmt"

	"github.com/sidefuzz/sidefuzz/optimizer"
)

// FormatProgress renders one evolution generation's report line. A
// non-positive best score means no timing difference has been observed
// yet.
func FormatProgress(best optimizer.ScoredPair) string {
	if best.Score <= 0 {
		return "Looks constant-time so far..."
	}
	return fmt.Sprintf("%d %s %s", int64(best.Score), hex.EncodeToString(best.Pair.First), hex.EncodeToString(best.Pair.Second))
}

// FormatChecking renders the banner printed right before a candidate
// pair enters verification.
func FormatChecking(first, second []byte) string {
	return fmt.Sprintf("Checking %s %s", hex.EncodeToString(first), hex.EncodeToString(second))
}

// FormatVerifierProgress renders one verifier sampling batch's report
// line.
func FormatVerifierProgress(samples uint64, t, confidence float64) string {
	return fmt.Sprintf("samples: %d, t-value: %v, confidence: %v%%", samples, t, confidence)
}

// FormatWitness renders the final accepted-witness report, fuzz's form
// (no per-side instruction counts; check.go has its own richer form).
func FormatWitness(score float64, confidence float64, first, second []byte) string {
	return fmt.Sprintf(
		"Found timing difference of %d instructions between these two inputs with %v%% confidence:\ninput 1: %s\ninput 2: %s",
		int64(score), confidence, hex.EncodeToString(first), hex.EncodeToString(second))
}

// FormatWitnessWithCounts renders check's accepted-witness report,
// including each side's raw instruction count.
func FormatWitnessWithCounts(score, confidence float64, first []byte, firstCount uint64, second []byte, secondCount uint64) string {
	return fmt.Sprintf(
		"Found timing difference of %d instructions between these two inputs with %v%% confidence:\ninput 1: %s (%d instructions) \ninput 2: %s (%d instructions)",
		int64(score), confidence, hex.EncodeToString(first), firstCount, hex.EncodeToString(second), secondCount)
}

const (
	rejectedDuringFuzz  = "Candidate input pair rejected: t-statistic small after many samples. Continuing to evolve candidate inputs."
	rejectedDuringCheck = "Candidate input pair rejected: t-statistic small after many samples. Target is probably constant time."
)
