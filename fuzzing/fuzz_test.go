package fuzzing

import (
	"testing"

	"github.com/sidefuzz/sidefuzz/optimizer"
)

func TestFormatProgress_NonPositiveScore(t *testing.T) {
	got := FormatProgress(optimizer.ScoredPair{Score: 0})
	if got != "Looks constant-time so far..." {
		t.Fatalf("got %q", got)
	}
}

func TestFormatProgress_PositiveScore(t *testing.T) {
	got := FormatProgress(optimizer.ScoredPair{
		Score: 12,
		Pair:  optimizer.InputPair{First: []byte{0xAB}, Second: []byte{0xCD}},
	})
	want := "12 ab cd"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLocalOptimum_RequiresFullWindowOfEqualPositiveScores(t *testing.T) {
	if localOptimum([]float64{1, 2, 3}, 3) {
		t.Fatalf("short window should not count as a local optimum")
	}
	stagnant := make([]float64, windowSize)
	for i := range stagnant {
		stagnant[i] = 5
	}
	if !localOptimum(stagnant, 5) {
		t.Fatalf("a full window of equal positive scores should be a local optimum")
	}
	zero := make([]float64, windowSize)
	if localOptimum(zero, 0) {
		t.Fatalf("a window stuck at zero should not count as a local optimum")
	}
}
