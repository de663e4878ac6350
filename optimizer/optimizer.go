// Package optimizer evolves pairs of fuzz inputs toward a maximal
// difference in instruction count, the signal a timing side channel
// would actually exploit. Grounded on original_source/src/optimizer.rs,
// with the population-shape constants replaced by the ones this
// implementation is specified to use: the original's own constants
// (POPULATION_SIZE=100, CLONE_RATIO=0.25, BREEDING_POOL=0.50) are not
// carried over.
package optimizer

import (
	"math"
	"math/rand"
	"sort"

	"github.com/sidefuzz/sidefuzz/wasm"
)

const (
	populationSize      = 200
	mutationRate        = 0.05
	largeMutationRatio  = 0.25
	cloneRatio          = 0.10
	breedingPool        = 0.25
)

// InputPair is the two fuzz inputs being compared for a timing
// difference.
type InputPair struct {
	First, Second []byte
}

// ScoredPair pairs an InputPair with its fitness: the absolute
// difference in instruction count between the two sides. A trap on
// either side scores negative infinity, pushing the pair to the bottom
// of the population without special-casing it elsewhere.
type ScoredPair struct {
	Pair           InputPair
	Score          float64
	Highest, Lowest uint64
}

// Generate runs both sides of pair through exec and scores the result.
// Grounded on original_source/src/util.rs's ScoredInputPair::generate.
func Generate(exec *wasm.Executor, pair InputPair) ScoredPair {
	n1, err := exec.CountInstructions(pair.First)
	if err != nil {
		return ScoredPair{Pair: pair, Score: math.Inf(-1)}
	}
	n2, err := exec.CountInstructions(pair.Second)
	if err != nil {
		return ScoredPair{Pair: pair, Score: math.Inf(-1)}
	}
	hi, lo := n1, n2
	if n2 > n1 {
		hi, lo = n2, n1
	}
	return ScoredPair{Pair: pair, Score: float64(hi - lo), Highest: hi, Lowest: lo}
}

// Optimizer holds one generation of scored input pairs and advances it
// one step at a time via elitism, tournament-free uniform-crossover
// breeding, and occasional mutation.
type Optimizer struct {
	exec       *wasm.Executor
	inputLen   int
	population []ScoredPair
	rng        *rand.Rand
}

// New seeds a fresh population of populationSize random input pairs of
// length inputLen, each scored against exec.
func New(exec *wasm.Executor, inputLen int, rng *rand.Rand) *Optimizer {
	o := &Optimizer{exec: exec, inputLen: inputLen, rng: rng}
	o.population = make([]ScoredPair, populationSize)
	for i := range o.population {
		o.population[i] = Generate(exec, randomPair(inputLen, rng))
	}
	o.sortByScore()
	return o
}

func (o *Optimizer) sortByScore() {
	sort.Slice(o.population, func(i, j int) bool {
		return o.population[i].Score > o.population[j].Score
	})
}

// Best returns the current generation's top-scoring pair.
func (o *Optimizer) Best() ScoredPair { return o.population[0] }

// Step advances the population by one generation and returns the new
// generation's best pair.
func (o *Optimizer) Step() ScoredPair {
	numClones := int(cloneRatio * populationSize)
	if numClones < 1 {
		numClones = 1
	}
	poolSize := int(breedingPool * populationSize)
	if poolSize < 2 {
		poolSize = 2
	}
	pool := o.population[:poolSize]

	next := make([]ScoredPair, 0, populationSize)
	next = append(next, o.population[:numClones]...)

	for len(next) < populationSize {
		a := pool[o.rng.Intn(len(pool))]
		b := pool[o.rng.Intn(len(pool))]
		child := InputPair{
			First:  breed(a.Pair.First, b.Pair.First, o.rng),
			Second: breed(a.Pair.Second, b.Pair.Second, o.rng),
		}
		if o.rng.Float64() < mutationRate {
			if o.rng.Intn(2) == 0 {
				child.First = mutate(child.First, o.rng)
			} else {
				child.Second = mutate(child.Second, o.rng)
			}
		}
		next = append(next, Generate(o.exec, child))
	}

	o.population = next
	o.sortByScore()
	return o.population[0]
}

func randomIndividual(n int, rng *rand.Rand) []byte {
	b := make([]byte, n)
	rng.Read(b)
	return b
}

func randomPair(n int, rng *rand.Rand) InputPair {
	return InputPair{First: randomIndividual(n, rng), Second: randomIndividual(n, rng)}
}

// breed performs per-byte uniform crossover: each output byte is taken
// from a or b with equal probability. Grounded on optimizer.rs's
// breed_slice.
func breed(a, b []byte, rng *rand.Rand) []byte {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		if rng.Intn(2) == 0 {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}
	return out
}

// mutate alters exactly one random byte of in, either replacing it
// entirely (with probability largeMutationRatio) or nudging it by one
// via wrapping increment/decrement. Grounded on optimizer.rs's
// mutate_slice.
func mutate(in []byte, rng *rand.Rand) []byte {
	if len(in) == 0 {
		return in
	}
	out := append([]byte(nil), in...)
	idx := rng.Intn(len(out))
	if rng.Float64() < largeMutationRatio {
		var b [1]byte
		rng.Read(b[:])
		out[idx] = b[0]
	} else if rng.Intn(2) == 0 {
		out[idx]++
	} else {
		out[idx]--
	}
	return out
}
