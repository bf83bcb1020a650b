package placement

import (
	"math"
	"math/rand/v2"
)

// RandomSource returns a pseudo-random index in [0, n). n is always > 0.
type RandomSource interface {
	IntN(n int) int
}

// RandomFunc adapts a plain function to RandomSource.
type RandomFunc func(n int) int

func (f RandomFunc) IntN(n int) int { return f(n) }

var globalRandom RandomSource = RandomFunc(rand.IntN)

// NewSeededSource returns a deterministic source, for reproducible placements.
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// childSource derives an independent source from parent so concurrent
// candidate generations never share one.
func childSource(parent RandomSource) RandomSource {
	return NewSeededSource(uint64(parent.IntN(math.MaxInt32)))
}

func pick[T any](r RandomSource, items []T) T {
	return items[r.IntN(len(items))]
}
