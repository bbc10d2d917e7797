package seating

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Shuffler is the single source of randomness for placement.  Seed it
// with a fixed source in tests to make fills reproducible.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewShuffler wraps src.  A nil src seeds from the clock.
func NewShuffler(src rand.Source) *Shuffler {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>17|1)
	}
	return &Shuffler{rng: rand.New(src)}
}

// NewSeededShuffler is a convenience for deterministic runs.
func NewSeededShuffler(seed uint64) *Shuffler {
	return NewShuffler(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// IntN returns a uniform int in [0, n).  n must be positive.
func (s *Shuffler) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Coin flips an unbiased coin.
func (s *Shuffler) Coin() bool { return s.IntN(2) == 1 }

// ShuffleInPlace permutes items with Fisher-Yates: walking from the last
// index down, each element is swapped with a uniform index in [0, i].
func ShuffleInPlace[T any](s *Shuffler, items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(items) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// Shuffle returns a shuffled copy and leaves items untouched.
func Shuffle[T any](s *Shuffler, items []T) []T {
	out := append([]T(nil), items...)
	ShuffleInPlace(s, out)
	return out
}
