// Package random provides the seedable draw source every generator consumes.
//
// A Source is not safe for concurrent use. Determinism depends on the order of
// draws, so each goroutine must own its Source; use Derive to split one seed into
// independent streams.
package random

import (
	"math/rand/v2"
	"strings"
)

const hexDigits = "0123456789ABCDEF"

// Source is a deterministic pseudo-random generator.
type Source struct {
	rng  *rand.Rand
	seed uint64
}

// New returns a Source whose entire draw sequence is fixed by seed.
func New(seed int64) *Source {
	s := uint64(seed)
	return &Source{
		rng:  rand.New(rand.NewPCG(s, splitmix(s))),
		seed: s,
	}
}

// Derive returns an independent Source for the given stream number. The same
// parent seed and stream always yield the same sequence, regardless of how many
// draws the parent has made.
func (s *Source) Derive(stream uint64) *Source {
	child := s.seed + stream
	return &Source{
		rng:  rand.New(rand.NewPCG(child, splitmix(child^(stream<<32)))),
		seed: child,
	}
}

// splitmix scrambles a seed into a second PCG word.
func splitmix(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

// Float returns a value in [0,1).
func (s *Source) Float() float64 {
	return s.rng.Float64()
}

// Uniform returns a value in [lo,hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// Gaussian returns a normally distributed value.
func (s *Source) Gaussian(mean, std float64) float64 {
	return mean + std*s.rng.NormFloat64()
}

// IntRange returns an integer in [lo,hi], both ends inclusive.
func (s *Source) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.IntN(hi-lo+1)
}

// Int64N returns a value in [0,n).
func (s *Source) Int64N(n int64) int64 {
	if n <= 0 {
		return 0
	}
	return s.rng.Int64N(n)
}

// Bool returns true with probability p.
func (s *Source) Bool(p float64) bool {
	return s.rng.Float64() < p
}

// Hex returns n upper-case hexadecimal characters.
func (s *Source) Hex(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(hexDigits[s.rng.IntN(len(hexDigits))])
	}
	return b.String()
}

// Shuffle permutes n elements in place through swap.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}

// Pick returns one element of items chosen uniformly.
func Pick[T any](s *Source, items []T) T {
	return items[s.rng.IntN(len(items))]
}

// Weighted returns one element of items chosen with probability proportional to
// its weight. A weight set with no positive total returns the first item.
func Weighted[T any](s *Source, items []T, weights []float64) T {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return items[0]
	}

	r := s.rng.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if r < w {
			return items[i]
		}
		r -= w
	}
	// Float rounding can leave r marginally positive after the loop.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return items[i]
		}
	}
	return items[0]
}

// PickExcept picks uniformly from items after removing every excluded value. If
// nothing survives the filter, the first item is returned.
func PickExcept[T comparable](s *Source, items []T, exclude ...T) T {
	candidates := make([]T, 0, len(items))
outer:
	for _, it := range items {
		for _, ex := range exclude {
			if it == ex {
				continue outer
			}
		}
		candidates = append(candidates, it)
	}
	if len(candidates) == 0 {
		return items[0]
	}
	return Pick(s, candidates)
}
