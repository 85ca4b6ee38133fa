// Package shuffle implements an elitist shuffle: a random permutation that
// is biased toward keeping highly ranked items near the front of the
// sequence. Rank 0 is the highest rank. The strength of the bias is
// controlled by a single non-negative inequality exponent; 0 degenerates to
// a uniform random permutation.
package shuffle

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ErrInvalidParameter is returned when a permutation is requested with
// parameters outside the supported range, currently a negative inequality
// exponent. Negative exponents would blow up the weights of low-ranked
// items (their base scores approach zero) and leave normalization
// undefined.
var ErrInvalidParameter = errors.New("invalid parameter")

// Weights computes the L1-normalized sampling weights for a sequence of n
// ranked items. Position i gets the base score 1 - i/n, strictly decreasing
// and never reaching zero, raised to the inequality exponent and then
// scaled so the weights sum to 1.
//
// inequality = 0 yields equal weights. n = 0 yields an empty vector.
func Weights(n int, inequality float64) ([]float64, error) {
	if inequality < 0 {
		return nil, fmt.Errorf("%w: inequality must be >= 0, got %v", ErrInvalidParameter, inequality)
	}
	if n == 0 {
		return nil, nil
	}

	weights := make([]float64, n)
	total := 0.0
	for i := 0; i < n; i++ {
		w := math.Pow(1.0-float64(i)/float64(n), inequality)
		weights[i] = w
		total += w
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights, nil
}

// Elitist draws a random permutation of items biased toward preserving the
// original order. The permutation is sampled without replacement: one item
// at a time, with probability proportional to the remaining weights among
// the not-yet-drawn items. The exponent may be fractional but must not be
// negative.
//
// The random source is explicit so callers can reproduce draws from a fixed
// seed. An empty input yields an empty output.
func Elitist[T any](rng *rand.Rand, items []T, inequality float64) ([]T, error) {
	weights, err := Weights(len(items), inequality)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []T{}, nil
	}

	// Pool of not-yet-drawn positions. Sampling against the remaining total
	// weight is equivalent to renormalizing the pool after every draw.
	pool := make([]int, len(items))
	remaining := 0.0
	for i := range pool {
		pool[i] = i
		remaining += weights[i]
	}

	out := make([]T, 0, len(items))
	for len(pool) > 0 {
		target := rng.Float64() * remaining
		acc := 0.0
		// Fall back to the last pool entry so float round-off in the
		// cumulative scan can never leave the draw unassigned.
		choice := len(pool) - 1
		for pi, idx := range pool {
			acc += weights[idx]
			if target <= acc {
				choice = pi
				break
			}
		}

		idx := pool[choice]
		out = append(out, items[idx])
		remaining -= weights[idx]
		pool = append(pool[:choice], pool[choice+1:]...)
	}
	return out, nil
}

// Shuffler draws elitist permutations with a fixed inequality exponent and
// an injected random source.
type Shuffler struct {
	Inequality float64

	// rng is used for every draw. It is injected at construction so that
	// repeated simulations are reproducible from a fixed seed.
	rng *rand.Rand
}

// NewShuffler creates a Shuffler. inequality must be >= 0. If rng is nil a
// time-seeded source is used; pass a seeded source for reproducible draws.
func NewShuffler(inequality float64, rng *rand.Rand) (*Shuffler, error) {
	if inequality < 0 {
		return nil, fmt.Errorf("%w: inequality must be >= 0, got %v", ErrInvalidParameter, inequality)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Shuffler{
		Inequality: inequality,
		rng:        rng,
	}, nil
}

// Ints draws one biased permutation of items. The signature matches the
// shuffle procedure consumed by the simulate package.
func (s *Shuffler) Ints(items []int) ([]int, error) {
	if s == nil {
		return nil, errors.New("Shuffler is nil")
	}
	return Elitist(s.rng, items, s.Inequality)
}
