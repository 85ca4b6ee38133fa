// Package simulate measures the statistical behavior of a shuffle
// procedure. It runs many independent trials over an identity sequence and
// aggregates, for each initial position, the empirical distribution of the
// positions items land in. The aggregated LandingDistribution converges, as
// the trial count grows, to the true distribution implied by the shuffle.
package simulate

import (
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"
)

// ErrInvalidParameter is returned for out-of-range simulation arguments:
// a non-positive trial count or a negative item count.
var ErrInvalidParameter = errors.New("invalid parameter")

// ErrShapeMismatch is returned when a shuffle procedure breaks the
// bijection over the index set: the resulting arrangement has the wrong
// length, drops an index, or repeats one. A corrupted permutation would
// silently bias the statistics, so it is detected after every trial.
var ErrShapeMismatch = errors.New("shuffle output is not a permutation of the input")

// ShuffleFunc rearranges a sequence of item indices. It may return the
// rearranged sequence, or mutate items in place and return nil; the
// aggregator treats both conventions as equivalent.
type ShuffleFunc func(items []int) ([]int, error)

// LandingDistribution maps an initial position to the empirical probability
// of each final position observed across all trials. For every initial
// position present, the probabilities sum to 1 within floating tolerance
// once a simulation completes.
type LandingDistribution map[int]map[int]float64

// Items returns the initial positions present in the distribution in
// increasing order.
func (d LandingDistribution) Items() []int {
	items := make([]int, 0, len(d))
	for item := range d {
		items = append(items, item)
	}
	sort.Ints(items)
	return items
}

// Landings returns the final positions observed for the given initial
// position in increasing order. Unobserved items yield an empty slice.
func (d LandingDistribution) Landings(item int) []int {
	positions := make([]int, 0, len(d[item]))
	for pos := range d[item] {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return positions
}

// Prob returns the estimated probability that the item starting at initial
// position item landed at final position pos. Unobserved pairs yield 0.
func (d LandingDistribution) Prob(item, pos int) float64 {
	return d[item][pos]
}

// add accumulates mass for one observation.
func (d LandingDistribution) add(item, pos int, mass float64) {
	landings, ok := d[item]
	if !ok {
		landings = make(map[int]float64)
		d[item] = landings
	}
	landings[pos] += mass
}

// Simulate runs nSimulations independent trials of the shuffle procedure
// over the identity sequence [0, 1, ..., nItems-1] and aggregates where
// each item lands. Each observation contributes 1/nSimulations to the
// corresponding entry of the returned distribution.
//
// nItems = 0 is not an error; it yields an empty distribution.
func Simulate(shuffle ShuffleFunc, nItems, nSimulations int) (LandingDistribution, error) {
	if err := validateArgs(nItems, nSimulations); err != nil {
		return nil, err
	}

	dist := make(LandingDistribution, nItems)
	freq := 1.0 / float64(nSimulations)

	// Scratch buffers reused across trials.
	seen := make([]bool, nItems)
	positions := make([]int, nItems)

	for trial := 0; trial < nSimulations; trial++ {
		items := identity(nItems)
		result, err := shuffle(items)
		if err != nil {
			return nil, fmt.Errorf("trial %d: shuffle failed: %w", trial, err)
		}
		if result == nil {
			// In-place convention: the shuffle mutated items directly.
			result = items
		}
		if err := finalPositions(result, nItems, seen, positions); err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}
		for item := 0; item < nItems; item++ {
			dist.add(item, positions[item], freq)
		}
	}
	return dist, nil
}

// SimulateParallel is the concurrent counterpart of Simulate. Trials are
// statistically independent, so they are fanned out over a pool of workers.
// Every trial gets its own random source derived from a per-trial seed
// drawn up front from a master RNG seeded with seed, keeping runs
// reproducible regardless of scheduling. newShuffle builds the shuffle
// procedure around that per-trial source.
//
// workers <= 0 selects runtime.NumCPU(). Partial results are merged by
// plain summation, which is order-independent, and scaled once at the end,
// so parallel runs accumulate exactly the same mass as serial ones.
func SimulateParallel(newShuffle func(rng *rand.Rand) ShuffleFunc, nItems, nSimulations, workers int, seed int64) (LandingDistribution, error) {
	if err := validateArgs(nItems, nSimulations); err != nil {
		return nil, err
	}
	if newShuffle == nil {
		return nil, fmt.Errorf("%w: newShuffle must not be nil", ErrInvalidParameter)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > nSimulations {
		workers = nSimulations
	}

	// Precompute independent seeds using the master RNG (serial access).
	master := rand.New(rand.NewSource(seed))
	seeds := make([]int64, nSimulations)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	jobs := make(chan int, nSimulations)
	partials := make([]LandingDistribution, workers)
	workerErrs := make([]error, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()

			// Per-worker accumulator counts raw observations; the final
			// merge scales them by 1/nSimulations in one place.
			counts := make(LandingDistribution, nItems)
			seen := make([]bool, nItems)
			positions := make([]int, nItems)

			for trial := range jobs {
				rng := rand.New(rand.NewSource(seeds[trial]))
				shuffle := newShuffle(rng)

				items := identity(nItems)
				result, err := shuffle(items)
				if err != nil {
					workerErrs[w] = fmt.Errorf("trial %d: shuffle failed: %w", trial, err)
					return
				}
				if result == nil {
					result = items
				}
				if err := finalPositions(result, nItems, seen, positions); err != nil {
					workerErrs[w] = fmt.Errorf("trial %d: %w", trial, err)
					return
				}
				for item := 0; item < nItems; item++ {
					counts.add(item, positions[item], 1)
				}
			}
			partials[w] = counts
		}(w)
	}

	for i := 0; i < nSimulations; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range workerErrs {
		if err != nil {
			return nil, err
		}
	}

	dist := make(LandingDistribution, nItems)
	freq := 1.0 / float64(nSimulations)
	for _, counts := range partials {
		for item, landings := range counts {
			for pos, c := range landings {
				dist.add(item, pos, c*freq)
			}
		}
	}
	return dist, nil
}

func validateArgs(nItems, nSimulations int) error {
	if nSimulations <= 0 {
		return fmt.Errorf("%w: nSimulations must be > 0, got %d", ErrInvalidParameter, nSimulations)
	}
	if nItems < 0 {
		return fmt.Errorf("%w: nItems must be >= 0, got %d", ErrInvalidParameter, nItems)
	}
	return nil
}

func identity(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

// finalPositions verifies that result is a bijection over {0, ..., n-1} and
// fills positions so positions[item] is the final position of item. seen
// and positions are caller-owned scratch of length n.
func finalPositions(result []int, n int, seen []bool, positions []int) error {
	if len(result) != n {
		return fmt.Errorf("%w: got length %d, want %d", ErrShapeMismatch, len(result), n)
	}
	for i := range seen {
		seen[i] = false
	}
	for pos, item := range result {
		if item < 0 || item >= n {
			return fmt.Errorf("%w: element %d at position %d outside [0,%d)", ErrShapeMismatch, item, pos, n)
		}
		if seen[item] {
			return fmt.Errorf("%w: element %d appears more than once", ErrShapeMismatch, item)
		}
		seen[item] = true
		positions[item] = pos
	}
	return nil
}
