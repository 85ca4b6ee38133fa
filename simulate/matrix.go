package simulate

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// DistributionMatrix is a dense row-major view of a LandingDistribution:
// Buf[item*Cols+pos] holds the probability that the item starting at
// initial position item landed at final position pos. Pairs never observed
// hold 0.
type DistributionMatrix struct {
	Buf  []float32
	Rows int
	Cols int
}

// Matrix flattens the distribution into an n x n dense matrix. n must cover
// every position present in the distribution; a simulation over n items
// satisfies that by construction.
func (d LandingDistribution) Matrix(n int) (*DistributionMatrix, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: n must be >= 0, got %d", ErrInvalidParameter, n)
	}
	m := &DistributionMatrix{
		Buf:  make([]float32, n*n),
		Rows: n,
		Cols: n,
	}
	for item, landings := range d {
		if item < 0 || item >= n {
			return nil, fmt.Errorf("%w: initial position %d outside [0,%d)", ErrShapeMismatch, item, n)
		}
		for pos, p := range landings {
			if pos < 0 || pos >= n {
				return nil, fmt.Errorf("%w: final position %d outside [0,%d)", ErrShapeMismatch, pos, n)
			}
			m.Buf[item*n+pos] = float32(p)
		}
	}
	return m, nil
}

// At returns the probability stored for the given initial and final
// position.
func (m *DistributionMatrix) At(item, pos int) float32 {
	return m.Buf[item*m.Cols+pos]
}

// ToGomlxTensor converts the matrix to a gomlx tensor so downstream ML
// pipelines can consume the landing probabilities directly.
func (m *DistributionMatrix) ToGomlxTensor() (*tensors.Tensor, error) {
	if m.Rows == 0 || m.Cols == 0 {
		empty := make([][]float32, 0)
		return tensors.FromAnyValue(empty), nil
	}
	data := make([][]float32, m.Rows)
	for i := 0; i < m.Rows; i++ {
		data[i] = m.Buf[i*m.Cols : (i+1)*m.Cols]
	}
	t := tensors.FromAnyValue(data)
	return t, nil
}
