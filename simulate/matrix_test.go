package simulate

import (
	"errors"
	"testing"
)

func TestMatrixFromDistribution(t *testing.T) {
	dist := make(LandingDistribution)
	dist.add(0, 0, 0.75)
	dist.add(0, 1, 0.25)
	dist.add(1, 0, 0.25)
	dist.add(1, 1, 0.75)

	m, err := dist.Matrix(2)
	if err != nil {
		t.Fatalf("Matrix returned error: %v", err)
	}
	if m.Rows != 2 || m.Cols != 2 || len(m.Buf) != 4 {
		t.Fatalf("unexpected matrix shape: rows=%d cols=%d len=%d", m.Rows, m.Cols, len(m.Buf))
	}
	if m.At(0, 0) != 0.75 || m.At(0, 1) != 0.25 || m.At(1, 0) != 0.25 || m.At(1, 1) != 0.75 {
		t.Fatalf("unexpected matrix contents: %v", m.Buf)
	}
}

func TestMatrixFillsUnobservedWithZero(t *testing.T) {
	dist := make(LandingDistribution)
	dist.add(0, 2, 1.0)

	m, err := dist.Matrix(3)
	if err != nil {
		t.Fatalf("Matrix returned error: %v", err)
	}
	if m.At(0, 0) != 0 || m.At(0, 1) != 0 || m.At(0, 2) != 1 {
		t.Fatalf("unexpected row 0: %v", m.Buf[:3])
	}
	for pos := 0; pos < 3; pos++ {
		if m.At(1, pos) != 0 || m.At(2, pos) != 0 {
			t.Fatalf("expected zero rows for unobserved items, got %v", m.Buf)
		}
	}
}

func TestMatrixRejectsOutOfRangePositions(t *testing.T) {
	dist := make(LandingDistribution)
	dist.add(5, 0, 1.0)
	if _, err := dist.Matrix(3); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch for out-of-range item, got %v", err)
	}

	dist = make(LandingDistribution)
	dist.add(0, 5, 1.0)
	if _, err := dist.Matrix(3); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch for out-of-range landing, got %v", err)
	}

	if _, err := dist.Matrix(-1); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for negative n, got %v", err)
	}
}

func TestToGomlxTensor(t *testing.T) {
	dist := make(LandingDistribution)
	dist.add(0, 0, 1.0)
	dist.add(1, 1, 1.0)

	m, err := dist.Matrix(2)
	if err != nil {
		t.Fatalf("Matrix returned error: %v", err)
	}
	tensor, err := m.ToGomlxTensor()
	if err != nil {
		t.Fatalf("ToGomlxTensor returned error: %v", err)
	}
	if tensor == nil {
		t.Fatal("expected a non-nil tensor")
	}
}

func TestToGomlxTensorEmpty(t *testing.T) {
	m, err := make(LandingDistribution).Matrix(0)
	if err != nil {
		t.Fatalf("Matrix returned error: %v", err)
	}
	tensor, err := m.ToGomlxTensor()
	if err != nil {
		t.Fatalf("ToGomlxTensor returned error: %v", err)
	}
	if tensor == nil {
		t.Fatal("expected a non-nil tensor for the empty matrix")
	}
}
