package utils

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	norm := math.Sqrt(float64(v[0]*v[0] + v[1]*v[1]))
	if math.Abs(norm-1.0) > 1e-6 {
		t.Errorf("norm = %f, want 1.0", norm)
	}

	zero := []float32{0, 0, 0}
	NormalizeL2(zero)
	for i, x := range zero {
		if x != 0 {
			t.Errorf("zero vector changed at %d: %f", i, x)
		}
	}
}

func TestDotProduct(t *testing.T) {
	if got := DotProduct([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal dot = %f, want 0", got)
	}
	if got := DotProduct([]float32{1, 0}, []float32{1, 0}); got != 1 {
		t.Errorf("identical dot = %f, want 1", got)
	}
	if got := DotProduct([]float32{1}, []float32{1, 2}); got != 0 {
		t.Errorf("mismatched lengths dot = %f, want 0", got)
	}
}
