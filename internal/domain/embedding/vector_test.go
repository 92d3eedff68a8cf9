package embedding

import (
	"math"
	"testing"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"identical unit", []float32{1, 0}, []float32{1, 0}, 1},
		{"opposite", []float32{0, 1}, []float32{0, -1}, -1},
		{"mixed", []float32{0.5, 0.5}, []float32{0.5, -0.5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dot(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Dot() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	if n := Norm(v); math.Abs(n-1) > 1e-5 {
		t.Errorf("norm after Normalize = %v, want 1", n)
	}
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("unexpected direction after Normalize: %v", v)
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	v := []float32{0, 0, 0}
	Normalize(v)
	for i, x := range v {
		if x != 0 {
			t.Errorf("zero vector changed at %d: %v", i, x)
		}
	}
}

func TestNormalizeHighDimensional(t *testing.T) {
	v := make([]float32, 512)
	for i := range v {
		v[i] = float32(i%7) - 3
	}
	Normalize(v)
	if n := Norm(v); math.Abs(n-1) > 1e-5 {
		t.Errorf("norm = %v, want within 1e-5 of 1", n)
	}
}
