package mat

import (
	"math"
	"testing"
)

func TestMul(t *testing.T) {
	a := New(2, 3, []float64{1, 2, 3, 4, 5, 6})
	b := New(3, 2, []float64{7, 8, 9, 10, 11, 12})

	c := a.Mul(b)
	want := [][]float64{{58, 64}, {139, 154}}

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if c.At(i, j) != want[i][j] {
				t.Errorf("c[%d][%d] = %f, want %f", i, j, c.At(i, j), want[i][j])
			}
		}
	}
}

func TestMulVec(t *testing.T) {
	a := New(2, 2, []float64{1, 2, 3, 4})
	v := a.MulVec([]float64{5, 6})

	if v[0] != 17 || v[1] != 39 {
		t.Errorf("MulVec = %v, want [17 39]", v)
	}
}

func TestTranspose(t *testing.T) {
	a := New(2, 3, []float64{1, 2, 3, 4, 5, 6})
	at := a.T()

	r, c := at.Dims()
	if r != 3 || c != 2 {
		t.Fatalf("transpose dims = %dx%d, want 3x2", r, c)
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			if at.At(j, i) != a.At(i, j) {
				t.Errorf("at[%d][%d] != a[%d][%d]", j, i, i, j)
			}
		}
	}
}

func TestIdentityMul(t *testing.T) {
	a := New(3, 3, []float64{2, -1, 0, -1, 2, -1, 0, -1, 2})
	p := Identity(3).Mul(a)

	if p.Sub(a).NormFrob() != 0 {
		t.Error("I*A should equal A exactly")
	}
}

func TestNormFrob(t *testing.T) {
	a := New(2, 2, []float64{3, 0, 0, 4})
	if got := a.NormFrob(); math.Abs(got-5) > 1e-15 {
		t.Errorf("NormFrob = %f, want 5", got)
	}
}

func TestOperandsNotMutated(t *testing.T) {
	a := New(2, 2, []float64{1, 2, 3, 4})
	b := New(2, 2, []float64{5, 6, 7, 8})

	_ = a.Add(b)
	_ = a.Mul(b)
	_ = a.Scale(2)
	_ = a.T()

	want := []float64{1, 2, 3, 4}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if a.At(i, j) != want[i*2+j] {
				t.Fatalf("operand a mutated: a[%d][%d] = %f", i, j, a.At(i, j))
			}
		}
	}
}

func TestNewCopiesData(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	a := New(2, 2, data)
	data[0] = 99

	if a.At(0, 0) != 1 {
		t.Error("New should copy its data slice")
	}
}

func TestShapePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on inner dimension mismatch")
		}
	}()
	a := New(2, 3, make([]float64, 6))
	b := New(2, 3, make([]float64, 6))
	a.Mul(b)
}
