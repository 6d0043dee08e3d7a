package lqr

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/regulator/mat"
)

func scalarSystem(a, b, q, r float64) System {
	return System{
		A: mat.New(1, 1, []float64{a}),
		B: mat.New(1, 1, []float64{b}),
		Q: mat.New(1, 1, []float64{q}),
		R: mat.New(1, 1, []float64{r}),
	}
}

func doubleIntegrator() System {
	return System{
		A: mat.New(2, 2, []float64{1, 1, 0, 1}),
		B: mat.New(2, 1, []float64{0.5, 1}),
		Q: mat.New(2, 2, []float64{1, 0, 0, 1}),
		R: mat.New(1, 1, []float64{1}),
	}
}

// riccatiResidual evaluates ||Q + AtPA - (AtPB+N)(R+BtPB)^-1(BtPA+Nt) - P||_F.
func riccatiResidual(t *testing.T, sys System, p *mat.Dense) float64 {
	t.Helper()
	at, bt := sys.A.T(), sys.B.T()
	n := sys.cross()

	inv, err := mat.Inverse(sys.R.Add(bt.Mul(p).Mul(sys.B)))
	if err != nil {
		t.Fatalf("inverting R+BtPB: %v", err)
	}
	gain := at.Mul(p).Mul(sys.B).Add(n).Mul(inv).Mul(bt.Mul(p).Mul(sys.A).Add(n.T()))
	rhs := sys.Q.Add(at.Mul(p).Mul(sys.A)).Sub(gain)
	return rhs.Sub(p).NormFrob()
}

func TestDAREFixedPoint(t *testing.T) {
	sys := doubleIntegrator()

	res, err := SolveDARE(sys, DefaultOptions())
	if err != nil {
		t.Fatalf("SolveDARE: %v", err)
	}
	if !res.Converged {
		t.Fatalf("DARE did not converge in %d iterations", res.Iterations)
	}
	if resid := riccatiResidual(t, sys, res.P); resid > 1e-8 {
		t.Errorf("fixed-point residual = %e", resid)
	}
}

func TestScalarClosedLoopStable(t *testing.T) {
	sys := scalarSystem(0.9, 1, 1, 1)

	res, err := Solve(sys, DefaultOptions())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	pole := 0.9 - res.K.At(0, 0)
	if math.Abs(pole) >= 1 {
		t.Errorf("closed-loop pole %f is not inside the unit circle", pole)
	}
}

func TestDAREIdempotent(t *testing.T) {
	sys := doubleIntegrator()

	r1, err := SolveDARE(sys, DefaultOptions())
	if err != nil {
		t.Fatalf("first solve: %v", err)
	}
	r2, err := SolveDARE(sys, DefaultOptions())
	if err != nil {
		t.Fatalf("second solve: %v", err)
	}

	if r1.Iterations != r2.Iterations {
		t.Errorf("iteration counts differ: %d vs %d", r1.Iterations, r2.Iterations)
	}
	if r1.P.Sub(r2.P).NormFrob() != 0 {
		t.Error("repeated solves must produce bit-identical P")
	}
}

func TestDAREBudgetExhausted(t *testing.T) {
	sys := doubleIntegrator()

	res, err := SolveDARE(sys, Options{Tol: 1e-10, MaxIter: 2})
	if err != nil {
		t.Fatalf("SolveDARE: %v", err)
	}
	if res.Converged {
		t.Error("two iterations should not satisfy a 1e-10 tolerance")
	}
	if res.Iterations != 2 {
		t.Errorf("iterations = %d, want 2", res.Iterations)
	}
	if res.P == nil {
		t.Error("last iterate must still be returned")
	}
}

func TestDARECrossTerm(t *testing.T) {
	sys := doubleIntegrator()
	sys.N = mat.New(2, 1, []float64{0.1, 0.05})

	res, err := SolveDARE(sys, DefaultOptions())
	if err != nil {
		t.Fatalf("SolveDARE: %v", err)
	}
	if !res.Converged {
		t.Fatal("DARE with cross term did not converge")
	}
	if resid := riccatiResidual(t, sys, res.P); resid > 1e-8 {
		t.Errorf("fixed-point residual with cross term = %e", resid)
	}
}

func TestDAREInvalidDimensions(t *testing.T) {
	sys := doubleIntegrator()
	sys.Q = mat.New(1, 1, []float64{1}) // wrong size

	if _, err := SolveDARE(sys, DefaultOptions()); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions, got %v", err)
	}
}

func TestSolveInputsNotMutated(t *testing.T) {
	sys := doubleIntegrator()
	aBefore := sys.A.Clone()
	qBefore := sys.Q.Clone()

	if _, err := Solve(sys, DefaultOptions()); err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if sys.A.Sub(aBefore).NormFrob() != 0 || sys.Q.Sub(qBefore).NormFrob() != 0 {
		t.Error("Solve must not mutate caller matrices")
	}
}
