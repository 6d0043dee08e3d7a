package mpc

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/regulator/mat"
)

func doubleIntegratorConfig(n int) Config {
	return Config{
		A:       mat.New(2, 2, []float64{1, 0.1, 0, 1}),
		B:       mat.New(2, 1, []float64{0.005, 0.1}),
		Q:       mat.New(2, 2, []float64{1, 0, 0, 0.1}),
		R:       mat.New(1, 1, []float64{0.01}),
		Horizon: n,
	}
}

func TestRolloutConsistency(t *testing.T) {
	cfg := doubleIntegratorConfig(8)
	cfg.UMax = []float64{1}
	cfg.UMin = []float64{-1}

	res, err := Solve(cfg, []float64{1, 0}, nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	for k := 0; k < cfg.Horizon; k++ {
		ax := cfg.A.MulVec(res.XPredicted[k])
		bu := cfg.B.MulVec(res.USequence[k])
		for i := range ax {
			if math.Abs(res.XPredicted[k+1][i]-(ax[i]+bu[i])) > 1e-12 {
				t.Fatalf("step %d: predicted state does not satisfy the dynamics", k)
			}
		}
	}
}

func TestControlBoundsRespected(t *testing.T) {
	cfg := doubleIntegratorConfig(10)
	cfg.UMax = []float64{0.5}
	cfg.UMin = []float64{-0.5}

	res, err := Solve(cfg, []float64{5, 0}, nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	for k, u := range res.USequence {
		if u[0] > 0.5+1e-4 || u[0] < -0.5-1e-4 {
			t.Errorf("u[%d] = %f violates bounds", k, u[0])
		}
	}
}

func TestRateContinuity(t *testing.T) {
	cfg := doubleIntegratorConfig(10)
	cfg.DUMax = []float64{0.2}
	uPrev := []float64{0.5}

	// Far from the origin the unconstrained plan wants a large first move;
	// the rate bound must pin it near the previous control.
	res, err := Solve(cfg, []float64{-5, 0}, uPrev)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if d := math.Abs(res.USequence[0][0] - uPrev[0]); d > 0.2+1e-4 {
		t.Errorf("|u0 - uPrev| = %f exceeds rate bound 0.2", d)
	}
	for k := 1; k < len(res.USequence); k++ {
		if d := math.Abs(res.USequence[k][0] - res.USequence[k-1][0]); d > 0.2+1e-4 {
			t.Errorf("|u%d - u%d| = %f exceeds rate bound", k, k-1, d)
		}
	}
}

func TestUnconstrainedSingleIteration(t *testing.T) {
	cfg := doubleIntegratorConfig(5)

	res, err := Solve(cfg, []float64{1, -1}, nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Status != StatusOptimal {
		t.Errorf("status = %s, want optimal", res.Status)
	}
	if res.Iterations != 1 {
		t.Errorf("unconstrained solve took %d iterations, want 1", res.Iterations)
	}
}

func TestRecedingHorizonRegulates(t *testing.T) {
	cfg := doubleIntegratorConfig(15)
	cfg.UMax = []float64{2}
	cfg.UMin = []float64{-2}

	x := []float64{2, 0}
	var uPrev []float64
	for step := 0; step < 60; step++ {
		res, err := Solve(cfg, x, uPrev)
		if err != nil {
			t.Fatalf("Solve at step %d: %v", step, err)
		}
		ax := cfg.A.MulVec(x)
		bu := cfg.B.MulVec(res.UOptimal)
		for i := range x {
			x[i] = ax[i] + bu[i]
		}
		uPrev = res.UOptimal
	}

	if norm := math.Hypot(x[0], x[1]); norm > 0.1 {
		t.Errorf("state norm after 60 cycles = %f, want near 0", norm)
	}
}

func TestTerminalCost(t *testing.T) {
	cfg := doubleIntegratorConfig(5)
	base, err := Solve(cfg, []float64{1, 0}, nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	cfg.Qf = mat.New(2, 2, []float64{100, 0, 0, 100})
	heavy, err := Solve(cfg, []float64{1, 0}, nil)
	if err != nil {
		t.Fatalf("Solve with Qf: %v", err)
	}

	// A heavy terminal cost has to push the final predicted state closer
	// to the origin.
	last := len(base.XPredicted) - 1
	if math.Abs(heavy.XPredicted[last][0]) >= math.Abs(base.XPredicted[last][0]) {
		t.Error("terminal cost did not tighten the final state")
	}
}

func TestConstraintRowOrder(t *testing.T) {
	cfg := doubleIntegratorConfig(3)
	cfg.UMax = []float64{1}
	cfg.UMin = []float64{-1}
	cfg.XMax = []float64{10, 10}
	cfg.XMin = []float64{-10, -10}
	cfg.DUMax = []float64{0.5}

	qp, err := BuildQP(cfg, []float64{0, 0})
	if err != nil {
		t.Fatalf("BuildQP: %v", err)
	}

	n, nx, nu := 3, 2, 1
	wantRows := 2*n*nu + 2*n*nx + 2*n*nu
	rows, cols := qp.Aineq.Dims()
	if rows != wantRows || cols != n*nu {
		t.Fatalf("Aineq is %dx%d, want %dx%d", rows, cols, wantRows, n*nu)
	}

	// Rate block starts after u-upper, u-lower, x-upper, x-lower.
	if want := 2*n*nu + 2*n*nx; qp.RateRow != want {
		t.Errorf("RateRow = %d, want %d", qp.RateRow, want)
	}
	// First rate row: +1 on u0, no dependence on earlier controls, rhs DUMax.
	if qp.Aineq.At(qp.RateRow, 0) != 1 || qp.Bineq[qp.RateRow] != 0.5 {
		t.Error("first rate row malformed")
	}
	// Second step rate row couples u1 and u0.
	if qp.Aineq.At(qp.RateRow+1, 1) != 1 || qp.Aineq.At(qp.RateRow+1, 0) != -1 {
		t.Error("rate row for step 1 must read u1 - u0")
	}
}

func TestShiftRateBounds(t *testing.T) {
	cfg := doubleIntegratorConfig(3)
	cfg.DUMax = []float64{0.5}

	qp, err := BuildQP(cfg, []float64{0, 0})
	if err != nil {
		t.Fatalf("BuildQP: %v", err)
	}
	qp.ShiftRateBounds([]float64{0.3})

	if qp.Bineq[qp.RateRow] != 0.8 {
		t.Errorf("shifted upper rate rhs = %f, want 0.8", qp.Bineq[qp.RateRow])
	}
	lower := qp.RateRow + 3*1
	if math.Abs(qp.Bineq[lower]-0.2) > 1e-15 {
		t.Errorf("shifted lower rate rhs = %f, want 0.2", qp.Bineq[lower])
	}
	// Later steps keep the plain bound.
	if qp.Bineq[qp.RateRow+1] != 0.5 {
		t.Errorf("step-1 rate rhs = %f, want 0.5", qp.Bineq[qp.RateRow+1])
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := doubleIntegratorConfig(0)
	if _, err := Solve(cfg, []float64{0, 0}, nil); !errors.Is(err, ErrInvalidHorizon) {
		t.Errorf("expected ErrInvalidHorizon, got %v", err)
	}

	cfg = doubleIntegratorConfig(5)
	cfg.UMax = []float64{1, 2} // nu is 1
	if _, err := Solve(cfg, []float64{0, 0}, nil); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions, got %v", err)
	}

	cfg = doubleIntegratorConfig(5)
	if _, err := Solve(cfg, []float64{0}, nil); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions for short x0, got %v", err)
	}
}
