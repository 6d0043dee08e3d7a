package lqr

import (
	"math"
	"testing"

	"github.com/san-kum/regulator/mat"
)

func scalarTracking() TrackingSystem {
	return TrackingSystem{
		System: scalarSystem(0.8, 1, 1, 1),
		C:      mat.New(1, 1, []float64{1}),
	}
}

func TestTrackingGainShapes(t *testing.T) {
	sys := scalarTracking()

	res, err := SolveTracking(sys, DefaultOptions())
	if err != nil {
		t.Fatalf("SolveTracking: %v", err)
	}
	if !res.Converged {
		t.Fatal("tracking DARE did not converge")
	}

	if r, c := res.Kx.Dims(); r != 1 || c != 1 {
		t.Errorf("Kx is %dx%d, want 1x1", r, c)
	}
	if r, c := res.Ki.Dims(); r != 1 || c != 1 {
		t.Errorf("Ki is %dx%d, want 1x1", r, c)
	}
	if r, c := res.Kaug.Dims(); r != 1 || c != 2 {
		t.Errorf("Kaug is %dx%d, want 1x2", r, c)
	}

	// Slices must agree with the augmented gain.
	if res.Kx.At(0, 0) != res.Kaug.At(0, 0) || res.Ki.At(0, 0) != res.Kaug.At(0, 1) {
		t.Error("Kx/Ki must be slices of Kaug")
	}
}

func TestTrackingZeroSteadyStateError(t *testing.T) {
	sys := scalarTracking()

	res, err := SolveTracking(sys, DefaultOptions())
	if err != nil {
		t.Fatalf("SolveTracking: %v", err)
	}

	traj, err := SimulateTracking(sys, res, []float64{0}, []float64{2.5}, 300)
	if err != nil {
		t.Fatalf("SimulateTracking: %v", err)
	}

	final := traj.Errors[len(traj.Errors)-1][0]
	if math.Abs(final) > 1e-3 {
		t.Errorf("steady-state tracking error = %e, want ~0", final)
	}

	// The error magnitude should have collapsed relative to the start.
	first := traj.Errors[0][0]
	if math.Abs(final) > math.Abs(first)*1e-2 {
		t.Errorf("error did not contract: first %e, final %e", first, final)
	}
}

func TestTrackingIntegralWeightFloor(t *testing.T) {
	if w := integralWeight(mat.New(2, 2, []float64{0.1, 0, 0, 0.1})); w != 1 {
		t.Errorf("small Q should floor the integral weight at 1, got %f", w)
	}
	if w := integralWeight(mat.New(2, 2, []float64{4, 0, 0, 2})); w != 3 {
		t.Errorf("integral weight = %f, want mean of diagonal 3", w)
	}
}

func TestTrackingRollout(t *testing.T) {
	sys := scalarTracking()

	res, err := SolveTracking(sys, DefaultOptions())
	if err != nil {
		t.Fatalf("SolveTracking: %v", err)
	}
	traj, err := SimulateTracking(sys, res, []float64{1}, []float64{0}, 10)
	if err != nil {
		t.Fatalf("SimulateTracking: %v", err)
	}

	if len(traj.States) != 11 || len(traj.Controls) != 10 {
		t.Fatalf("trajectory lengths: %d states, %d controls", len(traj.States), len(traj.Controls))
	}

	// Replay the recurrence x' = A x + B u.
	a, b := sys.A.At(0, 0), sys.B.At(0, 0)
	for k := 0; k < 10; k++ {
		want := a*traj.States[k][0] + b*traj.Controls[k][0]
		if math.Abs(traj.States[k+1][0]-want) > 1e-12 {
			t.Fatalf("state %d inconsistent with dynamics", k+1)
		}
	}
}
