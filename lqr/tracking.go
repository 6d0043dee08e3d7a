package lqr

import (
	"github.com/san-kum/regulator/mat"
)

// TrackingSystem extends a plant with the output matrix C (ny×nx) whose
// outputs should follow a reference.
type TrackingSystem struct {
	System
	C *mat.Dense
}

func (s TrackingSystem) validateTracking() error {
	if err := s.System.validate(); err != nil {
		return err
	}
	nx, _ := s.Dims()
	_, cc := s.C.Dims()
	if cc != nx {
		return ErrInvalidDimensions
	}
	return nil
}

// TrackingResult carries the sliced gains of the integral-augmented design.
// Kaug acts on the stacked vector [x; ξ]; Kx and Ki are its state and
// integral blocks.
type TrackingResult struct {
	Kx          *mat.Dense // nu×nx state feedback
	Ki          *mat.Dense // nu×ny integral feedback
	Kaug        *mat.Dense // nu×(nx+ny) full augmented gain
	P           *mat.Dense // (nx+ny)×(nx+ny) augmented Riccati solution
	Eigenvalues []complex128
	Converged   bool
	Iterations  int
}

// SolveTracking designs an integral-action regulator. The plant is
// augmented with integrator states ξ' = ξ + (C x - r):
//
//	Aaug = [[A, 0], [C, I]]   Baug = [[B], [0]]
//
// and the augmented state cost is block-diagonal with the integral channels
// weighted by max(mean(diag Q), 1). The augmented DARE solution is sliced
// into the state gain Kx and integral gain Ki; the control law
// u = -Kx·x - Ki·ξ removes steady-state error for constant references when
// the augmented pair is stabilizable.
func SolveTracking(sys TrackingSystem, opts Options) (*TrackingResult, error) {
	if err := sys.validateTracking(); err != nil {
		return nil, err
	}
	nx, nu := sys.Dims()
	ny, _ := sys.C.Dims()
	na := nx + ny

	aaug := mat.Zeros(na, na)
	for i := 0; i < nx; i++ {
		for j := 0; j < nx; j++ {
			aaug.Set(i, j, sys.A.At(i, j))
		}
	}
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			aaug.Set(nx+i, j, sys.C.At(i, j))
		}
		aaug.Set(nx+i, nx+i, 1)
	}

	baug := mat.Zeros(na, nu)
	for i := 0; i < nx; i++ {
		for j := 0; j < nu; j++ {
			baug.Set(i, j, sys.B.At(i, j))
		}
	}

	qaug := mat.Zeros(na, na)
	for i := 0; i < nx; i++ {
		for j := 0; j < nx; j++ {
			qaug.Set(i, j, sys.Q.At(i, j))
		}
	}
	w := integralWeight(sys.Q)
	for i := 0; i < ny; i++ {
		qaug.Set(nx+i, nx+i, w)
	}

	res, err := Solve(System{A: aaug, B: baug, Q: qaug, R: sys.R}, opts)
	if err != nil {
		return nil, err
	}

	kx := mat.Zeros(nu, nx)
	ki := mat.Zeros(nu, ny)
	for i := 0; i < nu; i++ {
		for j := 0; j < nx; j++ {
			kx.Set(i, j, res.K.At(i, j))
		}
		for j := 0; j < ny; j++ {
			ki.Set(i, j, res.K.At(i, nx+j))
		}
	}

	return &TrackingResult{
		Kx:          kx,
		Ki:          ki,
		Kaug:        res.K,
		P:           res.P,
		Eigenvalues: res.Eigenvalues,
		Converged:   res.Converged,
		Iterations:  res.Iterations,
	}, nil
}

// integralWeight picks the integral-state cost from the scale of Q.
func integralWeight(q *mat.Dense) float64 {
	n, _ := q.Dims()
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += q.At(i, i)
	}
	if mean := sum / float64(n); mean > 1 {
		return mean
	}
	return 1
}

// TrackingTrajectory is a closed-loop rollout under integral-action
// feedback. States[k] is the plant state before step k is applied.
type TrackingTrajectory struct {
	States   [][]float64
	Outputs  [][]float64
	Controls [][]float64
	Errors   [][]float64
}

// SimulateTracking rolls the closed loop forward for steps steps from x0
// against a constant reference r. Each step computes y = C x, accumulates
// the integral state with e = y - r, applies u = -Kx·x - Ki·ξ, and advances
// x' = A x + B u.
func SimulateTracking(sys TrackingSystem, res *TrackingResult, x0, r []float64, steps int) (*TrackingTrajectory, error) {
	if err := sys.validateTracking(); err != nil {
		return nil, err
	}
	nx, _ := sys.Dims()
	ny, _ := sys.C.Dims()
	if len(x0) != nx || len(r) != ny {
		return nil, ErrInvalidDimensions
	}

	traj := &TrackingTrajectory{
		States:   make([][]float64, 0, steps+1),
		Outputs:  make([][]float64, 0, steps),
		Controls: make([][]float64, 0, steps),
		Errors:   make([][]float64, 0, steps),
	}

	x := append([]float64(nil), x0...)
	xi := make([]float64, ny)
	traj.States = append(traj.States, append([]float64(nil), x...))

	for k := 0; k < steps; k++ {
		y := sys.C.MulVec(x)
		e := make([]float64, ny)
		for i := range e {
			e[i] = y[i] - r[i]
			xi[i] += e[i]
		}

		ux := res.Kx.MulVec(x)
		ui := res.Ki.MulVec(xi)
		u := make([]float64, len(ux))
		for i := range u {
			u[i] = -ux[i] - ui[i]
		}

		ax := sys.A.MulVec(x)
		bu := sys.B.MulVec(u)
		for i := range x {
			x[i] = ax[i] + bu[i]
		}

		traj.Outputs = append(traj.Outputs, y)
		traj.Errors = append(traj.Errors, e)
		traj.Controls = append(traj.Controls, u)
		traj.States = append(traj.States, append([]float64(nil), x...))
	}
	return traj, nil
}
