// Package lqg designs Linear-Quadratic-Gaussian controllers by the
// separation principle: an LQR regulator gain from the control Riccati
// equation and a steady-state Kalman estimator gain from its dual.
//
//	d, err := lqg.Design(sys, lqr.DefaultOptions())
//	st := lqg.NewState(x0)
//	u, st, err := d.Step(st, y) // per measurement
package lqg

import (
	"errors"

	"github.com/san-kum/regulator/lqr"
	"github.com/san-kum/regulator/mat"
)

// ErrInvalidDimensions indicates observation or noise matrices with shapes
// inconsistent with the plant.
var ErrInvalidDimensions = errors.New("lqg: invalid matrix dimensions")

const regularizer = 1e-9

// System extends the regulator plant with an observation model
// y = C x + v and the process/measurement noise covariances Qn and Rn.
type System struct {
	lqr.System
	C  *mat.Dense // ny×nx observation matrix
	Qn *mat.Dense // nx×nx process noise covariance
	Rn *mat.Dense // ny×ny measurement noise covariance
}

func (s System) validate() error {
	nx, _ := s.Dims()
	ny, cc := s.C.Dims()
	if cc != nx {
		return ErrInvalidDimensions
	}
	qr, qc := s.Qn.Dims()
	rr, rc := s.Rn.Dims()
	if qr != nx || qc != nx || rr != ny || rc != ny {
		return ErrInvalidDimensions
	}
	return nil
}

// Controller is a complete LQG controller: the regulator gain K, the steady
// state estimator gain L, and the solutions of both Riccati recurrences.
// It is immutable once returned; per-step data lives in State.
type Controller struct {
	K  *mat.Dense // nu×nx regulator gain
	L  *mat.Dense // nx×ny estimator (Kalman) gain
	P  *mat.Dense // nx×nx regulator Riccati solution
	Pf *mat.Dense // nx×nx steady-state filter covariance

	RegulatorConverged bool
	FilterConverged    bool
	Iterations         int // regulator iterations
	FilterIterations   int

	sys System
}

// State is the mutable half of an LQG controller: the current state
// estimate and its covariance. It is threaded by value through successive
// Step calls and never shared.
type State struct {
	XHat []float64
	P    *mat.Dense
}

// NewState returns the stepping state for an initial estimate x0, seeding
// the covariance with identity.
func NewState(x0 []float64) State {
	xh := append([]float64(nil), x0...)
	return State{XHat: xh, P: mat.Identity(len(x0))}
}

// Design solves both halves of the separation-principle controller: the
// regulator DARE on (A,B,Q,R,N) and the dual filter recurrence
//
//	Pf' = A Pf Aᵗ + Qn - (A Pf Cᵗ)(C Pf Cᵗ + Rn)⁻¹(C Pf Aᵗ)
//
// from Pf₀ = Qn, then L = Pf Cᵗ (C Pf Cᵗ + Rn)⁻¹. Non-convergence of either
// recurrence is reported through the flags, not as an error.
func Design(sys System, opts lqr.Options) (*Controller, error) {
	if err := sys.validate(); err != nil {
		return nil, err
	}

	reg, err := lqr.Solve(sys.System, opts)
	if err != nil {
		return nil, err
	}

	pf, fconv, fiters, err := solveFilter(sys, opts)
	if err != nil {
		return nil, err
	}

	ct := sys.C.T()
	inv, err := invertReg(sys.C.Mul(pf).Mul(ct).Add(sys.Rn))
	if err != nil {
		return nil, err
	}
	l := pf.Mul(ct).Mul(inv)

	return &Controller{
		K:                  reg.K,
		L:                  l,
		P:                  reg.P,
		Pf:                 pf,
		RegulatorConverged: reg.Converged,
		FilterConverged:    fconv,
		Iterations:         reg.Iterations,
		FilterIterations:   fiters,
		sys:                sys,
	}, nil
}

// solveFilter iterates the dual (estimation) Riccati recurrence.
func solveFilter(sys System, opts lqr.Options) (pf *mat.Dense, converged bool, iters int, err error) {
	if opts.Tol <= 0 {
		opts.Tol = 1e-10
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = 1000
	}

	at := sys.A.T()
	ct := sys.C.T()

	pf = sys.Qn.Clone()
	for k := 1; k <= opts.MaxIter; k++ {
		apf := sys.A.Mul(pf)
		inv, ierr := invertReg(sys.C.Mul(pf).Mul(ct).Add(sys.Rn))
		if ierr != nil {
			return nil, false, k, ierr
		}
		next := apf.Mul(at).Add(sys.Qn).Sub(apf.Mul(ct).Mul(inv).Mul(sys.C.Mul(pf).Mul(at)))

		diff := next.Sub(pf).NormFrob()
		pf = next
		if diff < opts.Tol {
			return pf, true, k, nil
		}
	}
	return pf, false, opts.MaxIter, nil
}

// Step advances the controller by one measurement: predict the estimate
// through the plant, correct it with the innovation weighted by L, and
// apply u = -K·xHat. The covariance in st is carried through unchanged
// (steady-state filter). The updated state is returned, never mutated in
// place.
func (d *Controller) Step(st State, y []float64) (u []float64, next State, err error) {
	nx, _ := d.sys.Dims()
	ny, _ := d.sys.C.Dims()
	if len(st.XHat) != nx || len(y) != ny {
		return nil, State{}, ErrInvalidDimensions
	}

	xPred := d.sys.A.MulVec(st.XHat)
	yPred := d.sys.C.MulVec(xPred)

	innov := make([]float64, ny)
	for i := range innov {
		innov[i] = y[i] - yPred[i]
	}

	corr := d.L.MulVec(innov)
	xNew := make([]float64, nx)
	for i := range xNew {
		xNew[i] = xPred[i] + corr[i]
	}

	kx := d.K.MulVec(xNew)
	u = make([]float64, len(kx))
	for i := range u {
		u[i] = -kx[i]
	}

	return u, State{XHat: xNew, P: st.P}, nil
}

// invertReg inverts m, retrying once with a diagonal regularizer.
func invertReg(m *mat.Dense) (*mat.Dense, error) {
	inv, err := mat.Inverse(m)
	if err == nil {
		return inv, nil
	}
	n, _ := m.Dims()
	return mat.Inverse(m.Add(mat.Identity(n).Scale(regularizer)))
}
