package lqr

import (
	"github.com/san-kum/regulator/mat"
)

const regularizer = 1e-9

// System describes the discrete-time plant x' = A x + B u with stage cost
// xᵗQx + uᵗRu (+ 2 xᵗN u when the cross term N is non-nil). All matrices
// are caller-owned and never mutated.
type System struct {
	A *mat.Dense // nx×nx state matrix
	B *mat.Dense // nx×nu input matrix
	Q *mat.Dense // nx×nx state cost, symmetric PSD
	R *mat.Dense // nu×nu input cost, symmetric PD
	N *mat.Dense // nx×nu cross term, may be nil
}

// Dims returns (nx, nu) taken from A and B.
func (s System) Dims() (nx, nu int) {
	nx, _ = s.A.Dims()
	_, nu = s.B.Dims()
	return nx, nu
}

func (s System) validate() error {
	ar, ac := s.A.Dims()
	br, bc := s.B.Dims()
	qr, qc := s.Q.Dims()
	rr, rc := s.R.Dims()
	if ar != ac || br != ar || qr != ar || qc != ar || rr != bc || rc != bc {
		return ErrInvalidDimensions
	}
	if s.N != nil {
		nr, nc := s.N.Dims()
		if nr != ar || nc != bc {
			return ErrInvalidDimensions
		}
	}
	return nil
}

// cross returns the cross term, substituting zeros when absent.
func (s System) cross() *mat.Dense {
	if s.N != nil {
		return s.N
	}
	nx, nu := s.Dims()
	return mat.Zeros(nx, nu)
}

// Options bound the Riccati fixed-point iteration.
type Options struct {
	Tol     float64 // convergence threshold on ||P_{k+1}-P_k||_F
	MaxIter int     // iteration budget
}

// DefaultOptions returns the standard tolerances.
func DefaultOptions() Options {
	return Options{Tol: 1e-10, MaxIter: 1000}
}

func (o Options) withDefaults() Options {
	if o.Tol <= 0 {
		o.Tol = 1e-10
	}
	if o.MaxIter <= 0 {
		o.MaxIter = 1000
	}
	return o
}

// DAREResult carries the steady-state cost matrix together with the
// iteration outcome. When Converged is false, P holds the last iterate.
type DAREResult struct {
	P          *mat.Dense
	Converged  bool
	Iterations int
}

// SolveDARE computes the fixed point of
//
//	P = Q + AᵗPA - (AᵗPB+N)(R+BᵗPB)⁻¹(BᵗPA+Nᵗ)
//
// by iterating from P₀ = Q. The iteration stops when the Frobenius norm of
// the update falls below opts.Tol or the budget runs out; in the latter case
// the last iterate is returned with Converged=false.
func SolveDARE(sys System, opts Options) (*DAREResult, error) {
	if err := sys.validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	at := sys.A.T()
	bt := sys.B.T()
	n := sys.cross()
	nt := n.T()

	p := sys.Q.Clone()
	for k := 1; k <= opts.MaxIter; k++ {
		next, err := riccatiStep(sys, p, at, bt, n, nt)
		if err != nil {
			return nil, err
		}
		diff := next.Sub(p).NormFrob()
		p = next
		if diff < opts.Tol {
			return &DAREResult{P: p, Converged: true, Iterations: k}, nil
		}
	}
	return &DAREResult{P: p, Converged: false, Iterations: opts.MaxIter}, nil
}

// riccatiStep evaluates the right-hand side of the DARE at p.
func riccatiStep(sys System, p, at, bt, n, nt *mat.Dense) (*mat.Dense, error) {
	atp := at.Mul(p)
	atpa := atp.Mul(sys.A)
	atpb := atp.Mul(sys.B)
	btpa := bt.Mul(p).Mul(sys.A)

	inv, err := invertGram(sys.R.Add(bt.Mul(p).Mul(sys.B)))
	if err != nil {
		return nil, err
	}

	gain := atpb.Add(n).Mul(inv).Mul(btpa.Add(nt))
	return sys.Q.Add(atpa).Sub(gain), nil
}

// invertGram inverts R+BᵗPB, retrying once with a small diagonal
// regularizer when the matrix is numerically singular.
func invertGram(m *mat.Dense) (*mat.Dense, error) {
	inv, err := mat.Inverse(m)
	if err == nil {
		return inv, nil
	}
	n, _ := m.Dims()
	inv, err = mat.Inverse(m.Add(mat.Identity(n).Scale(regularizer)))
	if err != nil {
		return nil, ErrSingularInput
	}
	return inv, nil
}
