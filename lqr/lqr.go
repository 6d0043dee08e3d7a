package lqr

import (
	"github.com/san-kum/regulator/mat"
)

// Result is a complete regulator design: the feedback gain K for
// u = -K x, the Riccati solution P, and the estimated eigenvalues of the
// closed-loop matrix A - B K.
type Result struct {
	K           *mat.Dense   // nu×nx feedback gain
	P           *mat.Dense   // nx×nx Riccati solution
	Eigenvalues []complex128 // closed-loop modes, diagnostic accuracy only
	Converged   bool
	Iterations  int
}

// Solve runs the DARE iteration and extracts the optimal gain
//
//	K = (R+BᵗPB)⁻¹(BᵗPA+Nᵗ)
//
// along with the closed-loop eigenvalue estimate. The same best-effort
// contract as SolveDARE applies: a spent iteration budget shows up as
// Converged=false, not as an error.
func Solve(sys System, opts Options) (*Result, error) {
	dare, err := SolveDARE(sys, opts)
	if err != nil {
		return nil, err
	}
	k, err := Gain(sys, dare.P)
	if err != nil {
		return nil, err
	}
	acl := sys.A.Sub(sys.B.Mul(k))
	return &Result{
		K:           k,
		P:           dare.P,
		Eigenvalues: Eigenvalues(acl),
		Converged:   dare.Converged,
		Iterations:  dare.Iterations,
	}, nil
}

// Gain extracts the feedback gain for a given Riccati solution P. Callers
// that already hold a DARE solution can skip the iteration in Solve.
func Gain(sys System, p *mat.Dense) (*mat.Dense, error) {
	if err := sys.validate(); err != nil {
		return nil, err
	}
	pr, pc := p.Dims()
	nx, _ := sys.Dims()
	if pr != nx || pc != nx {
		return nil, ErrInvalidDimensions
	}

	bt := sys.B.T()
	inv, err := invertGram(sys.R.Add(bt.Mul(p).Mul(sys.B)))
	if err != nil {
		return nil, err
	}
	return inv.Mul(bt.Mul(p).Mul(sys.A).Add(sys.cross().T())), nil
}
