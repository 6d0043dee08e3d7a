package mpc

import (
	"errors"

	"github.com/san-kum/regulator/mat"
)

// Domain errors for MPC configuration.
var (
	// ErrInvalidDimensions indicates plant, cost, or bound shapes that do
	// not agree.
	ErrInvalidDimensions = errors.New("mpc: invalid configuration dimensions")

	// ErrInvalidHorizon indicates a non-positive prediction horizon.
	ErrInvalidHorizon = errors.New("mpc: horizon must be at least 1")
)

// Config describes a finite-horizon linear-quadratic problem. Bounds are
// per-channel and optional: a nil slice means the corresponding constraint
// family is absent. All matrices are caller-owned and never mutated.
type Config struct {
	A  *mat.Dense // nx×nx state matrix
	B  *mat.Dense // nx×nu input matrix
	Q  *mat.Dense // nx×nx stage state cost
	R  *mat.Dense // nu×nu stage input cost
	Qf *mat.Dense // nx×nx terminal cost, nil to reuse Q

	Horizon int

	UMin, UMax []float64 // nu control bounds
	XMin, XMax []float64 // nx state bounds
	DUMax      []float64 // nu control-rate bounds, applied in both directions
}

// Dims returns (nx, nu).
func (c Config) Dims() (nx, nu int) {
	nx, _ = c.A.Dims()
	_, nu = c.B.Dims()
	return nx, nu
}

func (c Config) validate() error {
	if c.Horizon < 1 {
		return ErrInvalidHorizon
	}
	ar, ac := c.A.Dims()
	br, bc := c.B.Dims()
	qr, qc := c.Q.Dims()
	rr, rc := c.R.Dims()
	if ar != ac || br != ar || qr != ar || qc != ar || rr != bc || rc != bc {
		return ErrInvalidDimensions
	}
	if c.Qf != nil {
		fr, fc := c.Qf.Dims()
		if fr != ar || fc != ar {
			return ErrInvalidDimensions
		}
	}
	for _, b := range [][2]int{
		{len(c.UMin), bc}, {len(c.UMax), bc}, {len(c.DUMax), bc},
		{len(c.XMin), ar}, {len(c.XMax), ar},
	} {
		if b[0] != 0 && b[0] != b[1] {
			return ErrInvalidDimensions
		}
	}
	return nil
}

// CondensedQP is the dense program min ½UᵗHU + GradᵗU subject to
// Aineq·U ≤ Bineq, obtained by eliminating the state trajectory. Aineq is
// nil when the configuration carries no bounds.
//
// Constraint rows are emitted in a fixed order: control upper bounds,
// control lower bounds, state upper bounds, state lower bounds, rate upper
// bounds, rate lower bounds. RateRow is the index of the first rate-upper
// row (-1 without rate bounds); the orchestrator uses it to shift the first
// step's rate rows by the previous applied control.
type CondensedQP struct {
	H     *mat.Dense
	Grad  []float64
	Aineq *mat.Dense
	Bineq []float64

	RateRow int

	nx, nu, horizon int
}

// BuildQP condenses the horizon-N problem at the measured state x0.
//
// With S mapping U to the controlled part of the stacked trajectory
// [x1;...;xN] (block (k,j) = A^{k-1-j}B for j<k) and xFree the free
// response A^k x0, the Hessian is H = SᵗQbarS + Rbar and the gradient
// f = SᵗQbar·xFree, where Qbar repeats Q with Qf in the terminal block and
// Rbar repeats R.
func BuildQP(cfg Config, x0 []float64) (*CondensedQP, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	nx, nu := cfg.Dims()
	if len(x0) != nx {
		return nil, ErrInvalidDimensions
	}
	n := cfg.Horizon

	// A^0 .. A^N
	powers := make([]*mat.Dense, n+1)
	powers[0] = mat.Identity(nx)
	for k := 1; k <= n; k++ {
		powers[k] = powers[k-1].Mul(cfg.A)
	}

	s := mat.Zeros(n*nx, n*nu)
	for k := 1; k <= n; k++ {
		for j := 0; j < k; j++ {
			blk := powers[k-1-j].Mul(cfg.B)
			for r := 0; r < nx; r++ {
				for c := 0; c < nu; c++ {
					s.Set((k-1)*nx+r, j*nu+c, blk.At(r, c))
				}
			}
		}
	}

	xFree := make([]float64, n*nx)
	for k := 1; k <= n; k++ {
		xk := powers[k].MulVec(x0)
		copy(xFree[(k-1)*nx:k*nx], xk)
	}

	qbar := mat.Zeros(n*nx, n*nx)
	for k := 0; k < n; k++ {
		blk := cfg.Q
		if k == n-1 && cfg.Qf != nil {
			blk = cfg.Qf
		}
		for r := 0; r < nx; r++ {
			for c := 0; c < nx; c++ {
				qbar.Set(k*nx+r, k*nx+c, blk.At(r, c))
			}
		}
	}

	rbar := mat.Zeros(n*nu, n*nu)
	for k := 0; k < n; k++ {
		for r := 0; r < nu; r++ {
			for c := 0; c < nu; c++ {
				rbar.Set(k*nu+r, k*nu+c, cfg.R.At(r, c))
			}
		}
	}

	stq := s.T().Mul(qbar)
	qp := &CondensedQP{
		H:       stq.Mul(s).Add(rbar),
		Grad:    stq.MulVec(xFree),
		RateRow: -1,
		nx:      nx,
		nu:      nu,
		horizon: n,
	}
	qp.buildConstraints(cfg, s, xFree)
	return qp, nil
}

// buildConstraints appends the inequality blocks in their fixed order.
func (qp *CondensedQP) buildConstraints(cfg Config, s *mat.Dense, xFree []float64) {
	n, nx, nu := qp.horizon, qp.nx, qp.nu

	rows := 0
	if cfg.UMax != nil {
		rows += n * nu
	}
	if cfg.UMin != nil {
		rows += n * nu
	}
	if cfg.XMax != nil {
		rows += n * nx
	}
	if cfg.XMin != nil {
		rows += n * nx
	}
	if cfg.DUMax != nil {
		rows += 2 * n * nu
	}
	if rows == 0 {
		return
	}

	g := mat.Zeros(rows, n*nu)
	b := make([]float64, rows)
	row := 0

	if cfg.UMax != nil {
		for k := 0; k < n; k++ {
			for c := 0; c < nu; c++ {
				g.Set(row, k*nu+c, 1)
				b[row] = cfg.UMax[c]
				row++
			}
		}
	}
	if cfg.UMin != nil {
		for k := 0; k < n; k++ {
			for c := 0; c < nu; c++ {
				g.Set(row, k*nu+c, -1)
				b[row] = -cfg.UMin[c]
				row++
			}
		}
	}
	if cfg.XMax != nil {
		// S U <= xmax - xFree
		for k := 0; k < n; k++ {
			for r := 0; r < nx; r++ {
				g.SetRow(row, s.Row(k*nx+r))
				b[row] = cfg.XMax[r] - xFree[k*nx+r]
				row++
			}
		}
	}
	if cfg.XMin != nil {
		for k := 0; k < n; k++ {
			for r := 0; r < nx; r++ {
				sr := s.Row(k*nx + r)
				for c := range sr {
					sr[c] = -sr[c]
				}
				g.SetRow(row, sr)
				b[row] = xFree[k*nx+r] - cfg.XMin[r]
				row++
			}
		}
	}
	if cfg.DUMax != nil {
		qp.RateRow = row
		// u_k - u_{k-1} <= d; the k=0 rows read u_0 <= d until the
		// orchestrator shifts them by the previously applied control.
		for k := 0; k < n; k++ {
			for c := 0; c < nu; c++ {
				g.Set(row, k*nu+c, 1)
				if k > 0 {
					g.Set(row, (k-1)*nu+c, -1)
				}
				b[row] = cfg.DUMax[c]
				row++
			}
		}
		for k := 0; k < n; k++ {
			for c := 0; c < nu; c++ {
				g.Set(row, k*nu+c, -1)
				if k > 0 {
					g.Set(row, (k-1)*nu+c, 1)
				}
				b[row] = cfg.DUMax[c]
				row++
			}
		}
	}

	qp.Aineq = g
	qp.Bineq = b
}
