package mpc

import "github.com/san-kum/regulator/mat"

// Status reports how the underlying QP solve ended.
type Status string

const (
	// StatusOptimal means the QP converged within its budget.
	StatusOptimal Status = "optimal"
	// StatusMaxIter means the solver spent its iteration budget; the
	// returned controls are the last iterate and must be treated as
	// best-effort.
	StatusMaxIter Status = "max_iter"
)

// Result is one MPC planning cycle. UOptimal is the first control of the
// sequence, which is the only one a receding-horizon caller applies.
type Result struct {
	UOptimal   []float64
	USequence  [][]float64 // N controls
	XPredicted [][]float64 // N+1 states, starting at x0
	Cost       float64
	Iterations int
	Status     Status
}

// Solve plans one receding-horizon cycle from the measured state x0.
//
// uPrev is the control applied in the previous cycle; when both uPrev and
// rate bounds are present, the first rate block's right-hand side is
// shifted by ±uPrev so the plan keeps |u0 - uPrev| within DUMax across
// replanning. Pass nil on the first cycle.
//
// The predicted trajectory is rolled through the actual dynamics with the
// optimal controls, and Cost is the true quadratic stage-plus-terminal cost
// of that rollout, computed independently of the condensed objective.
func Solve(cfg Config, x0, uPrev []float64) (*Result, error) {
	qp, err := BuildQP(cfg, x0)
	if err != nil {
		return nil, err
	}
	_, nu := cfg.Dims()
	if uPrev != nil {
		if len(uPrev) != nu {
			return nil, ErrInvalidDimensions
		}
		qp.ShiftRateBounds(uPrev)
	}

	sol, err := solveQP(qp.H, qp.Grad, qp.Aineq, qp.Bineq)
	if err != nil {
		return nil, err
	}

	n := cfg.Horizon
	useq := make([][]float64, n)
	for k := 0; k < n; k++ {
		useq[k] = append([]float64(nil), sol.x[k*nu:(k+1)*nu]...)
	}

	xpred := rollout(cfg, x0, useq)

	status := StatusOptimal
	if !sol.converged {
		status = StatusMaxIter
	}
	return &Result{
		UOptimal:   append([]float64(nil), useq[0]...),
		USequence:  useq,
		XPredicted: xpred,
		Cost:       trajectoryCost(cfg, xpred, useq),
		Iterations: sol.iterations,
		Status:     status,
	}, nil
}

// ShiftRateBounds adjusts the first-step rate rows for the control applied
// in the previous cycle: u0 - uPrev <= d becomes u0 <= d + uPrev and the
// mirrored row becomes -u0 <= d - uPrev. A no-op without rate bounds.
func (qp *CondensedQP) ShiftRateBounds(uPrev []float64) {
	if qp.RateRow < 0 {
		return
	}
	lower := qp.RateRow + qp.horizon*qp.nu
	for c := 0; c < qp.nu; c++ {
		qp.Bineq[qp.RateRow+c] += uPrev[c]
		qp.Bineq[lower+c] -= uPrev[c]
	}
}

// rollout advances x' = A x + B u from x0 under the planned controls.
func rollout(cfg Config, x0 []float64, useq [][]float64) [][]float64 {
	n := cfg.Horizon
	xpred := make([][]float64, 0, n+1)
	x := append([]float64(nil), x0...)
	xpred = append(xpred, append([]float64(nil), x...))
	for k := 0; k < n; k++ {
		ax := cfg.A.MulVec(x)
		bu := cfg.B.MulVec(useq[k])
		next := make([]float64, len(x))
		for i := range next {
			next[i] = ax[i] + bu[i]
		}
		x = next
		xpred = append(xpred, append([]float64(nil), x...))
	}
	return xpred
}

// trajectoryCost evaluates Σ xᵗQx + uᵗRu over the stage states plus the
// terminal cost on the final state.
func trajectoryCost(cfg Config, xpred, useq [][]float64) float64 {
	cost := 0.0
	for k, u := range useq {
		cost += quadForm(cfg.Q, xpred[k]) + quadForm(cfg.R, u)
	}
	terminal := cfg.Qf
	if terminal == nil {
		terminal = cfg.Q
	}
	return cost + quadForm(terminal, xpred[len(xpred)-1])
}

func quadForm(m *mat.Dense, v []float64) float64 {
	mv := m.MulVec(v)
	sum := 0.0
	for i := range v {
		sum += v[i] * mv[i]
	}
	return sum
}
