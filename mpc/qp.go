package mpc

import (
	"math"

	"github.com/san-kum/regulator/mat"
)

const (
	admmRho     = 1.0
	admmMaxIter = 500
	absTol      = 1e-8
	relTol      = 1e-6
	regularizer = 1e-9
)

// qpSolution is the outcome of one quadratic-program solve.
type qpSolution struct {
	x          []float64
	converged  bool
	iterations int
}

// solveQP minimizes ½xᵗHx + fᵗx subject to G·x ≤ h. A nil G selects the
// direct Cholesky path; otherwise the program is solved by ADMM over the
// slack reformulation G·x + s = h, s ≥ 0 with fixed penalty rho=1.
func solveQP(hess *mat.Dense, f []float64, g *mat.Dense, h []float64) (*qpSolution, error) {
	if g == nil || len(h) == 0 {
		return solveUnconstrained(hess, f)
	}
	return solveADMM(hess, f, g, h)
}

// solveUnconstrained factors H once and back-substitutes. Exact to
// factorization precision, reported as a single iteration.
func solveUnconstrained(hess *mat.Dense, f []float64) (*qpSolution, error) {
	l, err := cholWithRetry(hess)
	if err != nil {
		return nil, err
	}
	rhs := make([]float64, len(f))
	for i, v := range f {
		rhs[i] = -v
	}
	return &qpSolution{x: mat.SolveCholesky(l, rhs), converged: true, iterations: 1}, nil
}

// solveADMM iterates the splitting
//
//	x-update: (H + ρGᵗG) x = -f + ρGᵗ(h - z + u)
//	z-update: z = max(0, h - Gx + u)
//	u-update: u += h - Gx - z
//
// against a cached Cholesky factorization of the KKT matrix. Convergence
// requires both the primal residual ‖h-Gx-z‖ and the dual residual
// ‖ρGᵗ(z-z_prev)‖ to fall below an absolute-plus-relative tolerance.
// An infeasible program is not detected; it spends the budget and comes
// back with converged=false.
func solveADMM(hess *mat.Dense, f []float64, g *mat.Dense, h []float64) (*qpSolution, error) {
	m, nv := g.Dims()
	gt := g.T()

	kkt := hess.Add(gt.Mul(g).Scale(admmRho))
	l, err := cholWithRetry(kkt)
	if err != nil {
		return nil, err
	}

	x := make([]float64, nv)
	z := make([]float64, m)
	u := make([]float64, m)
	zPrev := make([]float64, m)

	for iter := 1; iter <= admmMaxIter; iter++ {
		// x-update
		w := make([]float64, m)
		for i := range w {
			w[i] = h[i] - z[i] + u[i]
		}
		gtw := gt.MulVec(w)
		rhs := make([]float64, nv)
		for i := range rhs {
			rhs[i] = -f[i] + admmRho*gtw[i]
		}
		x = mat.SolveCholesky(l, rhs)

		// z- and u-updates
		gx := g.MulVec(x)
		copy(zPrev, z)
		for i := 0; i < m; i++ {
			z[i] = math.Max(0, h[i]-gx[i]+u[i])
			u[i] += h[i] - gx[i] - z[i]
		}

		// residuals
		primal := 0.0
		for i := 0; i < m; i++ {
			r := h[i] - gx[i] - z[i]
			primal += r * r
		}
		primal = math.Sqrt(primal)

		dz := make([]float64, m)
		for i := range dz {
			dz[i] = z[i] - zPrev[i]
		}
		gtdz := gt.MulVec(dz)
		dual := 0.0
		for _, v := range gtdz {
			dual += v * v
		}
		dual = admmRho * math.Sqrt(dual)

		epsPrimal := absTol*math.Sqrt(float64(m)) + relTol*math.Max(norm(gx), math.Max(norm(z), norm(h)))
		epsDual := absTol*math.Sqrt(float64(nv)) + relTol*admmRho*norm(gt.MulVec(u))

		if primal < epsPrimal && dual < epsDual {
			return &qpSolution{x: x, converged: true, iterations: iter}, nil
		}
	}
	return &qpSolution{x: x, converged: false, iterations: admmMaxIter}, nil
}

// cholWithRetry factors a symmetric matrix, adding a small diagonal
// regularizer and retrying once when the factorization reports a
// non-positive pivot.
func cholWithRetry(m *mat.Dense) (*mat.Dense, error) {
	l, err := mat.Cholesky(m)
	if err == nil {
		return l, nil
	}
	n, _ := m.Dims()
	return mat.Cholesky(m.Add(mat.Identity(n).Scale(regularizer)))
}

func norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
