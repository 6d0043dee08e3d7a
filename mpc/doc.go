// Package mpc implements condensed-QP linear Model Predictive Control.
//
// The finite-horizon problem is condensed by eliminating the state
// trajectory, leaving a dense quadratic program over the stacked control
// vector U = [u0; ...; u_{N-1}]. The QP is solved directly by Cholesky
// factorization when unconstrained and by ADMM over a slack reformulation
// when box, state, or rate constraints are active:
//
//	cfg := mpc.Config{A: a, B: b, Q: q, R: r, Horizon: 20, UMax: []float64{1}, UMin: []float64{-1}}
//	res, err := mpc.Solve(cfg, x0, nil)
//	// apply res.UOptimal, replan next cycle with uPrev = res.UOptimal
//
// Infeasible constraint sets are not detected explicitly; they surface as
// Status == StatusMaxIter after the ADMM budget is spent.
package mpc
