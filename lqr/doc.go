// Package lqr solves discrete-time linear-quadratic regulator problems.
//
// The central primitive is the Discrete Algebraic Riccati Equation (DARE),
// solved by fixed-point iteration:
//
//	sys := lqr.System{A: a, B: b, Q: q, R: r}
//	res, err := lqr.Solve(sys, lqr.DefaultOptions())
//	// u = -res.K * x stabilizes x' = A x + B u
//
// [SolveTracking] augments the plant with integral-error states to obtain
// zero steady-state error for constant references.
//
// Solvers are best-effort: when an iteration budget runs out the last
// iterate is returned with Converged set to false, never an error. Errors
// are reserved for malformed inputs ([ErrInvalidDimensions]).
package lqr
