// Package mat provides the dense matrix kernel used by the solver packages.
//
// Matrices are row-major float64 with fixed dimensions; vectors are plain
// []float64 slices. All operations return fresh values and never alias or
// mutate their operands, so callers can safely reuse inputs across solves:
//
//	A := mat.New(2, 2, []float64{0, 1, 0, 0})
//	P := mat.Identity(2)
//	AtPA := A.T().Mul(P).Mul(A)
//
// Shape conformance is the caller's responsibility: binary operations panic
// on mismatched dimensions, the same way an out-of-range slice index does.
// Numerical failure modes (a singular matrix handed to [Inverse], a factor
// that is not positive definite handed to [Cholesky]) are recoverable and
// reported as errors instead.
package mat
