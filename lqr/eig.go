package lqr

import (
	"math"

	"github.com/san-kum/regulator/mat"
)

const (
	eigIterations  = 200
	subdiagEpsilon = 1e-9
)

// Eigenvalues estimates the eigenvalues of a square matrix with a fixed
// number of unshifted QR iterations (classical Gram-Schmidt), then reads
// 1×1 and 2×2 blocks off the diagonal of the quasi-triangular iterate.
//
// This is a coarse diagnostic for small systems (roughly n <= 10 without
// tightly clustered modes), not a certified eigensolver: there is no
// shifting, deflation, or balancing.
func Eigenvalues(m *mat.Dense) []complex128 {
	n, c := m.Dims()
	if n != c {
		panic("lqr: Eigenvalues requires a square matrix")
	}

	a := m.Clone()
	for it := 0; it < eigIterations; it++ {
		q, r := qrGramSchmidt(a)
		a = r.Mul(q)
	}

	eigs := make([]complex128, 0, n)
	for i := 0; i < n; {
		if i == n-1 || math.Abs(a.At(i+1, i)) < subdiagEpsilon {
			eigs = append(eigs, complex(a.At(i, i), 0))
			i++
			continue
		}
		// 2×2 block: roots of λ² - tr·λ + det.
		tr := a.At(i, i) + a.At(i+1, i+1)
		det := a.At(i, i)*a.At(i+1, i+1) - a.At(i, i+1)*a.At(i+1, i)
		disc := tr*tr/4 - det
		if disc >= 0 {
			s := math.Sqrt(disc)
			eigs = append(eigs, complex(tr/2+s, 0), complex(tr/2-s, 0))
		} else {
			s := math.Sqrt(-disc)
			eigs = append(eigs, complex(tr/2, s), complex(tr/2, -s))
		}
		i += 2
	}
	return eigs
}

// qrGramSchmidt factors a = q*r by classical Gram-Schmidt on columns.
func qrGramSchmidt(a *mat.Dense) (q, r *mat.Dense) {
	n, _ := a.Dims()
	q = mat.Zeros(n, n)
	r = mat.Zeros(n, n)

	for j := 0; j < n; j++ {
		v := make([]float64, n)
		for i := 0; i < n; i++ {
			v[i] = a.At(i, j)
		}
		for k := 0; k < j; k++ {
			dot := 0.0
			for i := 0; i < n; i++ {
				dot += q.At(i, k) * a.At(i, j)
			}
			r.Set(k, j, dot)
			for i := 0; i < n; i++ {
				v[i] -= dot * q.At(i, k)
			}
		}
		norm := 0.0
		for i := 0; i < n; i++ {
			norm += v[i] * v[i]
		}
		norm = math.Sqrt(norm)
		r.Set(j, j, norm)
		if norm < 1e-300 {
			// Degenerate column; leave q column zero.
			continue
		}
		for i := 0; i < n; i++ {
			q.Set(i, j, v[i]/norm)
		}
	}
	return q, r
}
