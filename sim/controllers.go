package sim

import (
	"github.com/san-kum/regulator/mat"
	"github.com/san-kum/regulator/mpc"
)

// GainFeedback applies u = -K (x - target), the control law produced by
// the lqr package.
type GainFeedback struct {
	K      *mat.Dense
	Target []float64
}

// NewGainFeedback returns a static state-feedback controller. A nil target
// regulates to the origin.
func NewGainFeedback(k *mat.Dense, target []float64) *GainFeedback {
	return &GainFeedback{K: k, Target: target}
}

func (g *GainFeedback) Compute(x []float64, k int) []float64 {
	e := make([]float64, len(x))
	for i := range x {
		e[i] = x[i]
		if g.Target != nil && i < len(g.Target) {
			e[i] -= g.Target[i]
		}
	}
	kx := g.K.MulVec(e)
	u := make([]float64, len(kx))
	for i := range u {
		u[i] = -kx[i]
	}
	return u
}

// Receding replans an MPC problem at every step and applies the first
// control, carrying the previous control across cycles so rate bounds stay
// continuous.
type Receding struct {
	Config mpc.Config

	uPrev      []float64
	LastStatus mpc.Status
	Err        error
}

// NewReceding returns a receding-horizon controller for cfg.
func NewReceding(cfg mpc.Config) *Receding {
	return &Receding{Config: cfg}
}

func (r *Receding) Compute(x []float64, k int) []float64 {
	res, err := mpc.Solve(r.Config, x, r.uPrev)
	if err != nil {
		// A malformed configuration cannot be reported from here; latch
		// the error and hold zero control.
		r.Err = err
		_, nu := r.Config.Dims()
		return make([]float64, nu)
	}
	r.LastStatus = res.Status
	r.uPrev = res.UOptimal
	return res.UOptimal
}

// None is the passthrough controller producing zero control.
type None struct {
	Dim int
}

func NewNone(dim int) *None { return &None{Dim: dim} }

func (n *None) Compute(x []float64, k int) []float64 {
	return make([]float64, n.Dim)
}
