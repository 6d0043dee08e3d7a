// Package sim runs discrete-time closed loops around the solver packages:
// a linear plant, a feedback controller, and optional metrics and
// observers sampled at every step.
package sim

import (
	"github.com/san-kum/regulator/mat"
)

// Controller computes the control input at step k.
type Controller interface {
	Compute(x []float64, k int) []float64
}

// Metric accumulates a scalar statistic over a run.
type Metric interface {
	Name() string
	Observe(x, u []float64, k int)
	Value() float64
	Reset()
}

// Observer is notified of every step, e.g. for live rendering.
type Observer interface {
	OnStep(x, u []float64, k int)
}

// Linear is the plant x' = A x + B u with output y = C x. A nil C makes
// the full state observable.
type Linear struct {
	A, B, C *mat.Dense
}

// StateDim returns nx.
func (l *Linear) StateDim() int {
	n, _ := l.A.Dims()
	return n
}

// ControlDim returns nu.
func (l *Linear) ControlDim() int {
	_, n := l.B.Dims()
	return n
}

// Step advances the plant by one sample.
func (l *Linear) Step(x, u []float64) []float64 {
	ax := l.A.MulVec(x)
	bu := l.B.MulVec(u)
	next := make([]float64, len(ax))
	for i := range next {
		next[i] = ax[i] + bu[i]
	}
	return next
}

// Output maps a state to the measured output.
func (l *Linear) Output(x []float64) []float64 {
	if l.C == nil {
		return append([]float64(nil), x...)
	}
	return l.C.MulVec(x)
}

// Result collects a finished closed-loop run.
type Result struct {
	States   [][]float64
	Controls [][]float64
	Outputs  [][]float64
	Metrics  map[string]float64
	Steps    int
}
