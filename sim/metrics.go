package sim

import "math"

// ControlEffort averages the absolute control magnitude over a run.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(x, u []float64, k int) {
	for _, v := range u {
		c.sum += math.Abs(v)
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// Stability reports the fraction of steps where every state channel stayed
// inside a magnitude threshold.
type Stability struct {
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(x, u []float64, k int) {
	s.samples++
	for _, v := range x {
		if math.Abs(v) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// SettlingStep records the first step after which the state norm stayed
// below a tolerance for the rest of the run. Value is -1 when the loop
// never settled.
type SettlingStep struct {
	tol     float64
	settled int
}

func NewSettlingStep(tol float64) *SettlingStep {
	return &SettlingStep{tol: tol, settled: -1}
}

func (s *SettlingStep) Name() string { return "settling_step" }

func (s *SettlingStep) Observe(x, u []float64, k int) {
	norm := 0.0
	for _, v := range x {
		norm += v * v
	}
	if math.Sqrt(norm) <= s.tol {
		if s.settled < 0 {
			s.settled = k
		}
	} else {
		s.settled = -1
	}
}

func (s *SettlingStep) Value() float64 { return float64(s.settled) }

func (s *SettlingStep) Reset() {
	s.settled = -1
}
