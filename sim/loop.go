package sim

import (
	"context"
)

// Loop wires a plant and a controller together with any number of metrics
// and observers.
type Loop struct {
	plant     *Linear
	ctrl      Controller
	metrics   []Metric
	observers []Observer
}

// New returns a closed loop over plant and ctrl.
func New(plant *Linear, ctrl Controller) *Loop {
	return &Loop{
		plant:     plant,
		ctrl:      ctrl,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (l *Loop) AddMetric(m Metric)     { l.metrics = append(l.metrics, m) }
func (l *Loop) AddObserver(o Observer) { l.observers = append(l.observers, o) }

// Run advances the loop for steps samples from x0. The context is checked
// between steps; cancellation returns the partial result along with the
// context error.
func (l *Loop) Run(ctx context.Context, x0 []float64, steps int) (*Result, error) {
	result := &Result{
		States:   make([][]float64, 0, steps+1),
		Controls: make([][]float64, 0, steps),
		Outputs:  make([][]float64, 0, steps),
		Metrics:  make(map[string]float64),
	}

	for _, m := range l.metrics {
		m.Reset()
	}

	x := append([]float64(nil), x0...)
	result.States = append(result.States, append([]float64(nil), x...))

	for k := 0; k < steps; k++ {
		select {
		case <-ctx.Done():
			l.collect(result)
			return result, ctx.Err()
		default:
		}

		u := l.ctrl.Compute(x, k)

		for _, m := range l.metrics {
			m.Observe(x, u, k)
		}
		for _, obs := range l.observers {
			obs.OnStep(x, u, k)
		}

		result.Outputs = append(result.Outputs, l.plant.Output(x))
		result.Controls = append(result.Controls, u)

		x = l.plant.Step(x, u)
		result.States = append(result.States, append([]float64(nil), x...))
		result.Steps++
	}

	l.collect(result)
	return result, nil
}

func (l *Loop) collect(result *Result) {
	for _, m := range l.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
