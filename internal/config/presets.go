package config

// Presets are small discrete-time plants used by the CLI. Continuous
// models are discretized at the dt noted on each entry.
var Presets = map[string]*Config{
	"double_integrator": {
		Plant: "double_integrator", // dt = 0.1
		A:     [][]float64{{1, 0.1}, {0, 1}},
		B:     [][]float64{{0.005}, {0.1}},
		C:     [][]float64{{1, 0}},
		Q:     [][]float64{{1, 0}, {0, 0.1}},
		R:     [][]float64{{0.01}},
		Qn:    [][]float64{{0.001, 0}, {0, 0.001}},
		Rn:    [][]float64{{0.01}},
		UMin:  []float64{-1},
		UMax:  []float64{1},
		X0:    []float64{1, 0},
	},
	"pendulum": {
		Plant: "pendulum", // inverted, linearized upright, dt = 0.02
		A:     [][]float64{{1.0039, 0.02}, {0.3924, 1.0039}},
		B:     [][]float64{{0.0002}, {0.02}},
		C:     [][]float64{{1, 0}},
		Q:     [][]float64{{10, 0}, {0, 1}},
		R:     [][]float64{{0.1}},
		Qn:    [][]float64{{0.0001, 0}, {0, 0.0001}},
		Rn:    [][]float64{{0.001}},
		UMin:  []float64{-5},
		UMax:  []float64{5},
		X0:    []float64{0.2, 0},
	},
	"cartpole": {
		Plant: "cartpole", // linearized upright, dt = 0.02
		A: [][]float64{
			{1, 0.02, 0, 0},
			{0, 1, -0.0196, 0},
			{0, 0, 1.0043, 0.02},
			{0, 0, 0.4315, 1.0043},
		},
		B:    [][]float64{{0.0002}, {0.02}, {-0.0003}, {-0.0294}},
		C:    [][]float64{{1, 0, 0, 0}, {0, 0, 1, 0}},
		Q:    [][]float64{{1, 0, 0, 0}, {0, 0.1, 0, 0}, {0, 0, 10, 0}, {0, 0, 0, 0.1}},
		R:    [][]float64{{0.05}},
		Qn:   [][]float64{{1e-4, 0, 0, 0}, {0, 1e-4, 0, 0}, {0, 0, 1e-4, 0}, {0, 0, 0, 1e-4}},
		Rn:   [][]float64{{0.01, 0}, {0, 0.01}},
		UMin: []float64{-10},
		UMax: []float64{10},
		X0:   []float64{0, 0, 0.1, 0},
	},
	"dc_motor": {
		Plant: "dc_motor", // dt = 0.01
		A:     [][]float64{{0.9802, 0.0196}, {0, 0.9608}},
		B:     [][]float64{{0.0001}, {0.0098}},
		C:     [][]float64{{1, 0}},
		Q:     [][]float64{{5, 0}, {0, 0.5}},
		R:     [][]float64{{1}},
		Qn:    [][]float64{{1e-5, 0}, {0, 1e-5}},
		Rn:    [][]float64{{0.001}},
		UMin:  []float64{-24},
		UMax:  []float64{24},
		X0:    []float64{1, 0},
	},
}

// GetPreset returns a copy of the named preset, or nil when unknown.
// Copying keeps callers that override fields from editing the table.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	out := *cfg
	return &out
}

// ListPresets returns all preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
