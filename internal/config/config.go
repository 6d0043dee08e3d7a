package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/regulator/mat"
)

const (
	DefaultHorizon = 20
	DefaultSteps   = 200
	DefaultTol     = 1e-10
	DefaultMaxIter = 1000
)

// Config describes a plant and the solver settings for one CLI invocation.
// Matrices are row-major nested slices so they read naturally in yaml.
type Config struct {
	Plant string `yaml:"plant"`

	A [][]float64 `yaml:"a"`
	B [][]float64 `yaml:"b"`
	C [][]float64 `yaml:"c,omitempty"`
	Q [][]float64 `yaml:"q"`
	R [][]float64 `yaml:"r"`

	Qn [][]float64 `yaml:"qn,omitempty"` // process noise (lqg)
	Rn [][]float64 `yaml:"rn,omitempty"` // measurement noise (lqg)

	Horizon int       `yaml:"horizon"`
	UMin    []float64 `yaml:"u_min,omitempty"`
	UMax    []float64 `yaml:"u_max,omitempty"`
	XMin    []float64 `yaml:"x_min,omitempty"`
	XMax    []float64 `yaml:"x_max,omitempty"`
	DUMax   []float64 `yaml:"du_max,omitempty"`

	X0        []float64 `yaml:"x0"`
	Reference []float64 `yaml:"reference,omitempty"`
	Steps     int       `yaml:"steps"`

	Tol     float64 `yaml:"tol"`
	MaxIter int     `yaml:"max_iter"`
}

// DefaultConfig returns the double-integrator defaults.
func DefaultConfig() *Config {
	cfg := GetPreset("double_integrator")
	cfg.Horizon = DefaultHorizon
	cfg.Steps = DefaultSteps
	cfg.Tol = DefaultTol
	cfg.MaxIter = DefaultMaxIter
	return cfg
}

// Load reads a yaml config, filling unset fields from the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as yaml.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Dense converts a nested row-major slice into a matrix, validating that
// every row has the same length.
func Dense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("config: empty matrix")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("config: ragged matrix row %d: %d values, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.New(len(rows), cols, data), nil
}

// DenseOpt is Dense for optional matrices: nil in, nil out.
func DenseOpt(rows [][]float64) (*mat.Dense, error) {
	if rows == nil {
		return nil, nil
	}
	return Dense(rows)
}
