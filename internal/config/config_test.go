package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Plant != "double_integrator" {
		t.Errorf("expected plant double_integrator, got %s", cfg.Plant)
	}
	if cfg.Horizon <= 0 {
		t.Error("horizon should be positive")
	}
	if cfg.Tol <= 0 {
		t.Error("tol should be positive")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("pendulum")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.A) != 2 || len(cfg.A[0]) != 2 {
		t.Error("pendulum A should be 2x2")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for unknown preset")
	}
}

func TestPresetMatricesConform(t *testing.T) {
	for name, cfg := range Presets {
		a, err := Dense(cfg.A)
		if err != nil {
			t.Fatalf("%s: A: %v", name, err)
		}
		b, err := Dense(cfg.B)
		if err != nil {
			t.Fatalf("%s: B: %v", name, err)
		}
		nx, _ := a.Dims()
		br, _ := b.Dims()
		if br != nx {
			t.Errorf("%s: A is %dx, B has %d rows", name, nx, br)
		}
		if len(cfg.X0) != nx {
			t.Errorf("%s: x0 length %d, want %d", name, len(cfg.X0), nx)
		}
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plant.yaml")

	cfg := DefaultConfig()
	cfg.Horizon = 42
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Horizon != 42 {
		t.Errorf("horizon = %d, want 42", loaded.Horizon)
	}
	if loaded.Plant != cfg.Plant {
		t.Errorf("plant = %s, want %s", loaded.Plant, cfg.Plant)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(os.TempDir(), "does-not-exist.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDenseRagged(t *testing.T) {
	if _, err := Dense([][]float64{{1, 2}, {3}}); err == nil {
		t.Error("expected error for ragged rows")
	}
}

func TestDenseOptNil(t *testing.T) {
	m, err := DenseOpt(nil)
	if err != nil || m != nil {
		t.Errorf("DenseOpt(nil) = %v, %v; want nil, nil", m, err)
	}
}
