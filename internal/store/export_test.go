package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/regulator/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		States:   [][]float64{{1, 0}, {0.9, -0.1}},
		Controls: [][]float64{{-0.5}},
		Outputs:  [][]float64{{1}},
		Metrics:  map[string]float64{"control_effort": 0.5},
		Steps:    1,
	}
}

func TestExportJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")

	if err := ExportJSON(path, "double_integrator", "lqr", sampleResult()); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if data.Plant != "double_integrator" || data.Steps != 1 {
		t.Errorf("unexpected export: %+v", data)
	}
	if data.Metrics["control_effort"] != 0.5 {
		t.Errorf("metrics not preserved: %v", data.Metrics)
	}
}

func TestExportJSONTo(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSONTo(&buf, "pendulum", "mpc", sampleResult()); err != nil {
		t.Fatalf("ExportJSONTo: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"plant": "pendulum"`)) {
		t.Error("stream export missing plant field")
	}
}
