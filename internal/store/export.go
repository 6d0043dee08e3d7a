// Package store exports closed-loop runs for offline analysis. Only the
// CLI persists anything; the solver packages stay stateless.
package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/regulator/sim"
)

// ExportData is the JSON layout of one closed-loop run.
type ExportData struct {
	Plant      string             `json:"plant"`
	Controller string             `json:"controller"`
	Steps      int                `json:"steps"`
	States     [][]float64        `json:"states"`
	Controls   [][]float64        `json:"controls"`
	Outputs    [][]float64        `json:"outputs"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run to path as indented JSON.
func ExportJSON(path, plant, controller string, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeJSON(file, plant, controller, result)
}

// ExportJSONTo streams a run to w, used for stdout export.
func ExportJSONTo(w io.Writer, plant, controller string, result *sim.Result) error {
	return writeJSON(w, plant, controller, result)
}

func writeJSON(w io.Writer, plant, controller string, result *sim.Result) error {
	data := ExportData{
		Plant:      plant,
		Controller: controller,
		Steps:      result.Steps,
		States:     result.States,
		Controls:   result.Controls,
		Outputs:    result.Outputs,
		Metrics:    result.Metrics,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
