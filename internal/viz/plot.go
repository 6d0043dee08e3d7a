package viz

import (
	"fmt"
	"math/cmplx"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/regulator/mat"
)

// PlotSeries renders one scalar series as a terminal graph.
func PlotSeries(caption string, data []float64, height int) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Caption(caption),
	)
}

// PlotChannel extracts channel i of a trajectory and plots it.
func PlotChannel(caption string, traj [][]float64, i, height int) string {
	data := make([]float64, 0, len(traj))
	for _, v := range traj {
		if i < len(v) {
			data = append(data, v[i])
		}
	}
	return PlotSeries(caption, data, height)
}

// FormatMatrix renders a matrix with aligned columns for CLI output.
func FormatMatrix(name string, m *mat.Dense) string {
	rows, cols := m.Dims()
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%dx%d):\n", name, rows, cols)
	for i := 0; i < rows; i++ {
		b.WriteString("  [")
		for j := 0; j < cols; j++ {
			if j > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "% .6f", m.At(i, j))
		}
		b.WriteString("]\n")
	}
	return b.String()
}

// FormatEigenvalues renders eigenvalue estimates with their magnitudes.
func FormatEigenvalues(eigs []complex128) string {
	var b strings.Builder
	for i, e := range eigs {
		mag := cmplx.Abs(e)
		marker := "stable"
		if mag >= 1 {
			marker = "UNSTABLE"
		}
		if imag(e) == 0 {
			fmt.Fprintf(&b, "  λ%d = % .6f            |λ| = %.6f  %s\n", i, real(e), mag, marker)
		} else {
			fmt.Fprintf(&b, "  λ%d = % .6f%+.6fi  |λ| = %.6f  %s\n", i, real(e), imag(e), mag, marker)
		}
	}
	return b.String()
}
