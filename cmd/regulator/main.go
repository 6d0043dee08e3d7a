package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/regulator/internal/config"
	"github.com/san-kum/regulator/internal/live"
	"github.com/san-kum/regulator/internal/store"
	"github.com/san-kum/regulator/internal/viz"
	"github.com/san-kum/regulator/lqg"
	"github.com/san-kum/regulator/lqr"
	"github.com/san-kum/regulator/mpc"
	"github.com/san-kum/regulator/sim"
)

var (
	configFile string
	horizon    int
	steps      int
	controller string
	exportPath string
	frameRate  int
	reference  float64
	tol        float64
	maxIter    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "regulator",
		Short: "discrete-time optimal control toolbox",
	}

	lqrCmd := &cobra.Command{
		Use:   "lqr [preset]",
		Short: "solve an infinite-horizon LQR design",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLQR,
	}

	lqgCmd := &cobra.Command{
		Use:   "lqg [preset]",
		Short: "design an LQG output-feedback controller",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLQG,
	}

	trackCmd := &cobra.Command{
		Use:   "track [preset]",
		Short: "design integral-action tracking and simulate a step reference",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTrack,
	}
	trackCmd.Flags().Float64Var(&reference, "ref", 1.0, "constant reference value")

	mpcCmd := &cobra.Command{
		Use:   "mpc [preset]",
		Short: "solve one constrained MPC planning cycle",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMPC,
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate [preset]",
		Short: "run a closed loop and plot the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulate,
	}
	simulateCmd.Flags().StringVar(&controller, "controller", "lqr", "controller (lqr|mpc)")
	simulateCmd.Flags().StringVar(&exportPath, "export", "", "export run as JSON ('-' for stdout)")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "watch a closed loop run live",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&controller, "controller", "lqr", "controller (lqr|mpc)")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frames per second")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in plants",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	for _, c := range []*cobra.Command{lqrCmd, lqgCmd, trackCmd, mpcCmd, simulateCmd, liveCmd} {
		c.Flags().StringVar(&configFile, "config", "", "plant config file (yaml)")
		c.Flags().IntVar(&horizon, "horizon", 0, "mpc horizon (overrides config)")
		c.Flags().IntVar(&steps, "steps", 0, "simulation steps (overrides config)")
		c.Flags().Float64Var(&tol, "tol", 0, "riccati tolerance (overrides config)")
		c.Flags().IntVar(&maxIter, "max-iter", 0, "iteration budget (overrides config)")
	}

	rootCmd.AddCommand(lqrCmd, lqgCmd, trackCmd, mpcCmd, simulateCmd, liveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the preset argument and the --config/-flag overrides.
func loadConfig(args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		preset := config.GetPreset(args[0])
		if preset == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", args[0], strings.Join(config.ListPresets(), ", "))
		}
		base := cfg
		cfg = preset
		if cfg.Horizon == 0 {
			cfg.Horizon = base.Horizon
		}
		if cfg.Steps == 0 {
			cfg.Steps = base.Steps
		}
		if cfg.Tol == 0 {
			cfg.Tol = base.Tol
		}
		if cfg.MaxIter == 0 {
			cfg.MaxIter = base.MaxIter
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if horizon > 0 {
		cfg.Horizon = horizon
	}
	if steps > 0 {
		cfg.Steps = steps
	}
	if tol > 0 {
		cfg.Tol = tol
	}
	if maxIter > 0 {
		cfg.MaxIter = maxIter
	}
	return cfg, nil
}

func lqrSystem(cfg *config.Config) (lqr.System, error) {
	a, err := config.Dense(cfg.A)
	if err != nil {
		return lqr.System{}, err
	}
	b, err := config.Dense(cfg.B)
	if err != nil {
		return lqr.System{}, err
	}
	q, err := config.Dense(cfg.Q)
	if err != nil {
		return lqr.System{}, err
	}
	r, err := config.Dense(cfg.R)
	if err != nil {
		return lqr.System{}, err
	}
	return lqr.System{A: a, B: b, Q: q, R: r}, nil
}

func solverOptions(cfg *config.Config) lqr.Options {
	return lqr.Options{Tol: cfg.Tol, MaxIter: cfg.MaxIter}
}

func runLQR(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	sys, err := lqrSystem(cfg)
	if err != nil {
		return err
	}

	res, err := lqr.Solve(sys, solverOptions(cfg))
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render("lqr design: " + cfg.Plant))
	status := "converged"
	if !res.Converged {
		status = "max_iter"
	}
	fmt.Printf("%s (%d iterations)\n\n", viz.Status(status), res.Iterations)
	fmt.Print(viz.FormatMatrix("K", res.K))
	fmt.Print(viz.FormatMatrix("P", res.P))
	fmt.Println("closed-loop eigenvalues:")
	fmt.Print(viz.FormatEigenvalues(res.Eigenvalues))
	return nil
}

func runLQG(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	sys, err := lqrSystem(cfg)
	if err != nil {
		return err
	}
	c, err := config.Dense(cfg.C)
	if err != nil {
		return err
	}
	qn, err := config.Dense(cfg.Qn)
	if err != nil {
		return err
	}
	rn, err := config.Dense(cfg.Rn)
	if err != nil {
		return err
	}

	d, err := lqg.Design(lqg.System{System: sys, C: c, Qn: qn, Rn: rn}, solverOptions(cfg))
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render("lqg design: " + cfg.Plant))
	regStatus, filtStatus := "converged", "converged"
	if !d.RegulatorConverged {
		regStatus = "max_iter"
	}
	if !d.FilterConverged {
		filtStatus = "max_iter"
	}
	fmt.Printf("regulator %s (%d iterations), filter %s (%d iterations)\n\n",
		viz.Status(regStatus), d.Iterations, viz.Status(filtStatus), d.FilterIterations)
	fmt.Print(viz.FormatMatrix("K", d.K))
	fmt.Print(viz.FormatMatrix("L", d.L))
	fmt.Print(viz.FormatMatrix("Pf", d.Pf))
	return nil
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	sys, err := lqrSystem(cfg)
	if err != nil {
		return err
	}
	c, err := config.Dense(cfg.C)
	if err != nil {
		return err
	}
	tsys := lqr.TrackingSystem{System: sys, C: c}

	res, err := lqr.SolveTracking(tsys, solverOptions(cfg))
	if err != nil {
		return err
	}

	ny, _ := c.Dims()
	ref := make([]float64, ny)
	for i := range ref {
		ref[i] = reference
	}

	traj, err := lqr.SimulateTracking(tsys, res, cfg.X0, ref, cfg.Steps)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render("tracking design: " + cfg.Plant))
	fmt.Print(viz.FormatMatrix("Kx", res.Kx))
	fmt.Print(viz.FormatMatrix("Ki", res.Ki))
	fmt.Println()
	fmt.Println(viz.PlotChannel(fmt.Sprintf("y[0] vs ref %.2f over %d steps", reference, cfg.Steps), traj.Outputs, 0, 12))

	final := traj.Errors[len(traj.Errors)-1]
	fmt.Printf("\nfinal tracking error: %.3e\n", final[0])
	return nil
}

func mpcConfig(cfg *config.Config) (mpc.Config, error) {
	sys, err := lqrSystem(cfg)
	if err != nil {
		return mpc.Config{}, err
	}
	return mpc.Config{
		A: sys.A, B: sys.B, Q: sys.Q, R: sys.R,
		Horizon: cfg.Horizon,
		UMin:    cfg.UMin, UMax: cfg.UMax,
		XMin: cfg.XMin, XMax: cfg.XMax,
		DUMax: cfg.DUMax,
	}, nil
}

func runMPC(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	mcfg, err := mpcConfig(cfg)
	if err != nil {
		return err
	}

	res, err := mpc.Solve(mcfg, cfg.X0, nil)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render("mpc plan: " + cfg.Plant))
	fmt.Printf("%s  %s  %s\n\n",
		viz.Status(string(res.Status)),
		viz.Metric("iterations", fmt.Sprintf("%d", res.Iterations)),
		viz.Metric("cost", fmt.Sprintf("%.6f", res.Cost)))
	fmt.Println(viz.PlotChannel("predicted x[0]", res.XPredicted, 0, 10))
	fmt.Println()
	fmt.Println(viz.PlotChannel("planned u[0]", res.USequence, 0, 10))
	fmt.Printf("\nfirst control: %.6v\n", res.UOptimal)
	return nil
}

// buildLoop assembles plant and controller for simulate/live.
func buildLoop(cfg *config.Config) (*sim.Linear, sim.Controller, error) {
	sys, err := lqrSystem(cfg)
	if err != nil {
		return nil, nil, err
	}
	c, err := config.DenseOpt(cfg.C)
	if err != nil {
		return nil, nil, err
	}
	plant := &sim.Linear{A: sys.A, B: sys.B, C: c}

	switch controller {
	case "lqr":
		res, err := lqr.Solve(sys, solverOptions(cfg))
		if err != nil {
			return nil, nil, err
		}
		return plant, sim.NewGainFeedback(res.K, nil), nil
	case "mpc":
		mcfg, err := mpcConfig(cfg)
		if err != nil {
			return nil, nil, err
		}
		return plant, sim.NewReceding(mcfg), nil
	default:
		return nil, nil, fmt.Errorf("unknown controller: %s", controller)
	}
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	plant, ctrl, err := buildLoop(cfg)
	if err != nil {
		return err
	}

	loop := sim.New(plant, ctrl)
	loop.AddMetric(sim.NewControlEffort())
	loop.AddMetric(sim.NewStability(100))
	loop.AddMetric(sim.NewSettlingStep(0.05))

	fmt.Printf("running %s with %s controller...\n", cfg.Plant, controller)
	result, err := loop.Run(context.Background(), cfg.X0, cfg.Steps)
	if err != nil {
		return err
	}

	if r, ok := ctrl.(*sim.Receding); ok && r.Err != nil {
		return r.Err
	}

	fmt.Println()
	fmt.Println(viz.PlotChannel("x[0]", result.States, 0, 12))
	fmt.Println()
	for name, val := range result.Metrics {
		fmt.Println(viz.Metric(name, fmt.Sprintf("%.6f", val)))
	}

	if exportPath == "-" {
		return store.ExportJSONTo(os.Stdout, cfg.Plant, controller, result)
	}
	if exportPath != "" {
		if err := store.ExportJSON(exportPath, cfg.Plant, controller, result); err != nil {
			return err
		}
		fmt.Printf("\nexported to %s\n", exportPath)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	plant, ctrl, err := buildLoop(cfg)
	if err != nil {
		return err
	}
	return live.Run(live.NewModel(plant, ctrl, cfg.Plant, cfg.X0, cfg.Steps, frameRate))
}
