package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/Eisbrenner/parcels/internal/config"
	"github.com/Eisbrenner/parcels/internal/experiment"
	"github.com/Eisbrenner/parcels/internal/kernels"
	"github.com/Eisbrenner/parcels/internal/particle"
	"github.com/Eisbrenner/parcels/internal/storage"
	"github.com/Eisbrenner/parcels/internal/viz"
)

var (
	dataDir        string
	kernelName     string
	dt             float64
	runtimeSec     float64
	outputInterval float64
	numParticles   int
	lonStart       float64
	lonEnd         float64
	latStart       float64
	latEnd         float64
	depthStart     float64
	depthEnd       float64
	recovery       string
	backendName    string
	haloZonal      bool
	haloMeridional bool
	haloSize       int
	rk45Tol        float64
	// Config file
	configFile string
	// Preset name
	preset string
	// Live view playback speed, simulated seconds per wall second
	speedup float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "parcels",
		Short: "lagrangian particle tracking through ocean and atmosphere flows",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".parcels", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [flow]",
		Short: "run a simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored trajectories",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live [flow]",
		Short: "run a simulation with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  liveSimulation,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().Float64Var(&speedup, "speedup", 3600, "simulated seconds per wall second")

	flowsCmd := &cobra.Command{
		Use:   "flows",
		Short: "list available flows",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range experiment.NewRegistry().ListFlows() {
				fmt.Println(name)
			}
		},
	}

	kernelsCmd := &cobra.Command{
		Use:   "kernels",
		Short: "list available kernels",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range experiment.NewRegistry().ListKernels() {
				fmt.Println(name)
			}
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [flow]",
		Short: "list available presets for a flow",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets(args[0]) {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, liveCmd, flowsCmd, kernelsCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&kernelName, "kernel", "RK4", "advection kernel")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (s), negative for backward integration")
	cmd.Flags().Float64Var(&runtimeSec, "time", config.DefaultRuntime, "runtime (s)")
	cmd.Flags().Float64Var(&outputInterval, "output", config.DefaultOutputInterval, "output interval (s)")
	cmd.Flags().IntVar(&numParticles, "particles", config.DefaultNumParticles, "number of particles")
	cmd.Flags().Float64Var(&lonStart, "lon0", 12000, "release longitude start")
	cmd.Flags().Float64Var(&lonEnd, "lon1", 21000, "release longitude end")
	cmd.Flags().Float64Var(&latStart, "lat0", 12500, "release latitude start")
	cmd.Flags().Float64Var(&latEnd, "lat1", 12500, "release latitude end")
	cmd.Flags().Float64Var(&depthStart, "depth0", 0, "release depth start")
	cmd.Flags().Float64Var(&depthEnd, "depth1", 0, "release depth end")
	cmd.Flags().StringVar(&recovery, "recovery", "none", "out-of-bounds recovery (none, delete)")
	cmd.Flags().StringVar(&backendName, "backend", "parallel", "compute backend (serial, parallel)")
	cmd.Flags().BoolVar(&haloZonal, "halo-zonal", false, "add zonal periodic halo")
	cmd.Flags().BoolVar(&haloMeridional, "halo-meridional", false, "add meridional periodic halo")
	cmd.Flags().IntVar(&haloSize, "halo", 0, "halo size in cells (0 = default)")
	cmd.Flags().Float64Var(&rk45Tol, "rk45-tol", config.DefaultRK45Tolerance, "RK45 error tolerance")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig resolves the effective configuration for one run. Precedence,
// lowest to highest: defaults, preset, config file, explicitly set flags.
func buildConfig(cmd *cobra.Command, flow string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Flow = flow

	if preset != "" {
		p := config.GetPreset(flow, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(flow))
		}
		*cfg = *p
	}
	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *fileCfg
		cfg.Flow = flow
	}

	if cmd.Flags().Changed("kernel") || cfg.Kernel == "" {
		cfg.Kernel = kernelName
	}
	if cmd.Flags().Changed("dt") || cfg.Dt == 0 {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") || cfg.Runtime == 0 {
		cfg.Runtime = runtimeSec
	}
	if cmd.Flags().Changed("output") || cfg.OutputInterval == 0 {
		cfg.OutputInterval = outputInterval
	}
	if cmd.Flags().Changed("recovery") || cfg.Recovery == "" {
		cfg.Recovery = recovery
	}
	if cmd.Flags().Changed("backend") || cfg.Backend == "" {
		cfg.Backend = backendName
	}
	if cmd.Flags().Changed("particles") || cfg.Release.NumParticles == 0 {
		cfg.Release.NumParticles = numParticles
	}
	if cmd.Flags().Changed("lon0") {
		cfg.Release.LonStart = lonStart
	}
	if cmd.Flags().Changed("lon1") {
		cfg.Release.LonEnd = lonEnd
	}
	if cmd.Flags().Changed("lat0") {
		cfg.Release.LatStart = latStart
	}
	if cmd.Flags().Changed("lat1") {
		cfg.Release.LatEnd = latEnd
	}
	if cmd.Flags().Changed("depth0") {
		cfg.Release.DepthStart = depthStart
	}
	if cmd.Flags().Changed("depth1") {
		cfg.Release.DepthEnd = depthEnd
	}
	if cmd.Flags().Changed("halo-zonal") {
		cfg.Halo.Zonal = haloZonal
	}
	if cmd.Flags().Changed("halo-meridional") {
		cfg.Halo.Meridional = haloMeridional
	}
	if cmd.Flags().Changed("halo") {
		cfg.Halo.Size = haloSize
	}
	if cmd.Flags().Changed("rk45-tol") || cfg.RK45.Tolerance == 0 {
		cfg.RK45.Tolerance = rk45Tol
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return err
	}

	w, err := st.Begin(storage.RunMetadata{
		Flow:           cfg.Flow,
		Kernel:         cfg.Kernel,
		Dt:             cfg.Dt,
		Runtime:        cfg.Runtime,
		OutputInterval: cfg.OutputInterval,
		NumParticles:   cfg.Release.NumParticles,
	})
	if err != nil {
		return err
	}

	fmt.Printf("running %s with %s...\n", cfg.Flow, cfg.Kernel)
	start := time.Now()
	runErr := exp.Run(context.Background(), w)
	if err := w.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", w.ID())
	fmt.Printf("particles: %d\n", exp.ParticleSet().Len())
	if samples := exp.Diagnostics().Samples(); len(samples) > 0 {
		last := samples[len(samples)-1]
		fmt.Printf("final spread: %.6g\n", last.Spread)
		fmt.Printf("displacement: %.6g\n", exp.Diagnostics().Displacement())
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFLOW\tKERNEL\tTIME\tRUNTIME\tDT\tPARTICLES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0fs\t%.0fs\t%d\n",
			run.ID,
			run.Flow,
			run.Kernel,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Runtime,
			run.Dt,
			run.NumParticles,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trajs, err := st.LoadTrajectories(runID)
	if err != nil {
		return err
	}
	if len(trajs) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("flow: %s\n", meta.Flow)
	fmt.Printf("trajectories: %d\n\n", len(trajs))

	maxPlots := 4
	plotted := 0
	for id := 0; plotted < maxPlots; id++ {
		traj, ok := trajs[id]
		if !ok {
			break
		}
		lons := make([]float64, len(traj))
		lats := make([]float64, len(traj))
		for i, pt := range traj {
			lons[i] = pt.Lon
			lats[i] = pt.Lat
		}
		fmt.Println(asciigraph.Plot(lons,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("particle %d: lon vs checkpoint", id)),
		))
		fmt.Println()
		fmt.Println(asciigraph.Plot(lats,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("particle %d: lat vs checkpoint", id)),
		))
		fmt.Println()
		plotted++
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func liveSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return err
	}
	reg := experiment.NewRegistry()
	kernel, err := reg.GetKernel(cfg.Kernel, cfg)
	if err != nil {
		return err
	}
	var rec map[particle.State]kernels.Kernel
	if cfg.Recovery == "delete" {
		rec = map[particle.State]kernels.Kernel{
			particle.ErrorOutOfBounds: kernels.DeleteParticle(),
		}
	}

	frameTime := speedup / 30 // 30 fps
	model := viz.NewModel(exp.ParticleSet(), kernel, rec, cfg.Dt, frameTime, cfg.Flow)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
