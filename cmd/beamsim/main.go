package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/beamsim/internal/config"
	"github.com/san-kum/beamsim/internal/experiment"
	"github.com/san-kum/beamsim/internal/lattice"
	"github.com/san-kum/beamsim/internal/sim"
	"github.com/san-kum/beamsim/internal/storage"
	"github.com/san-kum/beamsim/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	name       string
	periods    int
	particles  int
	seed       uint64
	backend    string
	sliceDiag  bool
)

var presetInfo = map[string]string{
	"fodo":             "electron FODO cell",
	"chr_fodo":         "chromatic FODO, Kurth beam",
	"positron_channel": "plasma-like accelerating channel",
	"solenoid_channel": "soft and hard-edge solenoids",
	"rf_linac":         "soft quads and RF cavities",
	"nonlinear_ring":   "IOTA-style nonlinear insert",
}

var (
	headStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "beamsim",
		Short:         "charged particle beam tracking",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunMenu(viz.NewMenu(config.ListPresets(), presetInfo, launchPreset(cmd.Context())))
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".beamsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every element and period")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "track a beam through a lattice and save the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTracking,
	}
	trackingFlags(runCmd)
	runCmd.Flags().StringVar(&name, "name", "", "run name")
	runCmd.Flags().BoolVar(&sliceDiag, "slice-diagnostics", false, "record moments inside thick elements")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "track with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	trackingFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot beam moments along s",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSlice("field", []string{"x_sigma", "y_sigma", "x_emittance"}, "history fields to plot")
	plotCmd.Flags().String("svg", "", "also write each field to <svg>_<field>.svg")

	tuneCmd := &cobra.Command{
		Use:   "tune [run_id]",
		Short: "betatron tunes from turn-by-turn centroids",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringP("output", "o", "", "output file (default stdout)")

	elementsCmd := &cobra.Command{
		Use:   "elements",
		Short: "list element types",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range lattice.NewRegistry().Types() {
				fmt.Println(t)
			}
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list lattice presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	sampleCmd := &cobra.Command{
		Use:   "sample [preset]",
		Short: "sample the initial beam and show its moments",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sampleBeam,
	}
	sampleCmd.Flags().StringVar(&configFile, "config", "", "lattice file (yaml or toml)")
	sampleCmd.Flags().IntVar(&particles, "particles", 0, "number of particles")
	sampleCmd.Flags().Uint64Var(&seed, "seed", config.DefaultSeed, "random seed")
	sampleCmd.Flags().String("plane", "x", "phase-space plane (x, y or t)")
	sampleCmd.Flags().String("svg", "", "write the phase portrait to an SVG file")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, tuneCmd, exportJSONCmd, elementsCmd, presetsCmd, sampleCmd, newScanCmd(), newPoincareCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func trackingFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "lattice file (yaml or toml)")
	cmd.Flags().IntVar(&periods, "periods", config.DefaultPeriods, "number of lattice periods")
	cmd.Flags().IntVar(&particles, "particles", config.DefaultParticles, "number of particles")
	cmd.Flags().Uint64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().StringVar(&backend, "backend", "auto", "compute backend (auto, cpu, serial)")
}

// loadConfig picks the lattice file, the named preset or the default
// lattice, in that order, and applies the flags the user set.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	case len(args) > 0:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	default:
		cfg = config.DefaultConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("periods") {
		cfg.Periods = periods
	}
	if flags.Changed("particles") {
		cfg.Beam.Particles = particles
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if flags.Changed("name") {
		cfg.Name = name
	}
	if flags.Changed("slice-diagnostics") {
		cfg.SliceDiagnostics = sliceDiag
	}
	if cfg.OutputDir != "" && !flags.Changed("data") {
		dataDir = cfg.OutputDir
	}
	return cfg, cfg.Validate()
}

func runTracking(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	run, err := st.Create(cfg.Name)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(run.Sink, slog.Default().With("component", "tracker", "run", run.ID)); err != nil {
		return err
	}

	fmt.Printf("tracking %s: %d particles, %d periods...\n", cfg.Name, cfg.Beam.Particles, cfg.Periods)
	start := time.Now()
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	metrics := experiment.Metrics(result)
	if err := run.Save(cfg, result, metrics); err != nil {
		return err
	}

	final := result.Final()
	row := func(label, value string) {
		fmt.Println(labelStyle.Render(label) + valueStyle.Render(value))
	}
	fmt.Println(headStyle.Render("\n" + run.ID))
	row("elapsed", elapsed.Round(time.Millisecond).String())
	row("steps", fmt.Sprint(result.Steps))
	row("s", fmt.Sprintf("%.6g m", final.S))
	row("gamma", fmt.Sprintf("%.8g", final.Gamma))
	row("particles", fmt.Sprintf("%d (%d lost)", final.N, result.Lost))
	row("eps x/y/t", fmt.Sprintf("%.4e  %.4e  %.4e", final.X.Emittance, final.Y.Emittance, final.T.Emittance))
	row("beta x/y", fmt.Sprintf("%.4g  %.4g m", final.X.Beta, final.Y.Beta))
	row("transmission", fmt.Sprintf("%.4f", metrics["transmission"]))
	row("eps growth", fmt.Sprintf("%.4f  %.4f", metrics["emittance_growth_x"], metrics["emittance_growth_y"]))
	for _, k := range []string{"tune_x", "tune_y"} {
		if v, ok := metrics[k]; ok {
			row(k, fmt.Sprintf("%.5f", v))
		}
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	m, err := startLive(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	return viz.Run(m)
}

// startLive sets up cfg and returns a view tracking it. Logging is
// discarded while the view owns the terminal.
func startLive(ctx context.Context, cfg *config.Config) (viz.Model, error) {
	exp := experiment.New(cfg)
	if err := exp.Setup(nil, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		return viz.Model{}, err
	}
	simCfg := sim.Config{Periods: cfg.Periods, SliceDiagnostics: cfg.SliceDiagnostics}
	return viz.Start(ctx, exp.Tracker(), exp.Beam(), simCfg, cfg.Name), nil
}

func launchPreset(ctx context.Context) viz.Launcher {
	return func(name string, periods, particles int) (viz.Model, error) {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return viz.Model{}, fmt.Errorf("unknown preset: %s", name)
		}
		cfg.Periods = periods
		cfg.Beam.Particles = particles
		if err := cfg.Validate(); err != nil {
			return viz.Model{}, err
		}
		return startLive(ctx, cfg)
	}
}

func listPresets(cmd *cobra.Command, args []string) error {
	reg := lattice.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSPECIES\tENERGY\tELEMENTS\tLENGTH\tPERIODS\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		els, err := reg.Build(cfg.Lattice, nil)
		if err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
		fmt.Fprintf(w, "%s\t%s\t%g MeV\t%d\t%.4g m\t%d\t%s\n",
			name, cfg.Beam.Species, cfg.Beam.KineticMeV, len(els), lattice.Length(els), cfg.Periods, presetInfo[name])
	}
	return w.Flush()
}
