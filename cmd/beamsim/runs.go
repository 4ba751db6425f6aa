package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/config"
	"github.com/san-kum/beamsim/internal/diagnostics"
	"github.com/san-kum/beamsim/internal/distribution"
	"github.com/san-kum/beamsim/internal/experiment"
	"github.com/san-kum/beamsim/internal/export"
	"github.com/san-kum/beamsim/internal/storage"
	"github.com/san-kum/beamsim/internal/viz"
)

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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSPECIES\tENERGY\tPARTICLES\tPERIODS\tLOST")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g MeV\t%d\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Species,
			run.KineticMeV,
			run.Particles,
			run.Periods,
			run.Lost,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	fields, err := cmd.Flags().GetStringSlice("field")
	if err != nil {
		return err
	}
	svgBase, _ := cmd.Flags().GetString("svg")

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("lattice: %s, %d periods\n", meta.Name, meta.Periods)
	fmt.Printf("samples: %d\n\n", len(history))

	for _, field := range fields {
		data, err := storage.HistoryColumn(history, field)
		if err != nil {
			return fmt.Errorf("%w (available: %v)", err, storage.HistoryColumns())
		}
		fmt.Println(viz.Plot(data, field+" vs element", 80, 10))
		fmt.Println()

		if svgBase != "" {
			path := strings.TrimSuffix(svgBase, ".svg") + "_" + field + ".svg"
			if err := os.WriteFile(path, []byte(export.SeriesToSVG(data, 800, 300, "#00ccff")), 0644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n\n", path)
		}
	}
	return nil
}

func tuneRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	centroids, err := st.LoadCentroids(runID)
	if err != nil {
		return err
	}

	fmt.Printf("tune analysis: %s\n", meta.ID)
	fmt.Printf("periods: %d\n\n", len(centroids.X))

	for _, plane := range []struct {
		name string
		data []float64
	}{{"x", centroids.X}, {"y", centroids.Y}} {
		q, err := diagnostics.Tune(plane.data)
		if err != nil {
			return err
		}
		ps := diagnostics.PowerSpectrum(plane.data)
		fmt.Println(viz.Plot(ps, "power spectrum ("+plane.name+")", 80, 12))
		fmt.Printf("\ntune %s: %.5f\n\n", plane.name, q)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		return storage.WriteJSON(os.Stdout, data)
	}
	if err := storage.ExportJSON(out, data); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", args[0], out)
	return nil
}

func sampleBeam(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("particles") {
		cfg.Beam.Particles = min(cfg.Beam.Particles, 2000)
	}

	dist, err := distribution.New(cfg.Beam.Distribution, cfg.Beam.Moments)
	if err != nil {
		return err
	}
	ens := distribution.Generate(dist, experiment.Reference(cfg.Beam), cfg.Beam.Particles, cfg.Seed)
	r := diagnostics.Compute(ens)

	q, p := beam.IX, beam.IPx
	switch plane, _ := cmd.Flags().GetString("plane"); plane {
	case "x":
	case "y":
		q, p = beam.IY, beam.IPy
	case "t":
		q, p = beam.IT, beam.IPt
	default:
		return fmt.Errorf("%w: unknown plane %q", config.ErrInvalidConfig, plane)
	}

	fmt.Printf("%s: %d particles, seed %d, gamma %.6g\n\n", dist.Name(), r.N, cfg.Seed, r.Gamma)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLANE\tMEAN\tSIGMA\tSIGMA_P\tEMITTANCE\tALPHA\tBETA")
	for _, pl := range []struct {
		name string
		m    diagnostics.Plane
	}{{"x", r.X}, {"y", r.Y}, {"t", r.T}} {
		fmt.Fprintf(w, "%s\t%.3e\t%.4e\t%.4e\t%.4e\t%.4g\t%.4g\n",
			pl.name, pl.m.Mean, pl.m.Sigma, pl.m.SigmaP, pl.m.Emittance, pl.m.Alpha, pl.m.Beta)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(diagnostics.Portrait(ens.Particles, q, p, 72, 24))

	if path, _ := cmd.Flags().GetString("svg"); path != "" {
		if err := os.WriteFile(path, []byte(export.PortraitToSVG(ens.Particles, q, p, 80, 40, 4)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}
