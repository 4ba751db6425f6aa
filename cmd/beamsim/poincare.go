package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/san-kum/beamsim/internal/analysis"
	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/config"
	"github.com/san-kum/beamsim/internal/experiment"
)

func newPoincareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poincare [preset]",
		Short: "turn-by-turn phase space of a few particles",
		Args:  cobra.MaximumNArgs(1),
		RunE:  poincare,
	}
	trackingFlags(cmd)
	cmd.Flags().Int("follow", 8, "number of particles to follow")
	cmd.Flags().String("plane", "x", "phase-space plane (x, y or t)")
	return cmd
}

func poincare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("particles") {
		cfg.Beam.Particles = 64
	}
	if !cmd.Flags().Changed("periods") {
		cfg.Periods = max(cfg.Periods, 200)
	}

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

	follow, _ := cmd.Flags().GetInt("follow")
	ids := make([]uint64, 0, follow)
	for i := 1; i <= min(follow, cfg.Beam.Particles); i++ {
		ids = append(ids, uint64(i))
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(nil, slog.Default().With("component", "tracker")); err != nil {
		return err
	}
	sec := analysis.NewSection(len(exp.Tracker().Lattice), q, p, ids...)
	exp.Tracker().AddObserver(sec)

	fmt.Printf("tracking %d particles of %s for %d periods...\n\n", len(ids), cfg.Name, cfg.Periods)
	if _, err := exp.Run(cmd.Context()); err != nil {
		return err
	}
	fmt.Println(sec.ASCII(72, 24))
	fmt.Printf("%d of %d particles crossed the section\n", len(sec.IDs()), len(ids))
	return nil
}
