package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/beamsim/internal/optim"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [preset]",
		Short: "scan lattice parameters for the smallest metric",
		Long: `Scan tracks the lattice at every combination of the given parameter
values and reports the point with the smallest metric.

Parameters are given as index:key=v1,v2,... where index is the lattice
entry and key its file key, for example --param 2:k=0.8,1.0,1.2.`,
		Args: cobra.MaximumNArgs(1),
		RunE: scanLattice,
	}
	trackingFlags(cmd)
	cmd.Flags().StringArray("param", nil, "parameter to scan (index:key=v1,v2,...)")
	cmd.Flags().String("metric", "max_beta_x", "metric to minimize")
	cmd.Flags().Int("workers", runtime.NumCPU(), "experiments run at once")
	return cmd
}

// parseParam reads index:key=v1,v2,...
func parseParam(s string) (optim.Param, error) {
	idx, rest, ok := strings.Cut(s, ":")
	if !ok {
		return optim.Param{}, fmt.Errorf("parameter %q: want index:key=values", s)
	}
	key, list, ok := strings.Cut(rest, "=")
	if !ok || key == "" || list == "" {
		return optim.Param{}, fmt.Errorf("parameter %q: want index:key=values", s)
	}
	el, err := strconv.Atoi(idx)
	if err != nil {
		return optim.Param{}, fmt.Errorf("parameter %q: bad index: %w", s, err)
	}

	p := optim.Param{Element: el, Key: key}
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return optim.Param{}, fmt.Errorf("parameter %q: %w", s, err)
		}
		p.Values = append(p.Values, v)
	}
	return p, nil
}

func scanLattice(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	specs, _ := cmd.Flags().GetStringArray("param")
	metric, _ := cmd.Flags().GetString("metric")
	workers, _ := cmd.Flags().GetInt("workers")

	params := make([]optim.Param, 0, len(specs))
	for _, s := range specs {
		p, err := parseParam(s)
		if err != nil {
			return err
		}
		params = append(params, p)
	}

	g := optim.NewGridSearch(workers, params...)
	fmt.Printf("scanning %s: %d points\n\n", cfg.Name, len(g.Points()))
	best, points, err := g.Search(cmd.Context(), cfg, metric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, p := range params {
		fmt.Fprintf(w, "%s\t", p)
	}
	fmt.Fprintln(w, strings.ToUpper(metric))
	for _, pt := range points {
		for _, v := range pt.Values {
			fmt.Fprintf(w, "%g\t", v)
		}
		if pt.Err != nil {
			fmt.Fprintf(w, "error: %v\n", pt.Err)
			continue
		}
		fmt.Fprintf(w, "%.6g\n", pt.Metrics[metric])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.6g at %v\n", metric, best.Metrics[metric], best.Values)
	return nil
}
