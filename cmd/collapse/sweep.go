package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/san-kum/collapse/internal/sweep"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	var (
		axes     []string
		workers  int
		best     string
		minimize bool
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:     "sweep",
		Short:   "run a collapse for every point of a parameter grid",
		Example: "  collapse sweep --preset end-to-end --axis mass=10,20,30 --axis alpha=0,0.5",
	}
	opts := addParamFlags(cmd.Flags())
	cmd.Flags().StringArrayVar(&axes, "axis", nil, "grid axis as name=v1,v2,... (repeatable)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (default GOMAXPROCS)")
	cmd.Flags().StringVar(&best, "best", "", "report the point with the best value of this metric")
	cmd.Flags().BoolVar(&minimize, "minimize", false, "treat smaller metric values as better")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(axes) == 0 {
			return fmt.Errorf("at least one --axis is required")
		}
		base, err := opts.resolve(cmd)
		if err != nil {
			return err
		}

		grid := make([]sweep.Axis, 0, len(axes))
		for _, s := range axes {
			a, err := sweep.ParseAxis(s)
			if err != nil {
				return err
			}
			grid = append(grid, a)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		log := newLogger("sweep")
		g := sweep.NewGrid(grid...)
		log.Info("sweeping", "points", len(g.Points()), "workers", workers)
		results, err := sweep.Runner{Base: base, Workers: workers}.Run(ctx, g)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "POINT\tHORIZON\tM_BH\tPEAK_MDOT\tERROR")
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(w, "%s\t-\t-\t-\t%v\n", r.Point, r.Err)
				continue
			}
			horizon := "-"
			if r.FormationTime >= 0 {
				horizon = fmt.Sprintf("%.4fs", r.FormationTime)
			}
			fmt.Fprintf(w, "%s\t%s\t%.4g\t%.4g\t\n", r.Point, horizon, r.FinalMassMsun, r.Metrics["peak_mdot"])
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if best != "" {
			b, ok := sweep.Best(results, best, minimize)
			if !ok {
				return fmt.Errorf("no successful run reports metric %q", best)
			}
			fmt.Printf("\nbest %s: %.6g at %s\n", best, b.Metrics[best], b.Point)
		}
		return nil
	}
	return cmd
}
