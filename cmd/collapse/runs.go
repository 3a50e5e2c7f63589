package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/san-kum/collapse/internal/storage"
	"github.com/san-kum/collapse/internal/viz"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			fmt.Fprintln(w, "ID\tTIME\tMASS\tN\tSTEPS\tHORIZON\tABSORBED")
			for _, run := range runs {
				horizon := "-"
				if len(run.Events) > 0 {
					horizon = fmt.Sprintf("%.4fs", run.Events[0].Time)
				}
				fmt.Fprintf(w, "%s\t%s\t%.1f\t%d\t%d\t%s\t%.3f\n",
					run.ID,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Params.MassMsun,
					run.Params.Shells,
					run.Steps,
					horizon,
					run.Metrics["absorbed_fraction"],
				)
			}
			return w.Flush()
		},
	}
}

func newPlotCmd() *cobra.Command {
	var opts viz.PlotOptions
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			series, err := st.LoadSeries(args[0])
			if err != nil {
				return err
			}
			if series.Len() == 0 {
				return fmt.Errorf("no data")
			}
			series.Events = meta.Events
			series.Metrics = meta.Metrics

			fmt.Println(viz.Summary(meta.Name, meta.Params, series))
			fmt.Println()
			fmt.Print(viz.Plot(series, opts))
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Height, "height", viz.DefaultPlotOptions().Height, "chart height")
	cmd.Flags().IntVar(&opts.Width, "width", viz.DefaultPlotOptions().Width, "chart width")
	return cmd
}

func newExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			series, err := st.LoadSeries(args[0])
			if err != nil {
				return err
			}
			series.Events = meta.Events
			series.Metrics = meta.Metrics

			return writeOutput(output, func(w io.Writer) error {
				return storage.ExportJSON(w, meta.ID, meta.Params, series)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newExportCSVCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a stored run series as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			series, err := st.LoadSeries(args[0])
			if err != nil {
				return err
			}
			return writeOutput(output, func(w io.Writer) error {
				return storage.WriteCSV(w, series)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported to %s\n", path)
	return nil
}
