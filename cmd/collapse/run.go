package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/san-kum/collapse/internal/collapse"
	"github.com/san-kum/collapse/internal/metrics"
	"github.com/san-kum/collapse/internal/storage"
	"github.com/san-kum/collapse/internal/viz"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		noSave bool
		plot   bool
	)
	cmd := &cobra.Command{
		Use:   "run [name]",
		Short: "run a collapse and store the series",
		Args:  cobra.MaximumNArgs(1),
	}
	opts := addParamFlags(cmd.Flags())
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	cmd.Flags().BoolVar(&plot, "plot", false, "plot the series after the run")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		name := "collapse"
		if len(args) > 0 {
			name = args[0]
		}
		p, err := opts.resolve(cmd)
		if err != nil {
			return err
		}
		log := newLogger("run")

		sim, err := collapse.New(p)
		if err != nil {
			return err
		}
		for _, m := range metrics.Default(sim.InitialMass()) {
			sim.AddMetric(m)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		log.Info("running", "name", name, "shells", p.Shells, "steps", p.Steps())
		start := time.Now()
		series, err := sim.Run(ctx)
		elapsed := time.Since(start)
		if err != nil && ctx.Err() == nil {
			return err
		}
		if err != nil {
			log.Warn("interrupted", "step", sim.StepIndex(), "of", sim.Steps())
		}
		for _, ev := range series.Events {
			log.Debug("horizon trapped shells", "step", ev.Step, "t", ev.Time, "index", ev.Index, "mass", ev.Mass)
		}
		log.Info("completed", "elapsed", elapsed, "steps", series.Len())

		fmt.Println(viz.Summary(name, p, series))
		if plot {
			fmt.Println(viz.Plot(series, viz.DefaultPlotOptions()))
		}

		if noSave {
			return nil
		}
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(name, p, elapsed, series)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
		return nil
	}
	return cmd
}

func newWatchCmd() *cobra.Command {
	var (
		stepsPerFrame int
		fps           int
		save          bool
	)
	cmd := &cobra.Command{
		Use:   "watch [name]",
		Short: "step a collapse with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
	}
	opts := addParamFlags(cmd.Flags())
	cmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", viz.DefaultLiveOptions().StepsPerFrame, "steps per frame")
	cmd.Flags().IntVar(&fps, "fps", viz.DefaultLiveOptions().FPS, "frame rate")
	cmd.Flags().BoolVar(&save, "save", false, "store the recorded series on exit")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		name := "collapse"
		if len(args) > 0 {
			name = args[0]
		}
		p, err := opts.resolve(cmd)
		if err != nil {
			return err
		}

		sim, err := collapse.New(p)
		if err != nil {
			return err
		}
		for _, m := range metrics.Default(sim.InitialMass()) {
			sim.AddMetric(m)
		}

		start := time.Now()
		series, err := viz.RunLive(sim, name, viz.LiveOptions{StepsPerFrame: stepsPerFrame, FPS: fps})
		if err != nil {
			return err
		}
		if !save || series.Len() == 0 {
			return nil
		}

		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(name, p, time.Since(start), series)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
		return nil
	}
	return cmd
}
