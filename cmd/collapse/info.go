package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/san-kum/collapse/internal/config"
	"github.com/san-kum/collapse/internal/horizon"
	"github.com/spf13/cobra"
)

func newPresetsCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print or save one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Println("presets:")
				for _, name := range config.ListPresets() {
					p := config.GetPreset(name).Params()
					fmt.Printf("  %-12s M=%gMsun R=%gcm N=%d t=%gs\n", name, p.MassMsun, p.RadiusCm, p.Shells, p.TMax)
				}
				return nil
			}

			cfg := config.GetPreset(args[0])
			if cfg == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
			}
			if output != "" {
				if err := config.Save(output, cfg); err != nil {
					return err
				}
				fmt.Printf("saved %s to %s\n", args[0], output)
				return nil
			}
			return cfg.Encode(os.Stdout)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the preset to a yaml file")
	return cmd
}

func newHorizonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "horizon [mass_solar]",
		Short: "closed-form black hole properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mass, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid mass %q: %w", args[0], err)
			}
			props, err := horizon.Calculate(mass)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(props)
		},
	}
}
