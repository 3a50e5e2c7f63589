package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/san-kum/collapse/internal/api"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd() *cobra.Command {
	def := api.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the simulation HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := api.Config{
				Addr:           viper.GetString("serve.addr"),
				Timeout:        viper.GetDuration("serve.timeout"),
				MaxWork:        viper.GetInt("serve.max-work"),
				StreamEvery:    viper.GetInt("serve.every"),
				OriginPatterns: viper.GetStringSlice("serve.origins"),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return api.New(cfg, newLogger("api")).ListenAndServe(ctx)
		},
	}

	cmd.Flags().String("addr", def.Addr, "listen address")
	cmd.Flags().Duration("timeout", def.Timeout, "per-run timeout")
	cmd.Flags().Int("max-work", def.MaxWork, "maximum steps*N per run")
	cmd.Flags().Int("every", def.StreamEvery, "default stream snapshot interval")
	cmd.Flags().StringSlice("origins", nil, "allowed websocket origin patterns")
	mustBind("serve.addr", cmd.Flags().Lookup("addr"))
	mustBind("serve.timeout", cmd.Flags().Lookup("timeout"))
	mustBind("serve.max-work", cmd.Flags().Lookup("max-work"))
	mustBind("serve.every", cmd.Flags().Lookup("every"))
	mustBind("serve.origins", cmd.Flags().Lookup("origins"))
	return cmd
}
