package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/san-kum/collapse/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var dataDir string

// main registers the commands and exits with status 1 on failure.
func main() {
	rootCmd := &cobra.Command{
		Use:           "collapse",
		Short:         "1D Lagrangian core collapse to a black hole",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".collapse", "data directory")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	mustBind("data", rootCmd.PersistentFlags().Lookup("data"))
	mustBind("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	mustBind("log-format", rootCmd.PersistentFlags().Lookup("log-format"))

	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(
		newRunCmd(),
		newWatchCmd(),
		newListCmd(),
		newPlotCmd(),
		newExportCmd(),
		newExportCSVCmd(),
		newServeCmd(),
		newPresetsCmd(),
		newHorizonCmd(),
		newSweepCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// initConfig lets COLLAPSE_* environment variables override flag defaults,
// e.g. COLLAPSE_LOG_LEVEL or COLLAPSE_SERVE_ADDR.
func initConfig() {
	viper.SetEnvPrefix("COLLAPSE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	dataDir = viper.GetString("data")
}

func newLogger(component string) *slog.Logger {
	return logging.New(logging.Config{
		Level:     viper.GetString("log-level"),
		Format:    viper.GetString("log-format"),
		Output:    os.Stderr,
		Component: component,
	})
}

// mustBind binds a flag to a viper key. A missing flag is a programming
// error, so it panics.
func mustBind(key string, f *pflag.Flag) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("bind %s: %v", key, err))
	}
}
