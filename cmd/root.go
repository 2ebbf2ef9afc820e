package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arixlabs/treemorph/internal/config"
)

var (
	configPath string
	verbose    bool
	logger     = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "treemorph",
	Short: "A particle tree that assembles and scatters on command",
	Long: `treemorph renders a cloud of particles, ornaments and photos that morphs
between a scattered sphere and a cone shaped tree. The morph is driven by
hand gestures, the keyboard or the HTTP API.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "settings file (default ~/.config/treemorph/settings.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func loadSettings() (*config.Settings, error) {
	return config.LoadSettings(configPath, logger)
}
