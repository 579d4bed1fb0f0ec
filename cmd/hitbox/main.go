// hitbox is a command-line host for the AABB collision registry.
//
// Usage:
//
//	hitbox check <scene.yaml>           - List colliding pairs in a scene
//	hitbox snapshot save <scene.yaml>   - Store a scene and its collisions
//	hitbox snapshot list                - List stored snapshots
//	hitbox snapshot show <id>           - Show a stored snapshot
//	hitbox snapshot delete <id>         - Delete a stored snapshot
//	hitbox config                       - Print the effective engine config
//
// Global flags:
//
//	--config <path>     - Engine config YAML (default: search ~/.hitbox/configs, ./configs)
//	--db <path>         - Snapshot database path (default: ~/.hitbox/snapshots.db)
//	--log-level <level> - Override the configured log level
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/hitbox/internal/config"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string

	// Set by loadConfig before any subcommand runs
	engineCfg config.Config
	logger    *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hitbox",
	Short: "Hitbox - axis-aligned collision checks for 2D scenes",
	Long: `Hitbox loads fixed and dynamic rectangles into a collision registry
and reports which of them overlap.

Available commands:
  check     - Show colliding pairs in a scene file
  snapshot  - Save, list, show and delete stored registry snapshots
  config    - Print the effective engine configuration

Examples:
  hitbox check scenes/ground.yaml
  hitbox check scenes/ground.yaml --pairs all
  hitbox check scenes/ground.yaml --with dynamic#0
  hitbox snapshot save scenes/ground.yaml --name before-jump
  hitbox snapshot list`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to engine config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.hitbox/snapshots.db", "Path to snapshot database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}

	engineCfg = cfg
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "hitbox",
		Level:           level,
	})
	return nil
}
