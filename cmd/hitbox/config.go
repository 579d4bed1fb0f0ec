package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/hitbox/internal/config"
)

var flagDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective engine configuration",
	Long: `Print the engine configuration after applying the search order:
--config, ~/.hitbox/configs/engine.yaml, ./configs/engine.yaml, embedded default.

Examples:
  hitbox config
  hitbox config --defaults > configs/engine.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagDefaults, "defaults", false, "Print the embedded default file instead")
}

func runConfig(_ *cobra.Command, _ []string) error {
	if flagDefaults {
		fmt.Print(string(config.DefaultYAML()))
		return nil
	}

	data, err := config.Marshal(engineCfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
