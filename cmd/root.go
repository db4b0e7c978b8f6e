package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"wikirag/internal/config"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "wikirag",
	Short: "Question answering over a local Wikipedia article corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultPath, "config file path")
}

// loadConfig reads the config file named by --config plus env overrides.
func loadConfig() (*config.Config, error) {
	return config.Load(flagConfig)
}
