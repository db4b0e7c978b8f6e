package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"wikirag/internal/app"
)

var (
	flagAskN        int
	flagTemperature float32
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question using retrieved articles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("temperature") {
			cfg.Temperature = flagTemperature
		}
		n := flagAskN
		if n == 0 {
			n = cfg.NResults
		}

		a, err := app.New(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Println("Generating answer...")
		answer, err := a.Engine.GenerateAnswer(cmd.Context(), args[0], n, cfg.Temperature)
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Println(answer)
		return nil
	},
}

func init() {
	askCmd.Flags().IntVarP(&flagAskN, "n-results", "n", 0, "number of articles to ground the answer in (default from config)")
	askCmd.Flags().Float32Var(&flagTemperature, "temperature", 0.7, "generation temperature in [0, 1]")
	rootCmd.AddCommand(askCmd)
}
