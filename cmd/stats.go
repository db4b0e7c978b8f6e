package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"wikirag/internal/app"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Index.Count(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Collection: %s\n", cfg.Index.Collection)
		fmt.Printf("Backend:    %s\n", cfg.Index.Backend)
		fmt.Printf("Documents:  %d\n", count)
		if count == 0 {
			fmt.Println("\nThe index is empty. Run 'wikirag load' to ingest articles.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
