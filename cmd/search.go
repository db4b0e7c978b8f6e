package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"wikirag/internal/app"
	"wikirag/internal/index"
	"wikirag/internal/rag"
)

var (
	flagN        int
	flagCategory string
	flagLanguage string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find articles similar to a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		n := flagN
		if n == 0 {
			n = cfg.NResults
		}

		a, err := app.New(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		var filters []*index.Filter
		if flagCategory != "" {
			filters = append(filters, index.Contains("categories", flagCategory))
		}
		if flagLanguage != "" {
			filters = append(filters, index.Eq("language", flagLanguage))
		}
		var filter *index.Filter
		if len(filters) > 0 {
			filter = index.And(filters...)
		}

		results, err := a.Engine.Search(cmd.Context(), args[0], n, filter)
		if err != nil {
			if errors.Is(err, rag.ErrEmptyCorpus) {
				fmt.Println("The index is empty. Run 'wikirag load' first.")
				return nil
			}
			return err
		}
		if len(results) == 0 {
			fmt.Println("No matching articles found.")
			return nil
		}

		fmt.Printf("%d matching articles:\n\n", len(results))
		for i, r := range results {
			fmt.Printf("--- [%d] %s ---\n", i+1, orDash(r.Metadata["title"]))
			fmt.Printf("Similarity: %.4f\n", 1-r.Distance)
			fmt.Printf("Page ID:    %s\n", orDash(r.Metadata["page_id"]))
			fmt.Printf("URL:        %s\n", orDash(r.Metadata["url"]))
			if cats := r.Metadata["categories"]; cats != "" {
				fmt.Printf("Categories: %s\n", cats)
			}
			if summary := r.Metadata["summary"]; summary != "" {
				fmt.Printf("Summary:    %s\n", clip(summary, 150))
			}
			fmt.Println()
		}
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func init() {
	searchCmd.Flags().IntVarP(&flagN, "n-results", "n", 0, "number of results (default from config)")
	searchCmd.Flags().StringVar(&flagCategory, "category", "", "only articles whose categories contain this text")
	searchCmd.Flags().StringVar(&flagLanguage, "language", "", "only articles in this language")
	rootCmd.AddCommand(searchCmd)
}
