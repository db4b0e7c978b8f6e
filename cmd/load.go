package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wikirag/internal/app"
	"wikirag/internal/loader"
)

var (
	flagDataDir   string
	flagReset     bool
	flagRecursive bool
	flagBatchSize int
	flagYes       bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Parse article exports and index them for search",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("data-dir") {
			cfg.DataDir = flagDataDir
		}
		if cmd.Flags().Changed("recursive") {
			cfg.Recursive = flagRecursive
		}
		if cmd.Flags().Changed("batch-size") {
			cfg.BatchSize = flagBatchSize
		}

		// Reset wipes the whole index; make the user say so twice.
		if flagReset && !flagYes {
			fmt.Print("This deletes the entire index before loading. Continue? (y/N): ")
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		a, err := app.New(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Printf("Loading %s...\n", cfg.DataDir)
		start := time.Now()

		report, err := a.Loader.Load(cmd.Context(), cfg.DataDir, loader.Options{
			Reset:     flagReset,
			Recursive: cfg.Recursive,
			BatchSize: cfg.BatchSize,
		})
		if report != nil {
			fmt.Printf("\nDone in %s\n", time.Since(start).Round(time.Millisecond))
			fmt.Printf("  Files:   %d found, %d loaded, %d skipped\n",
				report.Files, report.Loaded, report.Skipped)
			for _, fe := range report.Errors {
				fmt.Fprintf(os.Stderr, "  skipped %s: %v\n", fe.Path, fe.Err)
			}
		}
		if err != nil {
			return err
		}

		count, err := a.Index.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("  Indexed: %d documents total\n", count)
		return nil
	},
}

func init() {
	loadCmd.Flags().StringVar(&flagDataDir, "data-dir", "./data/wikipedia", "directory containing article exports")
	loadCmd.Flags().BoolVar(&flagReset, "reset", false, "delete the entire index before loading")
	loadCmd.Flags().BoolVar(&flagRecursive, "recursive", true, "descend into subdirectories")
	loadCmd.Flags().IntVar(&flagBatchSize, "batch-size", loader.DefaultBatchSize, "records per upsert batch")
	loadCmd.Flags().BoolVar(&flagYes, "yes", false, "skip the reset confirmation prompt")
	rootCmd.AddCommand(loadCmd)
}
