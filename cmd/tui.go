package cmd

import (
	"context"

	"wikirag/internal/app"
	"wikirag/internal/tui"
)

func runTUI(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	return tui.Run(tui.Config{
		Engine:      a.Engine,
		Collection:  cfg.Index.Collection,
		NResults:    cfg.NResults,
		Temperature: cfg.Temperature,
	})
}
