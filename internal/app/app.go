// Package app assembles the pipeline from configuration: index backend,
// embedding service, completion service, loader, and answer engine. Clients
// are constructed once at startup and released through Close.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"wikirag/internal/config"
	"wikirag/internal/embedder"
	"wikirag/internal/index"
	"wikirag/internal/index/local"
	"wikirag/internal/index/qdrant"
	"wikirag/internal/llm"
	"wikirag/internal/loader"
	"wikirag/internal/rag"
)

// App holds the constructed pipeline components.
type App struct {
	Config *config.Config
	Index  index.Index
	Engine *rag.Engine
	Loader *loader.Loader
}

// New validates the configuration and constructs every component. The
// returned App owns the index handle; callers must Close it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	emb, err := buildEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}

	idx, err := buildIndex(cfg, emb)
	if err != nil {
		return nil, err
	}

	gen, err := buildGenerator(ctx, cfg)
	if err != nil {
		idx.Close()
		return nil, err
	}

	retriever := rag.NewRetriever(idx)
	composer := rag.Composer{MaxChars: cfg.MaxContextChars}

	return &App{
		Config: cfg,
		Index:  idx,
		Engine: rag.NewEngine(retriever, composer, gen),
		Loader: loader.New(idx, logger),
	}, nil
}

// Close releases the index handle.
func (a *App) Close() error {
	return a.Index.Close()
}

func buildEmbedder(ctx context.Context, cfg *config.Config) (embedder.Embedder, error) {
	switch cfg.Embedder.Backend {
	case config.ServiceGemini:
		return embedder.NewGemini(ctx, cfg.GeminiAPIKey, cfg.Embedder.Model)
	default:
		return embedder.NewOllama(cfg.Embedder.OllamaURL, cfg.Embedder.Model), nil
	}
}

func buildIndex(cfg *config.Config, emb embedder.Embedder) (index.Index, error) {
	switch cfg.Index.Backend {
	case config.IndexQdrant:
		return qdrant.New(qdrant.Config{
			URL:        cfg.Index.QdrantURL,
			APIKey:     cfg.Index.QdrantAPIKey,
			Collection: cfg.Index.Collection,
		}, emb), nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Index.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
		return local.Open(cfg.Index.Path, emb)
	}
}

func buildGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	switch cfg.LLM.Backend {
	case config.ServiceGemini:
		return llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.LLM.Model)
	default:
		return llm.NewOllama(cfg.LLM.OllamaURL, cfg.LLM.Model), nil
	}
}
