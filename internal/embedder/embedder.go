// Package embedder provides clients for external embedding services.
// The pipeline never computes embeddings itself; it only forwards text.
package embedder

import "context"

// Embedder converts batches of text into embedding vectors.
// Implementations return one vector per input, in input order.
type Embedder interface {
	// Embed embeds a batch of texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedSingle embeds one text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
	// Model returns the configured model name.
	Model() string
}
