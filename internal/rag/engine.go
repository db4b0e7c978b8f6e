package rag

import (
	"context"
	"errors"
	"fmt"

	"wikirag/internal/index"
	"wikirag/internal/llm"
)

// NoInformationMessage is returned verbatim when retrieval finds nothing to
// ground an answer in. It is a user-facing message, not an error.
const NoInformationMessage = "No relevant information is available in the corpus. Load documents first, then ask again."

// ErrGeneration reports a failure of the completion service. The pipeline
// makes a single attempt; there is no retry or backoff.
var ErrGeneration = errors.New("completion service error")

const promptTemplate = `# Question answering task

You are a helpful, knowledgeable assistant. Answer the user's question accurately and clearly, based on the reference material below.

## Question
%s

## Reference material (retrieved from the article corpus)
%s

## Guidelines
1. Ground the answer in the reference material.
2. Structure the explanation so it is easy to follow.
3. Give concrete examples where they help.
4. Do not fill gaps with guesses about things the reference material does not cover.
5. Explain technical terms where needed.

Now answer the question.
`

// Engine runs the full answer pipeline: retrieve, compose, generate.
type Engine struct {
	retriever *Retriever
	composer  Composer
	gen       llm.Generator
}

// NewEngine creates an Engine from explicitly constructed collaborators.
func NewEngine(retriever *Retriever, composer Composer, gen llm.Generator) *Engine {
	return &Engine{retriever: retriever, composer: composer, gen: gen}
}

// GenerateAnswer answers the query using retrieved context. n == 0 means
// the default result count. An empty or missing corpus yields
// NoInformationMessage without touching the completion service; that is
// graceful degradation, not an error.
func (e *Engine) GenerateAnswer(ctx context.Context, query string, n int, temperature float32) (string, error) {
	if temperature < 0 || temperature > 1 {
		return "", fmt.Errorf("temperature must be in [0, 1], got %g", temperature)
	}

	results, err := e.retriever.Search(ctx, query, n, nil)
	if err != nil {
		if errors.Is(err, ErrEmptyCorpus) {
			return NoInformationMessage, nil
		}
		return "", err
	}
	if len(results) == 0 {
		return NoInformationMessage, nil
	}

	prompt := fmt.Sprintf(promptTemplate, query, e.composer.Compose(results))

	answer, err := e.gen.Generate(ctx, prompt, temperature)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return answer, nil
}

// Search exposes raw retrieval for the CLI, TUI, and MCP surfaces.
func (e *Engine) Search(ctx context.Context, query string, n int, filter *index.Filter) ([]index.Result, error) {
	return e.retriever.Search(ctx, query, n, filter)
}

// Count returns the number of documents in the index.
func (e *Engine) Count(ctx context.Context) (int, error) {
	return e.retriever.Count(ctx)
}
