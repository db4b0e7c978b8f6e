// Package llm provides clients for external text-generation services.
package llm

import "context"

// Generator submits a prompt to a completion service and returns the raw
// answer text. One attempt per call; callers decide whether to retry.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
}
