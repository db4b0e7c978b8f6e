// Package rag wires retrieval, context assembly, and answer generation into
// the question-answering pipeline.
package rag

import (
	"context"
	"errors"
	"fmt"

	"wikirag/internal/index"
)

// DefaultResults is the number of passages retrieved when the caller does
// not specify one.
const DefaultResults = 3

// ErrEmptyCorpus reports a search against an index with no documents at all.
// It is distinct from a query that simply matches nothing, which returns an
// empty result set without error.
var ErrEmptyCorpus = errors.New("corpus is empty: load documents first")

// Retriever shapes similarity queries and normalizes their results. The
// index owns embedding and ranking; the retriever only validates the
// request and preserves the index's ascending-distance order.
type Retriever struct {
	idx index.Index
}

// NewRetriever creates a Retriever over the given index client.
func NewRetriever(idx index.Index) *Retriever {
	return &Retriever{idx: idx}
}

// Search returns the n most similar documents for the query. n == 0 means
// "use the default"; negative values are rejected.
func (r *Retriever) Search(ctx context.Context, query string, n int, filter *index.Filter) ([]index.Result, error) {
	if n == 0 {
		n = DefaultResults
	}
	if n < 1 {
		return nil, fmt.Errorf("n_results must be at least 1, got %d", n)
	}

	count, err := r.idx.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	if count == 0 {
		return nil, ErrEmptyCorpus
	}

	results, err := r.idx.Query(ctx, query, n, filter)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	return results, nil
}

// Count returns the number of documents in the index.
func (r *Retriever) Count(ctx context.Context) (int, error) {
	return r.idx.Count(ctx)
}
