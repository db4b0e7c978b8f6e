// Package index defines the contract for the similarity-search service the
// RAG pipeline runs against. Backends own embedding and nearest-neighbor
// search; callers hand over plain text and get ranked results back.
package index

import "context"

// Document is one indexable unit: an article body plus flattened metadata.
// Metadata values must be plain strings because backend filter languages
// only support predicates over primitive values.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Result is a retrieved document with its similarity distance.
// Lower distance means a closer semantic match.
type Result struct {
	ID       string
	Content  string
	Metadata map[string]string
	Distance float64
}

// Index is the client handle for a similarity-search backend.
//
// Upsert is keyed by Document.ID: re-indexing an unchanged document
// overwrites rather than duplicates. DeleteCollection is destructive and
// irreversible; callers must request it explicitly.
type Index interface {
	Upsert(ctx context.Context, docs []Document) error
	Query(ctx context.Context, text string, n int, filter *Filter) ([]Result, error)
	Count(ctx context.Context) (int, error)
	DeleteCollection(ctx context.Context) error
	Close() error
}
