// Package qdrant implements the index contract against a remote Qdrant
// instance over its REST API. Embeddings come from an external embedding
// service; Qdrant only stores and searches them.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"wikirag/internal/embedder"
	"wikirag/internal/index"
)

// Store is a minimal REST client to Qdrant. It assumes cosine distance and
// creates the collection on first upsert.
type Store struct {
	url        string
	apiKey     string
	collection string
	emb        embedder.Embedder
	client     *http.Client
	ready      bool
}

// Config contains connection details for a Qdrant instance.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// New creates a Qdrant-backed index client.
func New(cfg Config, emb embedder.Embedder) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		emb:        emb,
		client:     &http.Client{Timeout: timeout},
	}
}

// ensureCollection creates the collection if missing. Qdrant returns 200 for
// an existing collection with the same schema.
func (s *Store) ensureCollection(ctx context.Context, dimension int) error {
	if s.ready {
		return nil
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := s.doJSON(ctx, http.MethodPut,
		fmt.Sprintf("%s/collections/%s", s.url, s.collection), body, nil); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	s.ready = true
	return nil
}

// pointID derives a deterministic UUID from the document identifier.
// Qdrant point IDs must be integers or UUIDs; deriving them from the
// document ID keeps upserts idempotent. The original ID travels in the
// payload as doc_id.
func pointID(docID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(docID)).String()
}

// Upsert embeds the documents and writes them as points keyed by a UUID
// derived from Document.ID, so re-loading overwrites rather than duplicates.
func (s *Store) Upsert(ctx context.Context, docs []index.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	embeddings, err := s.emb.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if err := s.ensureCollection(ctx, len(embeddings[0])); err != nil {
		return err
	}

	points := make([]map[string]any, len(docs))
	for i, d := range docs {
		payload := map[string]any{"doc_id": d.ID, "content": d.Content}
		for k, v := range d.Metadata {
			payload[k] = v
		}
		points[i] = map[string]any{
			"id":      pointID(d.ID),
			"vector":  embeddings[i],
			"payload": payload,
		}
	}
	body := map[string]any{"points": points}
	return s.doJSON(ctx, http.MethodPut,
		fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body, nil)
}

// Query embeds the text and returns the n closest documents. Qdrant reports
// a cosine similarity score (higher = closer); it is mapped to the distance
// convention (lower = closer) as 1 - score.
func (s *Store) Query(ctx context.Context, text string, n int, filter *index.Filter) ([]index.Result, error) {
	vec, err := s.emb.EmbedSingle(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	req := map[string]any{
		"vector":       vec,
		"limit":        n,
		"with_payload": true,
	}
	if f := compileFilter(filter); f != nil {
		req["filter"] = f
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}

	results := make([]index.Result, 0, len(resp.Result))
	for _, r := range resp.Result {
		res := index.Result{
			Distance: 1 - r.Score,
			Metadata: make(map[string]string),
		}
		for k, v := range r.Payload {
			str, ok := v.(string)
			if !ok {
				continue
			}
			switch k {
			case "doc_id":
				res.ID = str
			case "content":
				res.Content = str
			default:
				res.Metadata[k] = str
			}
		}
		results = append(results, res)
	}
	return results, nil
}

// Count returns the exact number of points in the collection. A missing
// collection counts as zero documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	err := s.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("%s/collections/%s/points/count", s.url, s.collection),
		map[string]any{"exact": true}, &resp)
	if err != nil {
		var statusErr *statusError
		if errors.As(err, &statusErr) && statusErr.code == http.StatusNotFound {
			return 0, nil
		}
		return 0, err
	}
	return resp.Result.Count, nil
}

// DeleteCollection drops the collection. This is irreversible.
func (s *Store) DeleteCollection(ctx context.Context) error {
	err := s.doJSON(ctx, http.MethodDelete,
		fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil, nil)
	if err != nil {
		var statusErr *statusError
		if errors.As(err, &statusErr) && statusErr.code == http.StatusNotFound {
			return nil
		}
		return err
	}
	s.ready = false
	return nil
}

// Close releases nothing; the HTTP client has no persistent resources.
func (s *Store) Close() error { return nil }

// compileFilter translates the predicate algebra into Qdrant's filter JSON.
// Equality maps to a value match, containment to a full-text match, and AND
// to a "must" clause list.
func compileFilter(f *index.Filter) map[string]any {
	leaves := f.Leaves()
	if len(leaves) == 0 {
		return nil
	}
	must := make([]map[string]any, 0, len(leaves))
	for _, leaf := range leaves {
		var match map[string]any
		switch leaf.Op {
		case index.OpEq:
			match = map[string]any{"value": leaf.Value}
		case index.OpContains:
			match = map[string]any{"text": leaf.Value}
		default:
			continue
		}
		must = append(must, map[string]any{"key": leaf.Field, "match": match})
	}
	return map[string]any{"must": must}
}

type statusError struct {
	code   int
	status string
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant returned %s: %s", e.status, e.body)
}

func (s *Store) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &statusError{code: resp.StatusCode, status: resp.Status, body: string(respBody)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
