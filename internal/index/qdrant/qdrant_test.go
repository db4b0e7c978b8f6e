package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikirag/internal/index"
)

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (fixedEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (fixedEmbedder) Model() string { return "fixed" }

func TestQueryMapsScoreToDistance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/wiki/points/search", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.EqualValues(t, 2, req["limit"])
		assert.NotContains(t, req, "filter")

		json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{"score": 0.9, "payload": map[string]any{
					"doc_id": "wiki_185375", "content": "body", "title": "機械学習",
				}},
				{"score": 0.4, "payload": map[string]any{
					"doc_id": "wiki_2", "content": "other",
				}},
			},
		})
	}))
	defer srv.Close()

	s := New(Config{URL: srv.URL, Collection: "wiki"}, fixedEmbedder{})

	results, err := s.Query(context.Background(), "query", 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "wiki_185375", results[0].ID)
	assert.Equal(t, "body", results[0].Content)
	assert.Equal(t, "機械学習", results[0].Metadata["title"])
	assert.InDelta(t, 0.1, results[0].Distance, 1e-9)
	assert.InDelta(t, 0.6, results[1].Distance, 1e-9)
}

func TestQuerySendsCompiledFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Filter struct {
				Must []struct {
					Key   string         `json:"key"`
					Match map[string]any `json:"match"`
				} `json:"must"`
			} `json:"filter"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		require.Len(t, req.Filter.Must, 2)
		assert.Equal(t, "language", req.Filter.Must[0].Key)
		assert.Equal(t, map[string]any{"value": "ja"}, req.Filter.Must[0].Match)
		assert.Equal(t, "categories", req.Filter.Must[1].Key)
		assert.Equal(t, map[string]any{"text": "機械学習"}, req.Filter.Must[1].Match)

		json.NewEncoder(w).Encode(map[string]any{"result": []any{}})
	}))
	defer srv.Close()

	s := New(Config{URL: srv.URL, Collection: "wiki"}, fixedEmbedder{})

	filter := index.And(index.Eq("language", "ja"), index.Contains("categories", "機械学習"))
	_, err := s.Query(context.Background(), "query", 3, filter)
	require.NoError(t, err)
}

func TestCountMissingCollectionIsZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":{"error":"Not found"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	s := New(Config{URL: srv.URL, Collection: "wiki"}, fixedEmbedder{})

	count, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/wiki/points/count", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"count": 42}})
	}))
	defer srv.Close()

	s := New(Config{URL: srv.URL, Collection: "wiki"}, fixedEmbedder{})

	count, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestDeleteMissingCollectionIsNoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	s := New(Config{URL: srv.URL, Collection: "wiki"}, fixedEmbedder{})
	assert.NoError(t, s.DeleteCollection(context.Background()))
}

func TestUpsertCreatesCollectionAndWritesPoints(t *testing.T) {
	var createdDim float64
	var gotPoints []map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/wiki":
			var req struct {
				Vectors struct {
					Size     float64 `json:"size"`
					Distance string  `json:"distance"`
				} `json:"vectors"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			createdDim = req.Vectors.Size
			assert.Equal(t, "Cosine", req.Vectors.Distance)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/wiki/points":
			var req struct {
				Points []map[string]any `json:"points"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			gotPoints = req.Points
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"result":{}}`))
	}))
	defer srv.Close()

	s := New(Config{URL: srv.URL, Collection: "wiki"}, fixedEmbedder{})

	err := s.Upsert(context.Background(), []index.Document{{
		ID:       "wiki_1",
		Content:  "body",
		Metadata: map[string]string{"title": "記事"},
	}})
	require.NoError(t, err)

	assert.EqualValues(t, 3, createdDim)
	require.Len(t, gotPoints, 1)
	payload, ok := gotPoints[0]["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "wiki_1", payload["doc_id"])
	assert.Equal(t, "記事", payload["title"])

	// Point IDs are UUIDs derived from the document ID, so two loads of the
	// same document hit the same point.
	assert.Equal(t, pointID("wiki_1"), gotPoints[0]["id"])
	assert.Equal(t, pointID("wiki_1"), pointID("wiki_1"))
	assert.NotEqual(t, pointID("wiki_1"), pointID("wiki_2"))
}

func TestAPIKeyHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"count": 0}})
	}))
	defer srv.Close()

	s := New(Config{URL: srv.URL, APIKey: "secret", Collection: "wiki"}, fixedEmbedder{})
	_, err := s.Count(context.Background())
	require.NoError(t, err)
}
