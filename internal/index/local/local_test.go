package local

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikirag/internal/index"
)

// hashEmbedder maps each distinct text to a distinct deterministic unit
// vector, so nearest-neighbor order in tests is predictable: a text is
// always closest to itself.
type hashEmbedder struct {
	model string
}

func (h hashEmbedder) vector(text string) []float32 {
	vec := make([]float32, 768)
	sum := 0
	for _, r := range text {
		sum += int(r)
	}
	vec[sum%768] = 1
	return vec
}

func (h hashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = h.vector(t)
	}
	return out, nil
}

func (h hashEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return h.vector(text), nil
}

func (h hashEmbedder) Model() string {
	if h.model != "" {
		return h.model
	}
	return "hash-test"
}

func openTestStore(t *testing.T, emb hashEmbedder) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "index.db"), emb)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func docs() []index.Document {
	return []index.Document{
		{ID: "wiki_1", Content: "aaa", Metadata: map[string]string{"title": "一", "language": "ja"}},
		{ID: "wiki_2", Content: "bbb", Metadata: map[string]string{"title": "二", "language": "ja"}},
		{ID: "wiki_3", Content: "ccc", Metadata: map[string]string{"title": "三", "language": "en"}},
	}
}

func TestUpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, hashEmbedder{})

	require.NoError(t, s.Upsert(ctx, docs()))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	results, err := s.Query(ctx, "bbb", 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "wiki_2", results[0].ID)
	assert.Equal(t, "bbb", results[0].Content)
	assert.Equal(t, "二", results[0].Metadata["title"])
}

func TestUpsertOverwritesByID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, hashEmbedder{})

	require.NoError(t, s.Upsert(ctx, docs()))
	require.NoError(t, s.Upsert(ctx, []index.Document{
		{ID: "wiki_2", Content: "ddd", Metadata: map[string]string{"title": "二改"}},
	}))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	results, err := s.Query(ctx, "ddd", 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "wiki_2", results[0].ID)
	assert.Equal(t, "二改", results[0].Metadata["title"])
}

func TestQueryWithFilter(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, hashEmbedder{})

	require.NoError(t, s.Upsert(ctx, docs()))

	results, err := s.Query(ctx, "aaa", 3, index.Eq("language", "en"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "wiki_3", results[0].ID)
}

func TestDeleteCollection(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, hashEmbedder{})

	require.NoError(t, s.Upsert(ctx, docs()))
	require.NoError(t, s.DeleteCollection(ctx))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpsertRejectsModelSwitch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "index.db")

	s, err := Open(path, hashEmbedder{model: "model-a"})
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, docs()))
	require.NoError(t, s.Close())

	s, err = Open(path, hashEmbedder{model: "model-b"})
	require.NoError(t, err)
	defer s.Close()

	err = s.Upsert(ctx, []index.Document{{ID: "wiki_9", Content: "zzz"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reset the index")

	// A reset clears the stamp and unblocks the new model.
	require.NoError(t, s.DeleteCollection(ctx))
	require.NoError(t, s.Upsert(ctx, []index.Document{{ID: "wiki_9", Content: "zzz"}}))
}
