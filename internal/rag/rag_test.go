package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikirag/internal/index"
)

// fakeIndex is an in-memory Index stub for pipeline tests.
type fakeIndex struct {
	count    int
	results  []index.Result
	queryErr error
	countErr error

	lastQuery string
	lastN     int
}

func (f *fakeIndex) Upsert(ctx context.Context, docs []index.Document) error { return nil }

func (f *fakeIndex) Query(ctx context.Context, text string, n int, filter *index.Filter) ([]index.Result, error) {
	f.lastQuery = text
	f.lastN = n
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.results, nil
}

func (f *fakeIndex) Count(ctx context.Context) (int, error) { return f.count, f.countErr }
func (f *fakeIndex) DeleteCollection(ctx context.Context) error {
	f.count = 0
	return nil
}
func (f *fakeIndex) Close() error { return nil }

type fakeGenerator struct {
	answer     string
	err        error
	calls      int
	lastPrompt string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	g.calls++
	g.lastPrompt = prompt
	return g.answer, g.err
}

func TestRetrieverDefaultsResultCount(t *testing.T) {
	idx := &fakeIndex{count: 10}
	r := NewRetriever(idx)

	_, err := r.Search(context.Background(), "query", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultResults, idx.lastN)
}

func TestRetrieverRejectsNegativeN(t *testing.T) {
	r := NewRetriever(&fakeIndex{count: 10})

	_, err := r.Search(context.Background(), "query", -1, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "n_results")
}

func TestRetrieverEmptyCorpus(t *testing.T) {
	r := NewRetriever(&fakeIndex{count: 0})

	_, err := r.Search(context.Background(), "query", 3, nil)
	require.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestRetrieverPreservesIndexOrder(t *testing.T) {
	idx := &fakeIndex{
		count: 3,
		results: []index.Result{
			{ID: "wiki_1", Distance: 0.1},
			{ID: "wiki_2", Distance: 0.4},
			{ID: "wiki_3", Distance: 0.9},
		},
	}
	r := NewRetriever(idx)

	results, err := r.Search(context.Background(), "query", 3, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "wiki_1", results[0].ID)
	assert.Equal(t, "wiki_3", results[2].ID)
}

func TestComposerBoundsEachBody(t *testing.T) {
	long := strings.Repeat("あ", 2000)
	results := []index.Result{
		{ID: "wiki_1", Content: long, Metadata: map[string]string{"title": "一"}},
		{ID: "wiki_2", Content: long, Metadata: map[string]string{"title": "二"}},
	}

	c := Composer{MaxChars: 100}
	out := c.Compose(results)

	for _, block := range strings.Split(out, blockDelimiter) {
		_, body, found := strings.Cut(block, "Content:\n")
		require.True(t, found)
		assert.LessOrEqual(t, len([]rune(strings.TrimSpace(body))), 100)
	}
}

func TestComposerTruncatesOnRuneBoundary(t *testing.T) {
	c := Composer{MaxChars: 5}
	out := c.Compose([]index.Result{{ID: "x", Content: "日本語のテキストです"}})
	assert.Contains(t, out, "日本語のテ")
	assert.NotContains(t, out, "日本語のテキ")
}

func TestComposerIncludesMetadata(t *testing.T) {
	results := []index.Result{{
		ID:      "wiki_185375",
		Content: "body",
		Metadata: map[string]string{
			"title":      "機械学習",
			"categories": "機械学習,人工知能",
		},
	}}

	out := Composer{}.Compose(results)
	assert.Contains(t, out, "[Reference 1]")
	assert.Contains(t, out, "Title: 機械学習")
	assert.Contains(t, out, "ID: wiki_185375")
	assert.Contains(t, out, "Categories: 機械学習,人工知能")
}

func TestComposerMissingTitleRendersNA(t *testing.T) {
	out := Composer{}.Compose([]index.Result{{ID: "wiki_1", Content: "body"}})
	assert.Contains(t, out, "Title: N/A")
}

func TestEngineAnswersFromRetrievedContext(t *testing.T) {
	idx := &fakeIndex{
		count: 1,
		results: []index.Result{{
			ID:       "wiki_185375",
			Content:  "機械学習はアルゴリズムの研究である。",
			Metadata: map[string]string{"title": "機械学習"},
		}},
	}
	gen := &fakeGenerator{answer: "機械学習とは..."}
	e := NewEngine(NewRetriever(idx), Composer{}, gen)

	answer, err := e.GenerateAnswer(context.Background(), "機械学習とは何ですか", 0, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "機械学習とは...", answer)
	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, gen.lastPrompt, "機械学習とは何ですか")
	assert.Contains(t, gen.lastPrompt, "機械学習はアルゴリズムの研究である。")
}

func TestEngineEmptyCorpusSkipsGeneration(t *testing.T) {
	gen := &fakeGenerator{answer: "should not be used"}
	e := NewEngine(NewRetriever(&fakeIndex{count: 0}), Composer{}, gen)

	answer, err := e.GenerateAnswer(context.Background(), "question", 3, 0.7)
	require.NoError(t, err)
	assert.Equal(t, NoInformationMessage, answer)
	assert.Zero(t, gen.calls)
}

func TestEngineNoResultsSkipsGeneration(t *testing.T) {
	gen := &fakeGenerator{}
	e := NewEngine(NewRetriever(&fakeIndex{count: 5}), Composer{}, gen)

	answer, err := e.GenerateAnswer(context.Background(), "question", 3, 0.7)
	require.NoError(t, err)
	assert.Equal(t, NoInformationMessage, answer)
	assert.Zero(t, gen.calls)
}

func TestEngineRejectsTemperatureOutOfRange(t *testing.T) {
	gen := &fakeGenerator{}
	e := NewEngine(NewRetriever(&fakeIndex{count: 5}), Composer{}, gen)

	for _, temp := range []float32{-0.1, 1.5} {
		_, err := e.GenerateAnswer(context.Background(), "question", 3, temp)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "temperature")
	}
	assert.Zero(t, gen.calls)
}

func TestEngineWrapsGenerationFailure(t *testing.T) {
	idx := &fakeIndex{count: 1, results: []index.Result{{ID: "wiki_1", Content: "x"}}}
	gen := &fakeGenerator{err: errors.New("service unavailable")}
	e := NewEngine(NewRetriever(idx), Composer{}, gen)

	_, err := e.GenerateAnswer(context.Background(), "question", 1, 0.5)
	require.ErrorIs(t, err, ErrGeneration)
	assert.Contains(t, err.Error(), "service unavailable")
}
