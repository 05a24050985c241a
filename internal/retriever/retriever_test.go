package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayurdiag/internal/domain"
)

type fakeSearcher struct {
	ready bool
	hits  []domain.SearchResult
	err   error
	lastK int
}

func (f *fakeSearcher) Ready(context.Context) bool { return f.ready }
func (f *fakeSearcher) Query(_ context.Context, _ string, k int) ([]domain.SearchResult, error) {
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	return f.hits[:min(k, len(f.hits))], nil
}

func hits() []domain.SearchResult {
	return []domain.SearchResult{
		{Chunk: domain.Chunk{ChunkID: "vata.txt_chunk_0", Source: "Vata.txt", Text: "Vata is dry."}, Score: 0.91234},
		{Chunk: domain.Chunk{ChunkID: "pitta.txt_chunk_0", Source: "pitta.txt", Text: "Pitta is hot."}, Score: 0.5},
		{Chunk: domain.Chunk{ChunkID: "vata.txt_chunk_1", Source: "Vata.txt", Text: "Vata moves."}, Score: 0.1},
	}
}

func TestRetrieveNotReady(t *testing.T) {
	r := New(&fakeSearcher{}, 0, 0, nil)
	res, err := r.Retrieve(context.Background(), "x", 3)
	require.NoError(t, err)
	assert.Empty(t, res)

	text, _, err := r.RelevantContext(context.Background(), "x", 3)
	require.NoError(t, err)
	assert.Equal(t, NoContext, text)
}

func TestRetrieveDefaultsAndMinScore(t *testing.T) {
	s := &fakeSearcher{ready: true, hits: hits()}
	r := New(s, 4, 0.2, nil)
	res, err := r.Retrieve(context.Background(), "vata", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, s.lastK)
	require.Len(t, res, 2)
	assert.Equal(t, "Vata is dry.", res[0].Content)
	assert.Equal(t, "Vata.txt", res[0].Source)
}

func TestRetrieveError(t *testing.T) {
	r := New(&fakeSearcher{ready: true, err: errors.New("down")}, 5, 0, nil)
	_, err := r.Retrieve(context.Background(), "x", 1)
	assert.Error(t, err)
}

func TestFormatContext(t *testing.T) {
	text := FormatContext([]Result{
		{Source: "vata.txt", Score: 0.91234, Content: "Vata is dry."},
		{Source: "pitta.txt", Score: 0.5, Content: "Pitta is hot."},
	})
	want := "Document 1 (Source: vata.txt, Relevance: 0.912):\nVata is dry.\n\n" +
		"Document 2 (Source: pitta.txt, Relevance: 0.500):\nPitta is hot.\n"
	assert.Equal(t, want, text)
	assert.Equal(t, NoContext, FormatContext(nil))
}

func TestRetrieveWithFilters(t *testing.T) {
	r := New(&fakeSearcher{ready: true, hits: hits()}, 5, 0, nil)
	res, err := r.RetrieveWithFilters(context.Background(), "q", Filter{Source: "VATA"})
	require.NoError(t, err)
	require.Len(t, res, 2)

	res, err = r.RetrieveWithFilters(context.Background(), "q", Filter{Source: "vata", MinScore: 0.5})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "vata.txt_chunk_0", res[0].ChunkID)
}

func TestStatistics(t *testing.T) {
	r := New(&fakeSearcher{ready: true, hits: hits()}, 5, 0, nil)
	st, err := r.Statistics(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalResults)
	assert.InDelta(t, (0.91234+0.5+0.1)/3, st.AverageScore, 1e-9)
	assert.InDelta(t, 0.1, st.MinScore, 1e-9)
	assert.InDelta(t, 0.91234, st.MaxScore, 1e-9)
	assert.Equal(t, []string{"Vata.txt", "pitta.txt"}, st.Sources)
	assert.Equal(t, 2, st.UniqueSources)

	empty, err := New(&fakeSearcher{}, 5, 0, nil).Statistics(context.Background(), "q")
	require.NoError(t, err)
	assert.Zero(t, empty.TotalResults)
	assert.Empty(t, empty.Sources)
}

func TestSources(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Sources([]Result{{Source: "a"}, {Source: "b"}, {Source: "a"}}))
}
