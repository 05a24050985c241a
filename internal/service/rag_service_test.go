package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayurdiag/internal/chunker"
	"ayurdiag/internal/domain"
	"ayurdiag/internal/embedding/tfidf"
	"ayurdiag/internal/loader"
	"ayurdiag/internal/summarizer"
	"ayurdiag/internal/vectorstore/memory"
	"ayurdiag/internal/vectorstore/sqlite"
)

func writeKnowledgeBase(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"vata.txt":  "Vata dosha is made of air and space. Vata imbalance causes dry skin, anxiety, constipation and joint pain that worsens in cold weather.",
		"pitta.txt": "Pitta dosha is made of fire and water. Pitta imbalance causes heartburn, acid reflux, skin rashes and irritability.",
		"kapha.txt": "Kapha dosha is made of earth and water. Kapha imbalance causes weight gain, congestion, lethargy and excessive sleep.",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestIngestAndQuery(t *testing.T) {
	ctx := context.Background()
	dir := writeKnowledgeBase(t)
	svc := NewRAGService(loader.New(loader.Config{}, nil), chunker.NewRecursiveChunker(200, 20),
		tfidf.NewEmbedder(), memory.NewStorage(), summarizer.NewFrequencySummarizer(), Options{SummarySentences: 2}, nil)

	assert.False(t, svc.Ready(ctx))
	_, err := svc.Query(ctx, "heartburn", 3)
	assert.ErrorIs(t, err, ErrEmptyIndex)

	report, err := svc.IngestPaths(ctx, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Documents.TotalDocuments)
	assert.Equal(t, 3, report.Chunks.TotalChunks)
	assert.Equal(t, "tfidf", report.Embedder)
	assert.Greater(t, report.Dimension, 0)
	assert.NotEmpty(t, report.Summary)
	assert.Equal(t, report.Summary, svc.Summary())
	assert.True(t, svc.Ready(ctx))

	res, err := svc.Query(ctx, "heartburn and acid reflux", 2)
	require.NoError(t, err)
	require.NotEmpty(t, res)
	assert.Equal(t, "pitta.txt", res[0].Chunk.Source)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestQueryLexicalFallback(t *testing.T) {
	ctx := context.Background()
	svc := NewRAGService(loader.New(loader.Config{}, nil), chunker.NewRecursiveChunker(200, 20),
		tfidf.NewEmbedder(), memory.NewStorage(), summarizer.NewFrequencySummarizer(), Options{}, nil)
	_, err := svc.IngestPaths(ctx, []string{writeKnowledgeBase(t)})
	require.NoError(t, err)

	// Stopwords embed to a zero vector but still overlap lexically.
	res, err := svc.Query(ctx, "is of", 3)
	require.NoError(t, err)
	require.Len(t, res, 3)
	for _, r := range res {
		assert.Greater(t, r.Score, 0.0)
	}

	res, err = svc.Query(ctx, "zzz qqq", 3)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestIngestNoDocuments(t *testing.T) {
	svc := NewRAGService(loader.New(loader.Config{}, nil), chunker.NewRecursiveChunker(200, 20),
		tfidf.NewEmbedder(), memory.NewStorage(), summarizer.NewFrequencySummarizer(), Options{}, nil)
	_, err := svc.IngestPaths(context.Background(), []string{t.TempDir()})
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestRestoreFromSQLite(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "vs.db")
	store, err := sqlite.Open(ctx, dbPath, nil)
	require.NoError(t, err)
	svc := NewRAGService(loader.New(loader.Config{}, nil), chunker.NewRecursiveChunker(200, 20),
		tfidf.NewEmbedder(), store, summarizer.NewFrequencySummarizer(), Options{}, nil)
	_, err = svc.IngestPaths(ctx, []string{writeKnowledgeBase(t)})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(ctx, dbPath, nil)
	require.NoError(t, err)
	defer reopened.Close()
	fresh := NewRAGService(loader.New(loader.Config{}, nil), chunker.NewRecursiveChunker(200, 20),
		tfidf.NewEmbedder(), reopened, summarizer.NewFrequencySummarizer(), Options{}, nil)
	n, err := fresh.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NotEmpty(t, fresh.Summary())

	res, err := fresh.Query(ctx, "weight gain and congestion", 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "kapha.txt", res[0].Chunk.Source)
}

// flakyStore fails Upsert once failUpsert is set.
type flakyStore struct {
	*memory.Storage
	failUpsert bool
}

func (f *flakyStore) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if f.failUpsert {
		return errors.New("disk full")
	}
	return f.Storage.Upsert(ctx, chunks, vectors)
}

func TestFailedReingestDropsStaleCorpus(t *testing.T) {
	ctx := context.Background()
	dir := writeKnowledgeBase(t)
	store := &flakyStore{Storage: memory.NewStorage()}
	svc := NewRAGService(loader.New(loader.Config{}, nil), chunker.NewRecursiveChunker(200, 20),
		tfidf.NewEmbedder(), store, summarizer.NewFrequencySummarizer(), Options{SummarySentences: 2}, nil)

	_, err := svc.IngestPaths(ctx, []string{dir})
	require.NoError(t, err)
	require.True(t, svc.Ready(ctx))

	store.failUpsert = true
	_, err = svc.IngestPaths(ctx, []string{dir})
	require.ErrorContains(t, err, "disk full")

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, svc.Ready(ctx))
	assert.Empty(t, svc.Summary())
	_, err = svc.Query(ctx, "heartburn", 3)
	assert.ErrorIs(t, err, ErrEmptyIndex)

	store.failUpsert = false
	_, err = svc.IngestPaths(ctx, []string{dir})
	require.NoError(t, err)
	assert.True(t, svc.Ready(ctx))
}
