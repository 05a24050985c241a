package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayurdiag/internal/domain"
)

func openTemp(t *testing.T) (*Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "processed", "vector_store.db")
	s, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestStoragePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)
	require.NoError(t, s.Init(ctx, 2))
	chunks := []domain.Chunk{
		{ChunkID: "vata.txt_chunk_0", DocumentID: "d1", Source: "vata.txt", Text: "Vata is cold.", Total: 2, Metadata: map[string]string{"title": "vata"}},
		{ChunkID: "pitta.txt_chunk_0", DocumentID: "d2", Source: "pitta.txt", Text: "Pitta is hot.", Total: 1},
	}
	require.NoError(t, s.Upsert(ctx, chunks, [][]float64{{1, 0}, {0, 1}}))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	dim, err := reopened.Dimension(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dim)

	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	res, err := reopened.Search(ctx, []float64{0.1, 0.9}, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "pitta.txt", res[0].Chunk.Source)
	assert.Equal(t, "Pitta is hot.", res[0].Chunk.Text)

	all, err := reopened.Chunks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "vata", all[0].Metadata["title"])
}

func TestStorageInitDimensionChangeClears(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	require.NoError(t, s.Init(ctx, 1))
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{{ChunkID: "a"}}, [][]float64{{1}}))

	require.NoError(t, s.Init(ctx, 1))
	n, _ := s.Count(ctx)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Init(ctx, 3))
	n, _ = s.Count(ctx)
	assert.Zero(t, n)
	assert.Error(t, s.Upsert(ctx, []domain.Chunk{{ChunkID: "b"}}, [][]float64{{1}}))
}

func TestStorageErrors(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	assert.Error(t, s.Upsert(ctx, []domain.Chunk{{}}, [][]float64{{1}}))
	assert.Error(t, s.Init(ctx, -1))

	res, err := s.Search(ctx, []float64{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestVectorCodec(t *testing.T) {
	v := []float64{0, -1.5, 3.25}
	out, err := decodeVector(encodeVector(v))
	require.NoError(t, err)
	assert.Equal(t, v, out)
	_, err = decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
