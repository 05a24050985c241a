package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lenEmbedder struct{ fail string }

func (lenEmbedder) Name() string          { return "len" }
func (lenEmbedder) Prepare([]string) error { return nil }
func (lenEmbedder) Dimension() int         { return 1 }
func (e lenEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if text == e.fail {
		return nil, errors.New("boom")
	}
	return []float64{float64(len(text))}, nil
}

type batchEmbedder struct {
	lenEmbedder
	calls int
}

func (b *batchEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	b.calls++
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i], _ = b.Embed(ctx, t)
	}
	return out, nil
}

func TestEmbedAllPreservesOrder(t *testing.T) {
	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vecs, err := EmbedAll(context.Background(), lenEmbedder{}, texts, 0, 2)
	require.NoError(t, err)
	for i, v := range vecs {
		assert.Equal(t, float64(i+1), v[0])
	}
}

func TestEmbedAllUsesBatches(t *testing.T) {
	b := &batchEmbedder{}
	vecs, err := EmbedAll(context.Background(), b, []string{"a", "bb", "ccc"}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, b.calls)
	assert.Equal(t, [][]float64{{1}, {2}, {3}}, vecs)
}

func TestEmbedAllPropagatesErrors(t *testing.T) {
	_, err := EmbedAll(context.Background(), lenEmbedder{fail: "bad"}, []string{"ok", "bad"}, 0, 1)
	assert.Error(t, err)
}

func TestEmbedAllEmpty(t *testing.T) {
	vecs, err := EmbedAll(context.Background(), lenEmbedder{}, nil, 0, 0)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}
