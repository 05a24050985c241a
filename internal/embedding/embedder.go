package embedding

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ayurdiag/internal/domain"
)

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder = domain.Embedder

// EmbedAll embeds every text, preserving order. Embedders with native batching
// are called in slices of batchSize; the rest are called concurrently with at
// most workers requests in flight.
func EmbedAll(ctx context.Context, e Embedder, texts []string, batchSize, workers int) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = 32
	}
	if workers <= 0 {
		workers = 4
	}
	out := make([][]float64, len(texts))
	if be, ok := e.(domain.BatchEmbedder); ok {
		for start := 0; start < len(texts); start += batchSize {
			end := min(start+batchSize, len(texts))
			vecs, err := be.EmbedBatch(ctx, texts[start:end])
			if err != nil {
				return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
			}
			if len(vecs) != end-start {
				return nil, fmt.Errorf("embed batch %d-%d: got %d vectors", start, end, len(vecs))
			}
			copy(out[start:end], vecs)
		}
		return out, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range texts {
		g.Go(func() error {
			vec, err := e.Embed(gctx, texts[i])
			if err != nil {
				return fmt.Errorf("embed text %d: %w", i, err)
			}
			out[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
