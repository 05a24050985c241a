// Package retriever turns raw similarity search into formatted prompt context.
package retriever

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"ayurdiag/internal/domain"
)

// NoContext is returned by RelevantContext when nothing is retrieved.
const NoContext = "No relevant context found."

// Searcher is the subset of the indexing service the retriever needs.
type Searcher interface {
	Query(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
	Ready(ctx context.Context) bool
}

// Result is one retrieved passage.
type Result struct {
	Content  string            `json:"content"`
	Source   string            `json:"source"`
	Score    float64           `json:"score"`
	ChunkID  string            `json:"chunk_id"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Retriever performs top-k lookups against the knowledge base.
type Retriever struct {
	searcher Searcher
	topK     int
	minScore float64
	logger   *zap.Logger
}

// New creates a retriever. topK <= 0 defaults to 5; results scoring below
// minScore are dropped.
func New(s Searcher, topK int, minScore float64, logger *zap.Logger) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{searcher: s, topK: topK, minScore: minScore, logger: logger}
}

// Ready reports whether the knowledge base has been indexed.
func (r *Retriever) Ready(ctx context.Context) bool {
	return r.searcher != nil && r.searcher.Ready(ctx)
}

// TopK is the default number of results.
func (r *Retriever) TopK() int { return r.topK }

// Retrieve returns up to k passages for query. An unindexed knowledge base
// yields no results and no error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]Result, error) {
	if !r.Ready(ctx) {
		r.logger.Warn("retriever not initialised; returning no context")
		return nil, nil
	}
	if k <= 0 {
		k = r.topK
	}
	hits, err := r.searcher.Query(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	out := make([]Result, 0, len(hits))
	for _, h := range hits {
		if h.Score < r.minScore {
			continue
		}
		out = append(out, Result{
			Content:  h.Chunk.Text,
			Source:   h.Chunk.Source,
			Score:    h.Score,
			ChunkID:  h.Chunk.ChunkID,
			Metadata: h.Chunk.Metadata,
		})
	}
	r.logger.Debug("retrieved passages", zap.String("query", query), zap.Int("count", len(out)))
	return out, nil
}

// RelevantContext retrieves passages and formats them for a prompt.
func (r *Retriever) RelevantContext(ctx context.Context, query string, k int) (string, []Result, error) {
	results, err := r.Retrieve(ctx, query, k)
	if err != nil {
		return "", nil, err
	}
	return FormatContext(results), results, nil
}

// FormatContext renders passages as numbered documents with source and score.
func FormatContext(results []Result) string {
	if len(results) == 0 {
		return NoContext
	}
	parts := make([]string, len(results))
	for i, res := range results {
		parts[i] = fmt.Sprintf("Document %d (Source: %s, Relevance: %.3f):\n%s\n", i+1, res.Source, res.Score, res.Content)
	}
	return strings.Join(parts, "\n")
}

// Filter narrows retrieval results.
type Filter struct {
	// Source is a case-insensitive substring of the source file name.
	Source   string
	MinScore float64
	TopK     int
}

// RetrieveWithFilters retrieves f.TopK passages and then applies the filters.
func (r *Retriever) RetrieveWithFilters(ctx context.Context, query string, f Filter) ([]Result, error) {
	results, err := r.Retrieve(ctx, query, f.TopK)
	if err != nil {
		return nil, err
	}
	src := strings.ToLower(f.Source)
	out := results[:0]
	for _, res := range results {
		if res.Score < f.MinScore {
			continue
		}
		if src != "" && !strings.Contains(strings.ToLower(res.Source), src) {
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

// Stats describes the results of one query.
type Stats struct {
	Query         string   `json:"query"`
	TotalResults  int      `json:"total_results"`
	AverageScore  float64  `json:"average_score"`
	MinScore      float64  `json:"min_score"`
	MaxScore      float64  `json:"max_score"`
	Sources       []string `json:"sources"`
	UniqueSources int      `json:"unique_sources"`
}

// Statistics retrieves for query and summarises the scores and sources.
func (r *Retriever) Statistics(ctx context.Context, query string) (Stats, error) {
	results, err := r.Retrieve(ctx, query, 0)
	if err != nil {
		return Stats{Query: query}, err
	}
	st := Stats{Query: query, TotalResults: len(results), Sources: []string{}}
	if len(results) == 0 {
		return st, nil
	}
	seen := map[string]struct{}{}
	st.MinScore, st.MaxScore = results[0].Score, results[0].Score
	sum := 0.0
	for _, res := range results {
		sum += res.Score
		st.MinScore = min(st.MinScore, res.Score)
		st.MaxScore = max(st.MaxScore, res.Score)
		if _, ok := seen[res.Source]; !ok {
			seen[res.Source] = struct{}{}
			st.Sources = append(st.Sources, res.Source)
		}
	}
	sort.Strings(st.Sources)
	st.AverageScore = sum / float64(len(results))
	st.UniqueSources = len(st.Sources)
	return st, nil
}

// Sources returns the distinct sources of results in first-seen order.
func Sources(results []Result) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, r := range results {
		if _, ok := seen[r.Source]; ok {
			continue
		}
		seen[r.Source] = struct{}{}
		out = append(out, r.Source)
	}
	return out
}
