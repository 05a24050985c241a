package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"ayurdiag/internal/chunker"
	"ayurdiag/internal/domain"
	"ayurdiag/internal/embedding"
	"ayurdiag/internal/loader"
)

var (
	// ErrNoDocuments is returned when ingestion finds nothing to index.
	ErrNoDocuments = errors.New("no supported documents found")
	// ErrEmptyIndex is returned by Query before anything has been indexed.
	ErrEmptyIndex = errors.New("knowledge base is empty; run ingest first")
)

// DocumentLoader reads documents from files, directories or globs.
type DocumentLoader interface {
	LoadPaths(paths []string) ([]domain.Document, error)
}

// Options tunes ingestion.
type Options struct {
	SummarySentences int
	BatchSize        int
	Workers          int
	// MinChunkLength merges shorter chunks into their successor when > 0.
	MinChunkLength int
}

// IngestReport describes one ingestion run.
type IngestReport struct {
	Documents     loader.Stats  `json:"documents"`
	Chunks        chunker.Stats `json:"chunks"`
	Embedder      string        `json:"embedder"`
	Dimension     int           `json:"dimension"`
	Summary       string        `json:"summary"`
	Duration      time.Duration `json:"duration"`
	DocumentNames []string      `json:"document_names"`
}

// RAGService owns the indexing pipeline and raw similarity search.
type RAGService struct {
	loader     DocumentLoader
	chunker    domain.Chunker
	embedder   domain.Embedder
	store      domain.VectorStore
	summarizer domain.Summarizer
	opts       Options
	logger     *zap.Logger

	mu      sync.RWMutex
	chunks  []domain.Chunk
	summary string
}

func NewRAGService(l DocumentLoader, c domain.Chunker, e domain.Embedder, st domain.VectorStore, sum domain.Summarizer, opts Options, logger *zap.Logger) *RAGService {
	if opts.SummarySentences <= 0 {
		opts.SummarySentences = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RAGService{loader: l, chunker: c, embedder: e, store: st, summarizer: sum, opts: opts, logger: logger}
}

// IngestPaths loads, chunks, embeds and stores the given paths, replacing
// whatever the store held before.
func (s *RAGService) IngestPaths(ctx context.Context, paths []string) (*IngestReport, error) {
	start := time.Now()
	documents, err := s.loader.LoadPaths(paths)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	if len(documents) == 0 {
		return nil, ErrNoDocuments
	}
	s.logger.Info("loaded documents", zap.Int("count", len(documents)))

	var (
		allChunks []domain.Chunk
		corpus    strings.Builder
		names     []string
	)
	for _, d := range documents {
		chunks, err := s.chunker.Chunk(d)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", d.Path, err)
		}
		allChunks = append(allChunks, chunks...)
		corpus.WriteString(d.Content)
		corpus.WriteString("\n")
		names = append(names, d.Name)
	}
	if s.opts.MinChunkLength > 0 {
		allChunks = chunker.MergeSmall(allChunks, s.opts.MinChunkLength)
	}
	if len(allChunks) == 0 {
		return nil, ErrNoDocuments
	}
	texts := make([]string, len(allChunks))
	for i, c := range allChunks {
		texts[i] = c.Text
	}

	if err := s.embedder.Prepare(texts); err != nil {
		return nil, fmt.Errorf("prepare embedder: %w", err)
	}
	vectors, err := embedding.EmbedAll(ctx, s.embedder, texts, s.opts.BatchSize, s.opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	dim := len(vectors[0])
	s.logger.Info("embedded chunks", zap.Int("chunks", len(vectors)), zap.Int("dimension", dim), zap.String("embedder", s.embedder.Name()))

	summary, err := s.summarizer.Summarize(corpus.String(), s.opts.SummarySentences)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	if err := s.replaceStored(ctx, dim, allChunks, vectors); err != nil {
		// The store no longer holds the previous corpus, and the embedder
		// has been prepared for the new one.
		s.mu.Lock()
		s.chunks = nil
		s.summary = ""
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Lock()
	s.chunks = allChunks
	s.summary = summary
	s.mu.Unlock()

	return &IngestReport{
		Documents:     loader.Statistics(documents),
		Chunks:        chunker.Statistics(allChunks),
		Embedder:      s.embedder.Name(),
		Dimension:     dim,
		Summary:       summary,
		Duration:      time.Since(start),
		DocumentNames: names,
	}, nil
}

func (s *RAGService) replaceStored(ctx context.Context, dim int, chunks []domain.Chunk, vectors [][]float64) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	if err := s.store.Init(ctx, dim); err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	if err := s.store.Upsert(ctx, chunks, vectors); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// Restore reloads the chunk corpus from a persistent store so the embedder
// vocabulary and the lexical fallback match what was indexed. It returns the
// number of restored chunks.
func (s *RAGService) Restore(ctx context.Context) (int, error) {
	lister, ok := s.store.(domain.CorpusLister)
	if !ok {
		return 0, nil
	}
	chunks, err := lister.Chunks(ctx)
	if err != nil {
		return 0, fmt.Errorf("list stored chunks: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	if err := s.embedder.Prepare(texts); err != nil {
		return 0, fmt.Errorf("prepare embedder: %w", err)
	}
	summary, err := s.summarizer.Summarize(strings.Join(texts, "\n"), s.opts.SummarySentences)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.chunks = chunks
	s.summary = summary
	s.mu.Unlock()
	s.logger.Info("restored knowledge base", zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

// Ready reports whether anything has been indexed.
func (s *RAGService) Ready(ctx context.Context) bool {
	s.mu.RLock()
	n := len(s.chunks)
	s.mu.RUnlock()
	if n > 0 {
		return true
	}
	c, err := s.store.Count(ctx)
	return err == nil && c > 0
}

// Count returns the number of stored chunks.
func (s *RAGService) Count(ctx context.Context) (int, error) { return s.store.Count(ctx) }

// Summary returns the knowledge-base summary of the last ingest or restore.
func (s *RAGService) Summary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// EmbedderName identifies the active embedder.
func (s *RAGService) EmbedderName() string { return s.embedder.Name() }

// Query returns the topK most similar chunks. When the query has no usable
// embedding or every score is zero it falls back to lexical overlap ranking.
func (s *RAGService) Query(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if !s.Ready(ctx) {
		return nil, ErrEmptyIndex
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if isZero(vec) {
		s.logger.Debug("query has no known terms; using lexical ranking", zap.String("query", query))
		return s.lexicalSearch(query, topK), nil
	}
	res, err := s.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	for _, r := range res {
		if r.Score > 1e-9 {
			return res, nil
		}
	}
	return s.lexicalSearch(query, topK), nil
}

func isZero(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

var unicodeWordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

func (s *RAGService) lexicalSearch(query string, topK int) []domain.SearchResult {
	s.mu.RLock()
	chunks := s.chunks
	s.mu.RUnlock()

	qset := toTokenSet(query)
	scores := make([]float64, len(chunks))
	idxs := make([]int, len(chunks))
	for i, ch := range chunks {
		scores[i] = overlapOchiai(qset, ch.Text)
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool { return scores[idxs[i]] > scores[idxs[j]] })
	if topK <= 0 {
		topK = 5
	}
	topK = min(topK, len(idxs))
	out := make([]domain.SearchResult, 0, topK)
	for _, i := range idxs[:topK] {
		if scores[i] == 0 {
			break
		}
		out = append(out, domain.SearchResult{Chunk: chunks[i], Score: scores[i]})
	}
	return out
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// overlapOchiai is |A∩B| / sqrt(|A||B|) over unique lower-cased words.
func overlapOchiai(qset map[string]struct{}, text string) float64 {
	seen := toTokenSet(text)
	if len(qset) == 0 || len(seen) == 0 {
		return 0
	}
	inter := 0
	for t := range seen {
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(seen)))
}
