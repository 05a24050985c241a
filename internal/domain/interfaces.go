package domain

import "context"

// Document represents a single knowledge-base file loaded into the system.
type Document struct {
	ID       string
	Path     string
	Name     string
	Type     string
	Content  string
	Metadata map[string]string
}

// Chunk is a window of a document used for indexing and retrieval.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
	Total      int
	Source     string
	Path       string
	FileType   string
	Metadata   map[string]string
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// BatchEmbedder is implemented by embedders that can embed many texts in one call.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// CorpusLister is implemented by stores that can return every stored chunk.
type CorpusLister interface {
	Chunks(ctx context.Context) ([]Chunk, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
