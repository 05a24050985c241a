package gemini

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Config configures the Gemini embedding client.
type Config struct {
	APIKey string
	Model  string
	// DocumentTaskType is used for EmbedBatch (indexing), QueryTaskType for Embed.
	DocumentTaskType string
	QueryTaskType    string
	// OutputDimensionality truncates vectors when > 0.
	OutputDimensionality int
	// BaseURL overrides the API endpoint.
	BaseURL string
}

// Embedder produces embeddings through the Gemini API.
type Embedder struct {
	client  *genai.Client
	model   string
	docTask string
	qTask   string
	outDim  *int32
	logger  *zap.Logger

	mu        sync.Mutex
	dimension int
}

// New creates a Gemini embedder.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("genai API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-embedding-001"
	}
	if cfg.DocumentTaskType == "" {
		cfg.DocumentTaskType = "RETRIEVAL_DOCUMENT"
	}
	if cfg.QueryTaskType == "" {
		cfg.QueryTaskType = "RETRIEVAL_QUERY"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	e := &Embedder{client: client, model: cfg.Model, docTask: cfg.DocumentTaskType, qTask: cfg.QueryTaskType, logger: logger}
	if cfg.OutputDimensionality > 0 {
		e.outDim = genai.Ptr(int32(cfg.OutputDimensionality))
	}
	return e, nil
}

func (e *Embedder) Name() string { return "genai:" + e.model }

func (e *Embedder) Prepare([]string) error { return nil }

// Dimension is known after the first successful call.
func (e *Embedder) Dimension() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dimension
}

// Embed embeds a single query text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := e.embed(ctx, []string{text}, e.qTask)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds knowledge-base passages in a single request.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return e.embed(ctx, texts, e.docTask)
}

func (e *Embedder) embed(ctx context.Context, texts []string, task string) ([][]float64, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}
	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType:             task,
		OutputDimensionality: e.outDim,
	})
	if err != nil {
		return nil, fmt.Errorf("genai embed: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("genai embed: expected %d embeddings, got %d", len(texts), len(result.Embeddings))
	}
	out := make([][]float64, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("genai embed: empty embedding at %d", i)
		}
		vec := make([]float64, len(emb.Values))
		for j, v := range emb.Values {
			vec[j] = float64(v)
		}
		out[i] = vec
	}
	e.mu.Lock()
	if e.dimension == 0 {
		e.dimension = len(out[0])
		e.logger.Debug("genai embedding dimension", zap.String("model", e.model), zap.Int("dimension", e.dimension))
	}
	e.mu.Unlock()
	return out, nil
}
