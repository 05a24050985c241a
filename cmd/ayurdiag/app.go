package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ayurdiag/internal/chunker"
	"ayurdiag/internal/config"
	"ayurdiag/internal/diagnosis"
	"ayurdiag/internal/domain"
	"ayurdiag/internal/embedding"
	"ayurdiag/internal/embedding/gemini"
	"ayurdiag/internal/embedding/openai"
	"ayurdiag/internal/embedding/tfidf"
	"ayurdiag/internal/llm"
	"ayurdiag/internal/loader"
	"ayurdiag/internal/retriever"
	"ayurdiag/internal/service"
	"ayurdiag/internal/summarizer"
	"ayurdiag/internal/vectorstore"
	"ayurdiag/internal/vectorstore/memory"
	"ayurdiag/internal/vectorstore/qdrant"
	"ayurdiag/internal/vectorstore/sqlite"
)

// app holds the assembled indexing and retrieval components.
type app struct {
	cfg       *config.AppConfig
	logger    *zap.Logger
	loader    *loader.Loader
	svc       *service.RAGService
	retriever *retriever.Retriever
	closers   []func() error
}

// newApp assembles components from the config. Persistent stores are
// restored so queries work without re-ingesting.
func newApp(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	var emb embedding.Embedder
	switch cfg.Embedder.Type {
	case "gemini", "":
		key, err := cfg.APIKey()
		if err != nil {
			return nil, err
		}
		g := cfg.Embedder.Gemini
		if g == nil {
			g = &config.GeminiEmbedderConfig{}
		}
		e, err := gemini.New(ctx, gemini.Config{
			APIKey:               key,
			Model:                g.Model,
			DocumentTaskType:     g.DocumentTaskType,
			QueryTaskType:        g.QueryTaskType,
			OutputDimensionality: g.OutputDimensionality,
			BaseURL:              cfg.LLM.BaseURL,
		}, logger.Named("embedder"))
		if err != nil {
			return nil, fmt.Errorf("gemini embedder init failed: %w", err)
		}
		emb = e
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, errors.New("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		}, logger.Named("embedder"))
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		emb = client
	case "tfidf":
		emb = tfidf.NewEmbedder()
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var ch domain.Chunker
	switch cfg.Chunker.Type {
	case "recursive", "":
		ch = chunker.NewRecursiveChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)
	case "sentence":
		ch = chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Chunker.Type)
	}

	var st vectorstore.Storage
	switch cfg.VectorStore.Type {
	case "sqlite", "":
		path := ""
		if cfg.VectorStore.SQLite != nil {
			path = cfg.VectorStore.SQLite.Path
		}
		if path == "" {
			return nil, errors.New("sqlite vector store path missing")
		}
		s, err := sqlite.Open(ctx, path, logger.Named("sqlite"))
		if err != nil {
			return nil, fmt.Errorf("open vector store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		st = s
	case "memory":
		st = memory.NewStorage()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return nil, errors.New("qdrant config missing")
		}
		q := cfg.VectorStore.Qdrant
		st = qdrant.NewStorage(qdrant.Config{
			URL:        q.URL,
			APIKey:     q.APIKey,
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		}, logger.Named("qdrant"))
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "frequency", "":
		sum = summarizer.NewFrequencySummarizer()
	default:
		_ = a.Close()
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	ld := loader.New(loader.Config{
		SupportedFormats: cfg.Documents.SupportedFormats,
		MaxFileSizeMB:    cfg.Documents.MaxFileSizeMB,
	}, logger.Named("loader"))

	a.loader = ld
	a.svc = service.NewRAGService(ld, ch, emb, st, sum, service.Options{
		SummarySentences: cfg.Summarizer.MaxSentences,
		BatchSize:        cfg.Embedder.BatchSize,
		Workers:          cfg.Embedder.Workers,
		MinChunkLength:   cfg.Chunker.MinChunkLength,
	}, logger.Named("service"))
	a.retriever = retriever.New(a.svc, cfg.Retrieval.TopK, cfg.Retrieval.MinScore, logger.Named("retriever"))

	if _, err := a.svc.Restore(ctx); err != nil {
		logger.Warn("could not restore knowledge base", zap.Error(err))
	}
	return a, nil
}

// ensureIndex ingests the raw document directory when the store is empty.
// Only the in-memory store needs this on every start.
func (a *app) ensureIndex(ctx context.Context) {
	if a.cfg.VectorStore.Type != "memory" || a.svc.Ready(ctx) {
		return
	}
	rep, err := a.svc.IngestPaths(ctx, []string{a.cfg.Documents.RawPath})
	switch {
	case errors.Is(err, service.ErrNoDocuments):
		a.logger.Warn("no documents to index; retrieval disabled", zap.String("path", a.cfg.Documents.RawPath))
	case err != nil:
		a.logger.Warn("auto-ingest failed; retrieval disabled", zap.Error(err))
	default:
		a.logger.Info("indexed raw documents",
			zap.Int("documents", rep.Documents.TotalDocuments),
			zap.Int("chunks", rep.Chunks.TotalChunks))
	}
}

// newEngine builds the Gemini client and the diagnostic engine on top of the
// retriever.
func (a *app) newEngine(ctx context.Context) (*diagnosis.Engine, error) {
	a.ensureIndex(ctx)

	var client llm.Client
	switch a.cfg.LLM.Provider {
	case "gemini", "":
		key, err := a.cfg.APIKey()
		if err != nil {
			return nil, err
		}
		g, err := llm.NewGemini(ctx, llm.GeminiConfig{
			APIKey:  key,
			Model:   a.cfg.LLM.Model,
			Timeout: time.Duration(a.cfg.LLM.TimeoutSecs) * time.Second,
			BaseURL: a.cfg.LLM.BaseURL,
		}, a.logger.Named("llm"))
		if err != nil {
			return nil, fmt.Errorf("model client init failed: %w", err)
		}
		client = g
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", a.cfg.LLM.Provider)
	}

	return diagnosis.NewEngine(client, a.retriever, a.svc, diagnosis.Config{
		Provider:     a.cfg.LLM.Provider,
		Temperature:  a.cfg.LLM.Temperature,
		MaxTokens:    a.cfg.LLM.MaxTokens,
		TopK:         a.cfg.Retrieval.TopK,
		BatchWorkers: a.cfg.Embedder.Workers,
	}, a.logger.Named("diagnosis")), nil
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// withApp builds the app, runs fn and closes it.
func withApp(ctx context.Context, fn func(*app) error) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}()
	return fn(a)
}
