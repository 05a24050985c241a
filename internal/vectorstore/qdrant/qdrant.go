package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ayurdiag/internal/domain"
	"ayurdiag/internal/vectorstore"
)

// pointNamespace scopes the UUIDv5 point IDs derived from chunk positions.
var pointNamespace = uuid.MustParse("6f1c3c9e-5d4e-4d0b-9a51-0c1f2b7e8a21")

// Storage is a minimal REST client to Qdrant using cosine distance.
// The collection is created on Init if it does not exist.
type Storage struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
	logger     *zap.Logger
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config, logger *zap.Logger) *Storage {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.URL == "" {
		cfg.URL = "http://localhost:6333"
	}
	if cfg.Collection == "" {
		cfg.Collection = "ayurveda"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// errNotFound marks a 404 from Qdrant.
var errNotFound = errors.New("qdrant: not found")

type payload struct {
	DocumentID string            `json:"document_id"`
	ChunkID    string            `json:"chunk_id"`
	Index      int               `json:"index"`
	Total      int               `json:"total"`
	Source     string            `json:"source"`
	Path       string            `json:"path"`
	FileType   string            `json:"file_type"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Text       string            `json:"text"`
}

func (p payload) chunk() domain.Chunk {
	return domain.Chunk{
		DocumentID: p.DocumentID, ChunkID: p.ChunkID, Index: p.Index, Total: p.Total,
		Source: p.Source, Path: p.Path, FileType: p.FileType, Metadata: p.Metadata, Text: p.Text,
	}
}

// PointID is the deterministic Qdrant point ID of a chunk.
func PointID(c domain.Chunk) string {
	return uuid.NewSHA1(pointNamespace, []byte(fmt.Sprintf("%s:%d", c.DocumentID, c.Index))).String()
}

func (s *Storage) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.url, s.collection)
}

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	err := s.do(ctx, http.MethodGet, s.collectionURL(), nil, nil)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errNotFound) {
		return err
	}
	s.logger.Info("creating qdrant collection", zap.String("collection", s.collection), zap.Int("dimension", dimension))
	body := map[string]any{
		"vectors": map[string]any{"size": dimension, "distance": "Cosine"},
	}
	return s.do(ctx, http.MethodPut, s.collectionURL(), body, nil)
}

func (s *Storage) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	if len(chunks) == 0 {
		return nil
	}
	type point struct {
		ID      string    `json:"id"`
		Vector  []float64 `json:"vector"`
		Payload payload   `json:"payload"`
	}
	points := make([]point, len(chunks))
	for i, c := range chunks {
		points[i] = point{
			ID:     PointID(c),
			Vector: vectors[i],
			Payload: payload{
				DocumentID: c.DocumentID, ChunkID: c.ChunkID, Index: c.Index, Total: c.Total,
				Source: c.Source, Path: c.Path, FileType: c.FileType, Metadata: c.Metadata, Text: c.Text,
			},
		}
	}
	return s.do(ctx, http.MethodPut, s.collectionURL()+"/points?wait=true", map[string]any{"points": points}, nil)
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = vectorstore.DefaultTopK
	}
	req := map[string]any{"vector": vector, "limit": topK, "with_payload": true}
	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload payload `json:"payload"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points/search", req, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.SearchResult{Chunk: r.Payload.chunk(), Score: r.Score})
	}
	return results, nil
}

// Clear drops the collection; the next Init recreates it.
func (s *Storage) Clear(ctx context.Context) error {
	err := s.do(ctx, http.MethodDelete, s.collectionURL(), nil, nil)
	if errors.Is(err, errNotFound) {
		return nil
	}
	return err
}

func (s *Storage) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points/count", map[string]any{"exact": true}, &resp)
	if errors.Is(err, errNotFound) {
		return 0, nil
	}
	return resp.Result.Count, err
}

// Chunks scrolls through the whole collection, ordered by source and index.
func (s *Storage) Chunks(ctx context.Context) ([]domain.Chunk, error) {
	var (
		out    []domain.Chunk
		offset any
	)
	for {
		req := map[string]any{"limit": 256, "with_payload": true, "with_vector": false}
		if offset != nil {
			req["offset"] = offset
		}
		var resp struct {
			Result struct {
				Points []struct {
					Payload payload `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points/scroll", req, &resp); err != nil {
			if errors.Is(err, errNotFound) {
				return nil, nil
			}
			return nil, err
		}
		for _, p := range resp.Result.Points {
			out = append(out, p.Payload.chunk())
		}
		if resp.Result.NextPageOffset == nil || len(resp.Result.Points) == 0 {
			break
		}
		offset = resp.Result.NextPageOffset
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Index < out[j].Index
	})
	return out, nil
}

func (s *Storage) do(ctx context.Context, method, url string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, url, errNotFound)
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("qdrant %s %s failed: %s: %s", method, url, resp.Status, bytes.TrimSpace(msg))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
