package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayurdiag/internal/domain"
)

// fakeQdrant keeps one collection in memory and answers the endpoints the
// storage uses.
type fakeQdrant struct {
	mu      sync.Mutex
	exists  bool
	points  []json.RawMessage
	apiKeys []string
}

func (f *fakeQdrant) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apiKeys = append(f.apiKeys, r.Header.Get("api-key"))
	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && path == "/collections/kb":
		if !f.exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"result":{}}`))
	case r.Method == http.MethodPut && path == "/collections/kb":
		f.exists = true
		_, _ = w.Write([]byte(`{"result":true}`))
	case r.Method == http.MethodDelete && path == "/collections/kb":
		f.exists = false
		f.points = nil
		_, _ = w.Write([]byte(`{"result":true}`))
	case !f.exists:
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPut && path == "/collections/kb/points":
		var body struct {
			Points []json.RawMessage `json:"points"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.points = append(f.points, body.Points...)
		_, _ = w.Write([]byte(`{"result":{}}`))
	case path == "/collections/kb/points/count":
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"count": len(f.points)}})
	case path == "/collections/kb/points/search":
		var first struct {
			Payload json.RawMessage `json:"payload"`
		}
		_ = json.Unmarshal(f.points[0], &first)
		_, _ = w.Write([]byte(`{"result":[{"score":0.9,"payload":` + string(first.Payload) + `}]}`))
	case path == "/collections/kb/points/scroll":
		_, _ = w.Write([]byte(`{"result":{"points":[` + joinRaw(f.points) + `],"next_page_offset":null}}`))
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func joinRaw(msgs []json.RawMessage) string {
	parts := make([]string, len(msgs))
	for i, m := range msgs {
		parts[i] = string(m)
	}
	return strings.Join(parts, ",")
}

func TestStorageRoundTrip(t *testing.T) {
	fake := &fakeQdrant{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	s := NewStorage(Config{URL: srv.URL, APIKey: "k", Collection: "kb"}, nil)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.Init(ctx, 2))
	require.NoError(t, s.Init(ctx, 2))
	chunks := []domain.Chunk{
		{DocumentID: "d2", ChunkID: "pitta.txt_chunk_0", Source: "pitta.txt", Text: "Pitta is hot."},
		{DocumentID: "d1", ChunkID: "kapha.txt_chunk_0", Source: "kapha.txt", Text: "Kapha is heavy."},
	}
	require.NoError(t, s.Upsert(ctx, chunks, [][]float64{{1, 0}, {0, 1}}))

	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	res, err := s.Search(ctx, []float64{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "pitta.txt_chunk_0", res[0].Chunk.ChunkID)
	assert.InDelta(t, 0.9, res[0].Score, 1e-9)

	all, err := s.Chunks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "kapha.txt", all[0].Source)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))
	res, err = s.Search(ctx, []float64{1, 0}, 1)
	require.NoError(t, err)
	assert.Empty(t, res)

	for _, k := range fake.apiKeys {
		assert.Equal(t, "k", k)
	}
}

func TestPointIDIsDeterministicUUID(t *testing.T) {
	c := domain.Chunk{DocumentID: "abc", Index: 3}
	id := PointID(c)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, PointID(c))
	assert.NotEqual(t, id, PointID(domain.Chunk{DocumentID: "abc", Index: 4}))

	// Derived from document and position only.
	assert.Equal(t, uuid.NewSHA1(pointNamespace, []byte("abc:3")).String(), id)
	assert.Equal(t, id, PointID(domain.Chunk{DocumentID: "abc", Index: 3, ChunkID: "other"}))
}
