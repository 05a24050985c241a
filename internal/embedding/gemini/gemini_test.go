package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedServer answers batchEmbedContents with one 3-d vector per request
// and records the raw bodies it saw.
func fakeEmbedServer(t *testing.T, bodies *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		*bodies = append(*bodies, string(raw))
		var req struct {
			Requests []json.RawMessage `json:"requests"`
		}
		_ = json.Unmarshal(raw, &req)
		n := max(1, len(req.Requests))
		type emb struct {
			Values []float32 `json:"values"`
		}
		out := struct {
			Embeddings []emb `json:"embeddings"`
		}{}
		for i := 0; i < n; i++ {
			out.Embeddings = append(out.Embeddings, emb{Values: []float32{float32(i), 0.5, 1}})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}))
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	assert.Error(t, err)
}

func TestEmbedUsesQueryTask(t *testing.T) {
	var bodies []string
	srv := fakeEmbedServer(t, &bodies)
	defer srv.Close()

	e, err := New(context.Background(), Config{APIKey: "k", BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	vec, err := e.Embed(context.Background(), "burning sensation")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1}, vec)
	assert.Equal(t, 3, e.Dimension())
	require.Len(t, bodies, 1)
	assert.True(t, strings.Contains(bodies[0], "RETRIEVAL_QUERY"))
}

func TestEmbedBatchUsesDocumentTask(t *testing.T) {
	var bodies []string
	srv := fakeEmbedServer(t, &bodies)
	defer srv.Close()

	e, err := New(context.Background(), Config{APIKey: "k", BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	vecs, err := e.EmbedBatch(context.Background(), []string{"vata", "pitta", "kapha"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, float64(2), vecs[2][0])
	require.Len(t, bodies, 1)
	assert.True(t, strings.Contains(bodies[0], "RETRIEVAL_DOCUMENT"))
}
