package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every override variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"MODEL_NAME", "TEMPERATURE", "MAX_TOKENS", "EMBEDDING_MODEL", "CHUNK_SIZE",
		"CHUNK_OVERLAP", "TOP_K_RETRIEVAL", "VECTOR_STORE_PATH", "SUPPORTED_FORMATS", "MAX_FILE_SIZE_MB", "LOG_LEVEL"} {
		t.Setenv(name, "")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash-exp", cfg.LLM.Model)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 4096, cfg.LLM.MaxTokens)
	assert.Equal(t, 1000, cfg.Chunker.ChunkSize)
	assert.Equal(t, 200, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, []string{"pdf", "docx", "txt"}, cfg.Documents.SupportedFormats)
	assert.Equal(t, "./data/processed/vector_store.db", cfg.VectorStore.SQLite.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoadPartialYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
llm:
  temperature: 0
embedder:
  type: openai
  openai:
    base_url: http://localhost:11434/v1
vector_store:
  type: memory
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.LLM.Temperature)
	assert.Equal(t, "gemini-2.0-flash-exp", cfg.LLM.Model)
	assert.Equal(t, "openai", cfg.Embedder.Type)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Embedder.OpenAI.BaseURL)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: ["), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("values override defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MODEL_NAME", "gemini-1.5-pro")
		t.Setenv("TEMPERATURE", "0.7")
		t.Setenv("CHUNK_SIZE", "500")
		t.Setenv("CHUNK_OVERLAP", "50")
		t.Setenv("TOP_K_RETRIEVAL", "3")
		t.Setenv("SUPPORTED_FORMATS", "TXT, pdf")
		t.Setenv("VECTOR_STORE_PATH", "/tmp/vs.db")
		t.Setenv("EMBEDDING_MODEL", "text-embedding-004")

		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "gemini-1.5-pro", cfg.LLM.Model)
		assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
		assert.Equal(t, 500, cfg.Chunker.ChunkSize)
		assert.Equal(t, 50, cfg.Chunker.ChunkOverlap)
		assert.Equal(t, 3, cfg.Retrieval.TopK)
		assert.Equal(t, []string{"txt", "pdf"}, cfg.Documents.SupportedFormats)
		assert.Equal(t, "/tmp/vs.db", cfg.VectorStore.SQLite.Path)
		assert.Equal(t, "text-embedding-004", cfg.Embedder.Gemini.Model)
	})

	t.Run("malformed numbers are errors", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CHUNK_SIZE", "big")
		t.Setenv("TEMPERATURE", "warm")
		_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CHUNK_SIZE")
		assert.Contains(t, err.Error(), "TEMPERATURE")
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.LLM.Temperature = 1.5
	cfg.Chunker.ChunkOverlap = cfg.Chunker.ChunkSize
	cfg.Retrieval.TopK = 0
	cfg.VectorStore.Type = "faiss"
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"temperature", "chunk_overlap", "top_k", "faiss"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestAPIKey(t *testing.T) {
	cfg := Default()
	t.Setenv("GOOGLE_API_KEY", "")
	_, err := cfg.APIKey()
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	t.Setenv("GOOGLE_API_KEY", "abc")
	key, err := cfg.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "abc", key)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Server.Addr = ":9000"
	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", loaded.Server.Addr)
}
