package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is returned when a hosted model is configured without a key.
var ErrMissingAPIKey = errors.New("missing API key")

// LLMConfig configures the generative model client.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	BaseURL     string  `yaml:"base_url,omitempty"`
}

// GeminiEmbedderConfig configures Gemini embeddings.
type GeminiEmbedderConfig struct {
	Model                string `yaml:"model"`
	DocumentTaskType     string `yaml:"document_task_type"`
	QueryTaskType        string `yaml:"query_task_type"`
	OutputDimensionality int    `yaml:"output_dimensionality,omitempty"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type"`
	BatchSize int                   `yaml:"batch_size"`
	Workers   int                   `yaml:"workers"`
	Gemini    *GeminiEmbedderConfig `yaml:"gemini,omitempty"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type              string `yaml:"type"`
	ChunkSize         int    `yaml:"chunk_size"`
	ChunkOverlap      int    `yaml:"chunk_overlap"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk"`
	OverlapSentences  int    `yaml:"overlap_sentences"`
	MinChunkLength    int    `yaml:"min_chunk_length"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	SQLite *SQLiteConfig `yaml:"sqlite,omitempty"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// SQLiteConfig locates the persistent vector store file.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RetrievalConfig controls how much context is retrieved per query.
type RetrievalConfig struct {
	TopK     int     `yaml:"top_k"`
	MinScore float64 `yaml:"min_score"`
}

// DocumentsConfig locates and filters the knowledge-base files.
type DocumentsConfig struct {
	RawPath          string   `yaml:"raw_path"`
	ProcessedPath    string   `yaml:"processed_path"`
	SupportedFormats []string `yaml:"supported_formats"`
	MaxFileSizeMB    int      `yaml:"max_file_size_mb"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences"`
}

// ServerConfig configures the web interface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	Development bool   `yaml:"development"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	LLM         LLMConfig         `yaml:"llm"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Documents   DocumentsConfig   `yaml:"documents"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// Load reads a config from path, applies defaults and environment overrides.
// A missing file yields the defaults.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyConfigDefaults(cfg)
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/ayurdiag/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, Default()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// APIKey resolves the model API key from the configured environment variable.
func (c *AppConfig) APIKey() (string, error) {
	key := os.Getenv(c.LLM.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%w: set %s", ErrMissingAPIKey, c.LLM.APIKeyEnv)
	}
	return key, nil
}

// Validate checks ranges and component names.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		errs = append(errs, fmt.Errorf("llm.temperature must be between 0 and 1, got %v", c.LLM.Temperature))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens))
	}
	if c.Chunker.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunker.chunk_size must be positive, got %d", c.Chunker.ChunkSize))
	}
	if c.Chunker.ChunkOverlap < 0 || c.Chunker.ChunkOverlap >= c.Chunker.ChunkSize {
		errs = append(errs, fmt.Errorf("chunker.chunk_overlap must be in [0, chunk_size), got %d", c.Chunker.ChunkOverlap))
	}
	if c.Retrieval.TopK <= 0 {
		errs = append(errs, fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK))
	}
	if c.Documents.MaxFileSizeMB <= 0 {
		errs = append(errs, fmt.Errorf("documents.max_file_size_mb must be positive, got %d", c.Documents.MaxFileSizeMB))
	}
	check := func(field, value string, allowed ...string) {
		if !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("unknown %s %q (want one of %v)", field, value, allowed))
		}
	}
	check("llm.provider", c.LLM.Provider, "gemini")
	check("embedder.type", c.Embedder.Type, "gemini", "openai", "tfidf")
	check("chunker.type", c.Chunker.Type, "recursive", "sentence")
	check("vector_store.type", c.VectorStore.Type, "sqlite", "memory", "qdrant")
	check("summarizer.type", c.Summarizer.Type, "frequency")
	return errors.Join(errs...)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ayurdiag", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{
		LLM: LLMConfig{
			Provider:    "gemini",
			APIKeyEnv:   "GOOGLE_API_KEY",
			Model:       "gemini-2.0-flash-exp",
			Temperature: 0.2,
			MaxTokens:   4096,
			TimeoutSecs: 120,
		},
		Embedder: EmbedderConfig{
			Type:      "gemini",
			BatchSize: 32,
			Workers:   4,
			Gemini: &GeminiEmbedderConfig{
				Model:            "gemini-embedding-001",
				DocumentTaskType: "RETRIEVAL_DOCUMENT",
				QueryTaskType:    "RETRIEVAL_QUERY",
			},
		},
		Chunker: ChunkerConfig{
			Type: "recursive", ChunkSize: 1000, ChunkOverlap: 200,
			SentencesPerChunk: 5, OverlapSentences: 1,
		},
		VectorStore: VectorStoreConfig{
			Type:   "sqlite",
			SQLite: &SQLiteConfig{Path: "./data/processed/vector_store.db"},
		},
		Retrieval: RetrievalConfig{TopK: 5},
		Documents: DocumentsConfig{
			RawPath:          "./data/raw",
			ProcessedPath:    "./data/processed",
			SupportedFormats: []string{"pdf", "docx", "txt"},
			MaxFileSizeMB:    50,
		},
		Summarizer: SummarizerConfig{Type: "frequency", MaxSentences: 5},
		Server:     ServerConfig{Addr: ":7860"},
		Logging:    LoggingConfig{Level: "info", File: "ayurvedic_assistant.log"},
	}
	return cfg
}

// applyConfigDefaults fills zero values left by a partial YAML file.
func applyConfigDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = def.LLM.Provider
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = def.LLM.APIKeyEnv
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = def.LLM.Model
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = def.LLM.MaxTokens
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = def.LLM.TimeoutSecs
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = def.Embedder.BatchSize
	}
	if cfg.Embedder.Workers == 0 {
		cfg.Embedder.Workers = def.Embedder.Workers
	}
	if cfg.Embedder.Type == "gemini" && cfg.Embedder.Gemini == nil {
		cfg.Embedder.Gemini = def.Embedder.Gemini
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		o := cfg.Embedder.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "text-embedding-3-small"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 30
		}
	}
	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = def.Chunker.Type
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = def.Chunker.ChunkSize
	}
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = def.Chunker.SentencesPerChunk
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = def.VectorStore.Type
	}
	if cfg.VectorStore.Type == "sqlite" && (cfg.VectorStore.SQLite == nil || cfg.VectorStore.SQLite.Path == "") {
		cfg.VectorStore.SQLite = def.VectorStore.SQLite
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant == nil {
		cfg.VectorStore.Qdrant = &QdrantConfig{URL: "http://localhost:6333", Collection: "ayurveda"}
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Documents.RawPath == "" {
		cfg.Documents.RawPath = def.Documents.RawPath
	}
	if cfg.Documents.ProcessedPath == "" {
		cfg.Documents.ProcessedPath = def.Documents.ProcessedPath
	}
	if len(cfg.Documents.SupportedFormats) == 0 {
		cfg.Documents.SupportedFormats = def.Documents.SupportedFormats
	}
	if cfg.Documents.MaxFileSizeMB == 0 {
		cfg.Documents.MaxFileSizeMB = def.Documents.MaxFileSizeMB
	}
	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = def.Summarizer.Type
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = def.Summarizer.MaxSentences
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}
