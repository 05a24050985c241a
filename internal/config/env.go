package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// applyEnvOverrides lets the legacy environment variables override file values.
func (c *AppConfig) applyEnvOverrides() error {
	var errs []error
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not an integer", name, v))
			return
		}
		*dst = n
	}

	str("MODEL_NAME", &c.LLM.Model)
	if v := strings.TrimSpace(os.Getenv("TEMPERATURE")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("TEMPERATURE: %q is not a number", v))
		} else {
			c.LLM.Temperature = f
		}
	}
	num("MAX_TOKENS", &c.LLM.MaxTokens)
	if v := strings.TrimSpace(os.Getenv("EMBEDDING_MODEL")); v != "" {
		switch c.Embedder.Type {
		case "gemini":
			if c.Embedder.Gemini == nil {
				c.Embedder.Gemini = &GeminiEmbedderConfig{}
			}
			c.Embedder.Gemini.Model = v
		case "openai":
			if c.Embedder.OpenAI == nil {
				c.Embedder.OpenAI = &OpenAIEmbedderConfig{}
			}
			c.Embedder.OpenAI.Model = v
		}
	}
	num("CHUNK_SIZE", &c.Chunker.ChunkSize)
	num("CHUNK_OVERLAP", &c.Chunker.ChunkOverlap)
	num("TOP_K_RETRIEVAL", &c.Retrieval.TopK)
	if v := strings.TrimSpace(os.Getenv("VECTOR_STORE_PATH")); v != "" {
		if c.VectorStore.SQLite == nil {
			c.VectorStore.SQLite = &SQLiteConfig{}
		}
		c.VectorStore.SQLite.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("SUPPORTED_FORMATS")); v != "" {
		var formats []string
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				formats = append(formats, strings.ToLower(f))
			}
		}
		c.Documents.SupportedFormats = formats
	}
	num("MAX_FILE_SIZE_MB", &c.Documents.MaxFileSizeMB)
	str("LOG_LEVEL", &c.Logging.Level)
	return errors.Join(errs...)
}
