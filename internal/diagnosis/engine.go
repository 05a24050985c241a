package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ayurdiag/internal/llm"
	"ayurdiag/internal/prompt"
	"ayurdiag/internal/retriever"
)

// ErrEmptySymptoms is returned when Analyze is called without symptoms.
var ErrEmptySymptoms = errors.New("symptoms must not be empty")

// ContextRetriever supplies knowledge-base context for a query.
type ContextRetriever interface {
	Ready(ctx context.Context) bool
	RelevantContext(ctx context.Context, query string, k int) (string, []retriever.Result, error)
}

// Counter reports how many chunks are indexed.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Config holds engine defaults.
type Config struct {
	Provider    string
	Temperature float64
	MaxTokens   int
	TopK        int
	// BatchWorkers bounds concurrent model calls in AnalyzeBatch.
	BatchWorkers int
}

// Options tunes a single analysis or chat turn. A zero Temperature uses the
// configured default.
type Options struct {
	UseRAG      bool
	Temperature float64
}

// Engine runs the retrieve, prompt, generate and parse pipeline.
type Engine struct {
	client    llm.Client
	retriever ContextRetriever
	index     Counter
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

// NewEngine wires an engine. retriever and index may be nil. cfg.Temperature
// is used as given, including 0.
func NewEngine(client llm.Client, r ContextRetriever, index Counter, cfg Config, logger *zap.Logger) *Engine {
	if cfg.Provider == "" {
		cfg.Provider = "gemini"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.BatchWorkers <= 0 {
		cfg.BatchWorkers = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{client: client, retriever: r, index: index, cfg: cfg, logger: logger, now: time.Now}
}

func (e *Engine) temperature(opts Options) float64 {
	if opts.Temperature > 0 {
		return opts.Temperature
	}
	return e.cfg.Temperature
}

func (e *Engine) retrieverReady(ctx context.Context) bool {
	return e.retriever != nil && e.retriever.Ready(ctx)
}

// lookup returns formatted context and its sources, or "" when retrieval is
// disabled, unavailable or empty.
func (e *Engine) lookup(ctx context.Context, query string, useRAG bool) (string, []string, error) {
	if !useRAG || !e.retrieverReady(ctx) {
		e.logger.Info("proceeding without knowledge-base context", zap.Bool("use_rag", useRAG))
		return "", nil, nil
	}
	text, results, err := e.retriever.RelevantContext(ctx, query, e.cfg.TopK)
	if err != nil {
		return "", nil, err
	}
	if len(results) == 0 {
		return "", nil, nil
	}
	e.logger.Info("retrieved context", zap.Int("chars", len(text)), zap.Int("passages", len(results)))
	return text, retriever.Sources(results), nil
}

// Analyze produces a diagnosis for symptoms. Model output that cannot be
// parsed yields a *ParseError.
func (e *Engine) Analyze(ctx context.Context, symptoms string, opts Options) (*Diagnosis, error) {
	symptoms = strings.TrimSpace(symptoms)
	if symptoms == "" {
		return nil, ErrEmptySymptoms
	}
	e.logger.Info("analyzing symptoms", zap.String("symptoms", truncate(symptoms, 100)))

	contextText, sources, err := e.lookup(ctx, symptoms, opts.UseRAG)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	p := prompt.Simple(symptoms)
	if contextText != "" {
		p = prompt.Diagnostic(symptoms, contextText)
	}

	temp := e.temperature(opts)
	resp, err := e.client.Generate(ctx, p, llm.Options{Temperature: temp, MaxTokens: e.cfg.MaxTokens, JSON: true})
	if err != nil {
		return nil, fmt.Errorf("generate diagnosis: %w", err)
	}
	d, err := Parse(resp.Text)
	if err != nil {
		e.logger.Warn("unparseable diagnosis", zap.Error(err))
		return nil, err
	}
	d.Metadata = &Metadata{
		Symptoms:      symptoms,
		UseRAG:        opts.UseRAG,
		Temperature:   temp,
		Model:         e.client.Model(),
		ContextLength: len(contextText),
		Sources:       sources,
		GeneratedAt:   e.now().UTC(),
	}
	e.logger.Info("diagnosis complete", zap.String("dominant_dosha", d.DominantDosha))
	return d, nil
}

// AnalyzeBatch analyzes each symptom set. Results keep input order and a
// failed item does not stop the others.
func (e *Engine) AnalyzeBatch(ctx context.Context, list []string, opts Options) []Result {
	out := make([]Result, len(list))
	var g errgroup.Group
	g.SetLimit(e.cfg.BatchWorkers)
	for i, symptoms := range list {
		g.Go(func() error {
			e.logger.Info("processing batch item", zap.Int("item", i+1), zap.Int("total", len(list)))
			d, err := e.Analyze(ctx, symptoms, opts)
			out[i] = NewResult(symptoms, d, err)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Settings are the engine defaults reported by SystemInfo.
type Settings struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TopK        int     `json:"top_k_retrieval"`
}

// SystemInfo describes the wired components.
type SystemInfo struct {
	Model          llm.ModelInfo `json:"model"`
	RetrieverReady bool          `json:"retriever_initialized"`
	IndexedChunks  int           `json:"indexed_chunks"`
	Settings       Settings      `json:"settings"`
}

func (e *Engine) SystemInfo(ctx context.Context) SystemInfo {
	info := SystemInfo{
		Model: llm.ModelInfo{
			Provider:    e.cfg.Provider,
			Model:       e.client.Model(),
			Temperature: e.cfg.Temperature,
			MaxTokens:   e.cfg.MaxTokens,
		},
		RetrieverReady: e.retrieverReady(ctx),
		Settings:       Settings{Temperature: e.cfg.Temperature, MaxTokens: e.cfg.MaxTokens, TopK: e.cfg.TopK},
	}
	if e.index != nil {
		n, err := e.index.Count(ctx)
		if err != nil {
			e.logger.Warn("count indexed chunks", zap.Error(err))
		}
		info.IndexedChunks = n
	}
	return info
}

const selfTestSymptoms = "I have mild joint pain and feel tired"

// SelfTestReport is the outcome of SelfTest.
type SelfTestReport struct {
	Connection      bool     `json:"gemini_connection"`
	ConnectionError string   `json:"connection_error,omitempty"`
	RetrieverReady  bool     `json:"retriever_available"`
	PromptValid     bool     `json:"prompt_validation"`
	PromptMissing   []string `json:"prompt_missing,omitempty"`
	SampleRun       bool     `json:"sample_run"`
	SampleDiagnosis bool     `json:"sample_diagnosis"`
	SampleError     string   `json:"sample_error,omitempty"`
}

// Passed reports whether every executed check succeeded.
func (r SelfTestReport) Passed() bool {
	return r.Connection && r.PromptValid && (!r.SampleRun || r.SampleDiagnosis)
}

// SelfTest checks the model connection, the retriever and the prompts, then
// runs a sample diagnosis without retrieval when the model is reachable.
func (e *Engine) SelfTest(ctx context.Context) SelfTestReport {
	var rep SelfTestReport
	if err := llm.TestConnection(ctx, e.client); err != nil {
		rep.ConnectionError = err.Error()
	} else {
		rep.Connection = true
	}
	rep.RetrieverReady = e.retrieverReady(ctx)
	rep.PromptMissing = prompt.Validate(prompt.Simple("test symptoms"))
	rep.PromptValid = len(rep.PromptMissing) == 0

	if rep.Connection {
		rep.SampleRun = true
		if _, err := e.Analyze(ctx, selfTestSymptoms, Options{UseRAG: false}); err != nil {
			rep.SampleError = err.Error()
		} else {
			rep.SampleDiagnosis = true
		}
	}
	return rep
}
