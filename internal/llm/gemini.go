package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// BaseURL overrides the API endpoint.
	BaseURL string
}

// Gemini is a Client backed by the Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewGemini(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash-exp"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
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
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model, timeout: cfg.Timeout, logger: logger}, nil
}

func (g *Gemini) Model() string { return g.model }

// Generate sends a single-turn prompt.
func (g *Gemini) Generate(ctx context.Context, prompt string, opts Options) (*Response, error) {
	return g.generate(ctx, genai.Text(prompt), opts)
}

// Chat sends the whole conversation; the last message should be from the user.
func (g *Gemini) Chat(ctx context.Context, history []Message, opts Options) (*Response, error) {
	if len(history) == 0 {
		return nil, errors.New("chat history is empty")
	}
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		var role genai.Role = genai.RoleUser
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return g.generate(ctx, contents, opts)
}

func (g *Gemini) generate(ctx context.Context, contents []*genai.Content, opts Options) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	if opts.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(opts.SystemInstruction, genai.RoleUser)
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	out := &Response{
		Text:        strings.TrimSpace(resp.Text()),
		Model:       g.model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		out.FinishReason = string(resp.Candidates[0].FinishReason)
	}
	if u := resp.UsageMetadata; u != nil {
		out.PromptTokens = int(u.PromptTokenCount)
		out.OutputTokens = int(u.CandidatesTokenCount)
	}
	g.logger.Debug("gemini response",
		zap.String("model", g.model),
		zap.Duration("took", time.Since(start)),
		zap.String("finish_reason", out.FinishReason),
		zap.Int("output_tokens", out.OutputTokens))
	if out.Text == "" {
		return nil, ErrEmptyResponse
	}
	return out, nil
}
