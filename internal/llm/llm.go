// Package llm wraps the hosted generative model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Options tunes a single generation call.
type Options struct {
	Temperature       float64
	MaxTokens         int
	JSON              bool
	SystemInstruction string
}

// Response is the model output plus generation metadata.
type Response struct {
	Text         string  `json:"text"`
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
	FinishReason string  `json:"finish_reason,omitempty"`
	PromptTokens int     `json:"prompt_tokens,omitempty"`
	OutputTokens int     `json:"output_tokens,omitempty"`
}

// Client generates text from prompts or conversations.
type Client interface {
	Generate(ctx context.Context, prompt string, opts Options) (*Response, error)
	Chat(ctx context.Context, history []Message, opts Options) (*Response, error)
	Model() string
}

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

const connectionPrompt = "Hello, this is a test message. Please respond with 'OK'."

// TestConnection sends a trivial prompt and checks that text comes back.
func TestConnection(ctx context.Context, c Client) error {
	resp, err := c.Generate(ctx, connectionPrompt, Options{Temperature: 0.1, MaxTokens: 32})
	if err != nil {
		return fmt.Errorf("connection test: %w", err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return fmt.Errorf("connection test: %w", ErrEmptyResponse)
	}
	return nil
}

// ModelInfo describes the configured model.
type ModelInfo struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	fencedRe     = regexp.MustCompile("(?s)```\\s*(\\{.*?\\})\\s*```")
	bracesRe     = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON pulls a JSON object out of model text: a ```json fence, then
// any fence, then the outermost braces. Otherwise the trimmed text is returned.
func ExtractJSON(text string) string {
	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := fencedRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := bracesRe.FindString(text); m != "" {
		return m
	}
	return strings.TrimSpace(text)
}
