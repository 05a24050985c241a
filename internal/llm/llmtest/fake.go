// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"ayurdiag/internal/llm"
)

// Call records one request made to a Fake.
type Call struct {
	Prompt  string
	History []llm.Message
	Options llm.Options
}

// Fake answers every request with Reply, or with the result of Respond when set.
type Fake struct {
	Reply   string
	Err     error
	Respond func(prompt string) (string, error)

	mu    sync.Mutex
	calls []Call
}

func (f *Fake) Model() string { return "fake-model" }

func (f *Fake) Generate(_ context.Context, prompt string, opts llm.Options) (*llm.Response, error) {
	f.record(Call{Prompt: prompt, Options: opts})
	return f.answer(prompt, opts)
}

func (f *Fake) Chat(_ context.Context, history []llm.Message, opts llm.Options) (*llm.Response, error) {
	f.record(Call{History: append([]llm.Message(nil), history...), Options: opts})
	last := ""
	if len(history) > 0 {
		last = history[len(history)-1].Content
	}
	return f.answer(last, opts)
}

// Calls returns a copy of the recorded requests.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

func (f *Fake) record(c Call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *Fake) answer(prompt string, opts llm.Options) (*llm.Response, error) {
	text, err := f.Reply, f.Err
	if f.Respond != nil {
		text, err = f.Respond(prompt)
	}
	if err != nil {
		return nil, err
	}
	return &llm.Response{Text: text, Model: f.Model(), Temperature: opts.Temperature, MaxTokens: opts.MaxTokens}, nil
}
