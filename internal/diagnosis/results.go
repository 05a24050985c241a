package diagnosis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// Result pairs a symptom set with its diagnosis or failure.
type Result struct {
	Symptoms   string     `json:"symptoms"`
	Diagnosis  *Diagnosis `json:"diagnosis,omitempty"`
	Error      string     `json:"error,omitempty"`
	RawContent string     `json:"raw_content,omitempty"`

	Err error `json:"-"`
}

// NewResult builds a Result, copying raw model text out of a *ParseError.
func NewResult(symptoms string, d *Diagnosis, err error) Result {
	r := Result{Symptoms: symptoms, Diagnosis: d, Err: err}
	if err != nil {
		r.Error = err.Error()
		var pe *ParseError
		if errors.As(err, &pe) {
			r.RawContent = pe.Raw
		}
	}
	return r
}

// OK reports whether the result holds a diagnosis.
func (r Result) OK() bool { return r.Diagnosis != nil && r.Error == "" }

// SaveResults writes results as indented JSON, creating parent directories.
func SaveResults(path string, results []Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create results dir: %w", err)
		}
	}
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// LoadResults reads a file written by SaveResults.
func LoadResults(path string) ([]Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	var results []Result
	if err := json.Unmarshal(b, &results); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return results, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
