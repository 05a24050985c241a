package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeKeepsOrderAndLimit(t *testing.T) {
	text := "Vata dosha governs movement. The sky is blue today. " +
		"Vata imbalance causes dry skin and Vata anxiety. Lunch was good. " +
		"Balancing Vata needs warm food."
	out, err := NewFrequencySummarizer().Summarize(text, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, "."))
	assert.Contains(t, out, "Vata")
	first := strings.Index(out, ".")
	require.Positive(t, first)
	assert.Less(t, strings.Index(text, out[:first]), strings.Index(text, strings.TrimSpace(out[first+1:])))
}

func TestSummarizeWithoutSentences(t *testing.T) {
	out, err := NewFrequencySummarizer().Summarize("  no punctuation here  ", 3)
	require.NoError(t, err)
	assert.Equal(t, "no punctuation here", out)
}

func TestSummarizeStripsPageMarkers(t *testing.T) {
	text := "\n--- Page 1 ---\nKapha is heavy.\n--- Page 2 ---\nKapha is stable."
	out, err := NewFrequencySummarizer().Summarize(text, 0)
	require.NoError(t, err)
	assert.NotContains(t, out, "Page")
	assert.Equal(t, "Kapha is heavy. Kapha is stable.", out)
}
